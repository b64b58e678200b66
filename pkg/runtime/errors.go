package runtime

import "fmt"

// ErrorKind is the closed taxonomy of evaluation failures.
type ErrorKind int

const (
	UndefinedSymbol ErrorKind = iota + 1
	InvalidSyntax
	WrongArgumentCount
	TypeMismatch
	NonProcedureApplication
	DivisionByZero
)

func (k ErrorKind) String() string {
	switch k {
	case UndefinedSymbol:
		return "undefined symbol"
	case InvalidSyntax:
		return "invalid syntax"
	case WrongArgumentCount:
		return "wrong argument count"
	case TypeMismatch:
		return "type mismatch"
	case NonProcedureApplication:
		return "non-procedure application"
	case DivisionByZero:
		return "division by zero"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned by evaluation and by builtin procedures.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrUndefinedSymbol         = &Error{Kind: UndefinedSymbol}
	ErrInvalidSyntax           = &Error{Kind: InvalidSyntax}
	ErrWrongArgumentCount      = &Error{Kind: WrongArgumentCount}
	ErrTypeMismatch            = &Error{Kind: TypeMismatch}
	ErrNonProcedureApplication = &Error{Kind: NonProcedureApplication}
	ErrDivisionByZero          = &Error{Kind: DivisionByZero}
)

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return newError(kind, fmt.Sprintf(format, args...))
}
