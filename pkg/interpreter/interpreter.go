package interpreter

import (
	"errors"
	"fmt"
	"io"
	"log"

	"sicp/interpreter-go/pkg/driver"
	"sicp/interpreter-go/pkg/parser"
	"sicp/interpreter-go/pkg/runtime"
)

// Interpreter owns one root environment and threads it through every
// top-level evaluation so definitions accumulate.
type Interpreter struct {
	global  *runtime.Environment
	ev      evaluator
	prelude []string
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithTrace logs definitions and procedure applications to w.
func WithTrace(w io.Writer) Option {
	return func(i *Interpreter) {
		if w != nil {
			i.ev.trace = log.New(w, "trace: ", 0)
		}
	}
}

// WithPrelude evaluates each source string when the interpreter is built.
func WithPrelude(sources ...string) Option {
	return func(i *Interpreter) {
		i.prelude = append(i.prelude, sources...)
	}
}

// New returns an interpreter with the builtin library installed. A failing
// prelude is reported as an error.
func New(opts ...Option) (*Interpreter, error) {
	i := &Interpreter{global: NewRootEnvironment()}
	for _, opt := range opts {
		opt(i)
	}
	for idx, src := range i.prelude {
		if _, err := i.EvaluateSource(src); err != nil {
			return nil, fmt.Errorf("interpreter: prelude %d: %w", idx, err)
		}
	}
	return i, nil
}

// GlobalEnvironment returns the interpreter's root environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Evaluate evaluates a single parsed expression against the root environment.
func (i *Interpreter) Evaluate(expr runtime.Expression) (runtime.Expression, error) {
	return i.ev.eval(expr, i.global)
}

// EvaluateSource parses and evaluates src one top-level form at a time,
// stopping at the first syntax or evaluation error. Results produced before
// the error are returned alongside it.
func (i *Interpreter) EvaluateSource(src string) ([]runtime.Expression, error) {
	p := parser.New(src)
	var results []runtime.Expression
	for {
		expr, err := p.Next()
		if errors.Is(err, io.EOF) {
			return results, nil
		}
		if err != nil {
			return results, err
		}
		val, err := i.Evaluate(expr)
		if err != nil {
			return results, err
		}
		results = append(results, val)
	}
}

// EvaluateProgram evaluates every source of a loaded program in order and
// returns the value of the last form. onResult, when set, sees each form's value.
func (i *Interpreter) EvaluateProgram(program *driver.Program, onResult func(runtime.Expression)) (runtime.Expression, error) {
	if program == nil {
		return nil, fmt.Errorf("interpreter: program is nil")
	}
	var last runtime.Expression = runtime.Void{}
	for _, src := range program.Sources {
		if src == nil {
			continue
		}
		for _, form := range src.Forms {
			val, err := i.Evaluate(form)
			if err != nil {
				return nil, &SourceError{Path: src.Path, Form: form, Err: err}
			}
			if onResult != nil {
				onResult(val)
			}
			last = val
		}
	}
	return last, nil
}

// SourceError attaches the failing file and form to an evaluation error.
type SourceError struct {
	Path string
	Form runtime.Expression
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Form, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
