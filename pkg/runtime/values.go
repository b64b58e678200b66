package runtime

import (
	"fmt"
	"strings"
)

// Kind identifies the expression category.
type Kind int

const (
	KindCombination Kind = iota
	KindIdentifier
	KindString
	KindNumber
	KindBool
	KindProcedure
	KindBuiltin
	KindVoid
)

func (k Kind) String() string {
	switch k {
	case KindCombination:
		return "combination"
	case KindIdentifier:
		return "identifier"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindProcedure:
		return "procedure"
	case KindBuiltin:
		return "builtin"
	case KindVoid:
		return "void"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Expression is both a syntax node and a runtime value.
type Expression interface {
	Kind() Kind
	String() string
}

//-----------------------------------------------------------------------------
// Syntax
//-----------------------------------------------------------------------------

// Combination is a parenthesized form.
type Combination struct {
	Elements []Expression
}

func (c *Combination) Kind() Kind { return KindCombination }

func (c *Combination) String() string {
	parts := make([]string, len(c.Elements))
	for i, el := range c.Elements {
		parts[i] = el.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

type Identifier struct {
	Name string
}

func (v Identifier) Kind() Kind { return KindIdentifier }
func (v Identifier) String() string { return v.Name }

//-----------------------------------------------------------------------------
// Literals
//-----------------------------------------------------------------------------

type StringLiteral struct {
	Val string
}

func (v StringLiteral) Kind() Kind { return KindString }
func (v StringLiteral) String() string { return `"` + v.Val + `"` }

type NumberLiteral struct {
	Val Number
}

func (v NumberLiteral) Kind() Kind { return KindNumber }
func (v NumberLiteral) String() string { return v.Val.String() }

type BooleanLiteral struct {
	Val bool
}

func (v BooleanLiteral) Kind() Kind { return KindBool }

func (v BooleanLiteral) String() string {
	if v.Val {
		return "#t"
	}
	return "#f"
}

// Void is the result of definitions and unmatched cond forms.
type Void struct{}

func (Void) Kind() Kind { return KindVoid }
func (Void) String() string { return "" }

//-----------------------------------------------------------------------------
// Procedures
//-----------------------------------------------------------------------------

// Procedure is a user-defined procedure. It carries no environment: free
// names in Body resolve against whatever frames are active when it is applied.
type Procedure struct {
	Name   string
	Params []string
	Body   Expression
}

func (p *Procedure) Kind() Kind { return KindProcedure }
func (p *Procedure) String() string { return "#procedure" }

// BuiltinFunc receives already-evaluated arguments.
type BuiltinFunc func(args []Expression) (Expression, error)

// BuiltinProcedure wraps a native function. It is immutable once installed.
type BuiltinProcedure struct {
	Name string
	Impl BuiltinFunc
}

func (b *BuiltinProcedure) Kind() Kind { return KindBuiltin }
func (b *BuiltinProcedure) String() string { return "#builtin" }

// Call invokes the native implementation.
func (b *BuiltinProcedure) Call(args []Expression) (Expression, error) {
	if b == nil || b.Impl == nil {
		return nil, Errorf(NonProcedureApplication, "attempt to apply non-procedure '#builtin'")
	}
	return b.Impl(args)
}

//-----------------------------------------------------------------------------
// Helpers
//-----------------------------------------------------------------------------

// Num and Bool are shorthands used by builtins and tests.
func Num(n Number) Expression { return NumberLiteral{Val: n} }
func Bool(b bool) Expression { return BooleanLiteral{Val: b} }

// List builds a combination.
func List(elements ...Expression) *Combination {
	return &Combination{Elements: elements}
}

// IsFalse reports whether v is the boolean false value. It is the only falsy value.
func IsFalse(v Expression) bool {
	b, ok := v.(BooleanLiteral)
	return ok && !b.Val
}

// Equal compares structurally. Procedures are never equal to anything.
func Equal(a, b Expression) bool {
	switch av := a.(type) {
	case *Combination:
		bv, ok := b.(*Combination)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case Identifier:
		bv, ok := b.(Identifier)
		return ok && av.Name == bv.Name
	case StringLiteral:
		bv, ok := b.(StringLiteral)
		return ok && av.Val == bv.Val
	case NumberLiteral:
		bv, ok := b.(NumberLiteral)
		return ok && av.Val.Eq(bv.Val)
	case BooleanLiteral:
		bv, ok := b.(BooleanLiteral)
		return ok && av.Val == bv.Val
	case Void:
		_, ok := b.(Void)
		return ok
	default:
		return false
	}
}

// Clone deep-copies combination trees and procedure bodies. Builtins are shared.
func Clone(e Expression) Expression {
	switch v := e.(type) {
	case *Combination:
		if v == nil {
			return v
		}
		out := make([]Expression, len(v.Elements))
		for i, el := range v.Elements {
			out[i] = Clone(el)
		}
		return &Combination{Elements: out}
	case *Procedure:
		if v == nil {
			return v
		}
		return &Procedure{
			Name:   v.Name,
			Params: append([]string(nil), v.Params...),
			Body:   Clone(v.Body),
		}
	default:
		return e
	}
}
