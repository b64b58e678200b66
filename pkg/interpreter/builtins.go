package interpreter

import (
	"sicp/interpreter-go/pkg/runtime"
)

type builtin struct {
	name string
	fn   runtime.BuiltinFunc
}

var builtins = []builtin{
	{"+", builtinAdd},
	{"-", builtinSub},
	{"*", builtinMul},
	{"/", builtinDiv},
	{">", compareChain(runtime.Number.Gt)},
	{"<", compareChain(runtime.Number.Lt)},
	{"=", compareChain(runtime.Number.Eq)},
}

// NewRootEnvironment returns an environment with one global frame holding the
// builtin procedures and the boolean constants.
func NewRootEnvironment() *runtime.Environment {
	env := runtime.NewEnvironment()
	env.Push()
	for _, b := range builtins {
		env.Insert(b.name, &runtime.BuiltinProcedure{Name: b.name, Impl: b.fn})
	}
	env.Insert("#t", runtime.Bool(true))
	env.Insert("#f", runtime.Bool(false))
	return env
}

func toNumber(arg runtime.Expression) (runtime.Number, error) {
	n, ok := arg.(runtime.NumberLiteral)
	if !ok {
		return runtime.Number{}, runtime.Errorf(runtime.TypeMismatch, "expecting number, got %s", arg.Kind())
	}
	return n.Val, nil
}

func numbers(args []runtime.Expression) ([]runtime.Number, error) {
	out := make([]runtime.Number, len(args))
	for i, arg := range args {
		n, err := toNumber(arg)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func fold(args []runtime.Expression, acc runtime.Number, op func(a, b runtime.Number) runtime.Number) (runtime.Expression, error) {
	for _, arg := range args {
		n, err := toNumber(arg)
		if err != nil {
			return nil, err
		}
		acc = op(acc, n)
	}
	return runtime.Num(acc), nil
}

func builtinAdd(args []runtime.Expression) (runtime.Expression, error) {
	return fold(args, runtime.Int(0), runtime.Number.Add)
}

func builtinMul(args []runtime.Expression) (runtime.Expression, error) {
	return fold(args, runtime.Int(1), runtime.Number.Mul)
}

func builtinSub(args []runtime.Expression) (runtime.Expression, error) {
	if len(args) == 0 {
		return nil, runtime.Errorf(runtime.WrongArgumentCount, "incorrect argument count in call (-)")
	}
	first, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return runtime.Num(first.Neg()), nil
	}
	return fold(args[1:], first, runtime.Number.Sub)
}

func builtinDiv(args []runtime.Expression) (runtime.Expression, error) {
	if len(args) == 0 {
		return nil, runtime.Errorf(runtime.WrongArgumentCount, "incorrect argument count in call (/)")
	}
	nums, err := numbers(args)
	if err != nil {
		return nil, err
	}
	acc := nums[0]
	for _, n := range nums[1:] {
		if acc, err = acc.Div(n); err != nil {
			return nil, err
		}
	}
	return runtime.Num(acc), nil
}

// compareChain checks rel across every adjacent pair. Fewer than two arguments is trivially true.
func compareChain(rel func(a, b runtime.Number) bool) runtime.BuiltinFunc {
	return func(args []runtime.Expression) (runtime.Expression, error) {
		nums, err := numbers(args)
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(nums); i++ {
			if !rel(nums[i-1], nums[i]) {
				return runtime.Bool(false), nil
			}
		}
		return runtime.Bool(true), nil
	}
}
