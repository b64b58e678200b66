package interpreter

import (
	"log"

	"sicp/interpreter-go/pkg/runtime"
)

// evaluator holds per-interpreter settings. The zero value evaluates silently.
type evaluator struct {
	trace *log.Logger
}

// Eval evaluates expr against env. define mutates env's top frame and each
// procedure application pushes exactly one frame, popped on return or failure.
func Eval(expr runtime.Expression, env *runtime.Environment) (runtime.Expression, error) {
	var ev evaluator
	return ev.eval(expr, env)
}

func (ev *evaluator) tracef(format string, args ...any) {
	if ev.trace != nil {
		ev.trace.Printf(format, args...)
	}
}

func (ev *evaluator) eval(expr runtime.Expression, env *runtime.Environment) (runtime.Expression, error) {
	switch n := expr.(type) {
	case runtime.Identifier:
		v, ok := env.Lookup(n.Name)
		if !ok {
			return nil, runtime.Errorf(runtime.UndefinedSymbol, "undefined symbol '%s'", n.Name)
		}
		return runtime.Clone(v), nil
	case *runtime.Combination:
		if len(n.Elements) == 0 {
			return nil, runtime.Errorf(runtime.InvalidSyntax, "invalid syntax: empty application")
		}
		if head, ok := n.Elements[0].(runtime.Identifier); ok {
			switch head.Name {
			case "define":
				return ev.evalDefine(n.Elements[1:], env)
			case "cond":
				return ev.evalCond(n.Elements[1:], env)
			}
		}
		return ev.evalApplication(n, env)
	default:
		return runtime.Clone(expr), nil
	}
}

func (ev *evaluator) evalDefine(operands []runtime.Expression, env *runtime.Environment) (runtime.Expression, error) {
	if len(operands) != 2 {
		return nil, runtime.Errorf(runtime.InvalidSyntax, "invalid syntax: define expects a name and a body")
	}
	target, body := operands[0], operands[1]
	switch t := target.(type) {
	case runtime.Identifier:
		if isSpecialForm(t.Name) {
			return nil, bindSpecialFormError(t.Name)
		}
		value, err := ev.eval(body, env)
		if err != nil {
			return nil, err
		}
		env.Insert(t.Name, value)
		ev.tracef("define %s = %s", t.Name, value)
		return runtime.Void{}, nil
	case *runtime.Combination:
		if len(t.Elements) == 0 {
			return nil, runtime.Errorf(runtime.InvalidSyntax, "invalid syntax: define signature must name the procedure")
		}
		names := make([]string, len(t.Elements))
		for i, el := range t.Elements {
			id, ok := el.(runtime.Identifier)
			if !ok {
				return nil, runtime.Errorf(runtime.InvalidSyntax, "invalid syntax: define signature must contain only identifiers")
			}
			if isSpecialForm(id.Name) {
				return nil, bindSpecialFormError(id.Name)
			}
			names[i] = id.Name
		}
		proc := &runtime.Procedure{Name: names[0], Params: names[1:], Body: runtime.Clone(body)}
		env.Insert(proc.Name, proc)
		ev.tracef("define %s%v", proc.Name, proc.Params)
		return runtime.Void{}, nil
	default:
		return nil, runtime.Errorf(runtime.InvalidSyntax, "invalid syntax: define target must be an identifier or signature")
	}
}

func isSpecialForm(name string) bool {
	return name == "define" || name == "cond"
}

func bindSpecialFormError(name string) error {
	return runtime.Errorf(runtime.InvalidSyntax, "invalid syntax: cannot bind special form '%s'", name)
}

// evalCond checks clause shape lazily: clauses after the first match are never inspected.
func (ev *evaluator) evalCond(clauses []runtime.Expression, env *runtime.Environment) (runtime.Expression, error) {
	for _, clause := range clauses {
		pair, ok := clause.(*runtime.Combination)
		if !ok || len(pair.Elements) != 2 {
			return nil, runtime.Errorf(runtime.InvalidSyntax, "invalid syntax: expecting pair as cond clause")
		}
		test, err := ev.eval(pair.Elements[0], env)
		if err != nil {
			return nil, err
		}
		if runtime.IsFalse(test) {
			continue
		}
		return ev.eval(pair.Elements[1], env)
	}
	return runtime.Void{}, nil
}

func (ev *evaluator) evalArgs(exprs []runtime.Expression, env *runtime.Environment) ([]runtime.Expression, error) {
	args := make([]runtime.Expression, 0, len(exprs))
	for _, e := range exprs {
		v, err := ev.eval(e, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func (ev *evaluator) evalApplication(call *runtime.Combination, env *runtime.Environment) (runtime.Expression, error) {
	operator, err := ev.eval(call.Elements[0], env)
	if err != nil {
		return nil, err
	}
	switch fn := operator.(type) {
	case *runtime.BuiltinProcedure:
		args, err := ev.evalArgs(call.Elements[1:], env)
		if err != nil {
			return nil, err
		}
		return fn.Call(args)
	case *runtime.Procedure:
		args, err := ev.evalArgs(call.Elements[1:], env)
		if err != nil {
			return nil, err
		}
		return ev.apply(fn, args, env)
	default:
		return nil, runtime.Errorf(runtime.NonProcedureApplication, "attempt to apply non-procedure '%s'", operator)
	}
}

func (ev *evaluator) apply(proc *runtime.Procedure, args []runtime.Expression, env *runtime.Environment) (runtime.Expression, error) {
	if len(args) != len(proc.Params) {
		return nil, runtime.Errorf(runtime.WrongArgumentCount, "wrong number of arguments: expected %d, got %d", len(proc.Params), len(args))
	}
	env.Push()
	defer env.Pop()
	for i, name := range proc.Params {
		env.Insert(name, args[i])
	}
	ev.tracef("apply %s%v depth=%d", procLabel(proc), args, env.Depth())
	return ev.eval(proc.Body, env)
}

func procLabel(proc *runtime.Procedure) string {
	if proc.Name == "" {
		return "#procedure"
	}
	return proc.Name
}
