package interp

import (
	"nyxlang/ast"
	"nyxlang/env"
	"nyxlang/value"
)

func (it *Interp) evalCall(e *ast.CallExpr, scope *env.Environment) (value.Value, error) {
	callee, err := it.eval(e.Callee, scope)
	if err != nil {
		return value.Nil, err
	}
	args := make([]value.Value, 0, len(e.Args))
	for _, argExpr := range e.Args {
		v, err := it.eval(argExpr, scope)
		if err != nil {
			return value.Nil, err
		}
		args = append(args, v)
	}
	line := int(e.Pos().Line)

	switch {
	case callee.IsFunction():
		return it.callFunction(callee.AsFunction(), args, line)
	case callee.IsNative():
		return it.callNative(callee.AsNative(), args, line)
	case callee.IsCFunction():
		return it.callForeign(callee.AsCFunction(), args, line)
	default:
		return value.Nil, newError(TypeError, line, "cannot call %s", value.TypeName(callee))
	}
}

// callFunction invokes a script-defined fn or lambda. Arity must match
// exactly. A fresh child of the function's captured environment is bound
// with the arguments; the result is the explicit return value, or the
// value of the last expression statement executed in the body.
func (it *Interp) callFunction(fn *value.Function, args []value.Value, line int) (value.Value, error) {
	if len(args) != fn.Arity() {
		return value.Nil, newError(TypeError, line, "function %s expects %d argument(s), got %d", describeFn(fn), fn.Arity(), len(args))
	}
	closure, _ := fn.Closure.(*env.Environment)
	callScope := closure.Child()
	for i, param := range fn.Params {
		callScope.Define(param, args[i], false)
	}

	savedReturning, savedReturn := it.returning, it.returnValue
	savedLast := it.lastValue
	it.returning = false
	it.lastValue = value.Nil

	err := it.execBlock(fn.Body, callScope)

	var result value.Value
	if it.returning {
		result = it.returnValue
	} else {
		result = it.lastValue
	}

	it.returning, it.returnValue = savedReturning, savedReturn
	it.lastValue = savedLast
	// breaking/continuing should never survive a function boundary; a
	// break/continue outside any loop inside the function body is simply
	// discarded rather than escaping into the caller's loop.
	it.breaking = false
	it.continuing = false

	if err != nil {
		return value.Nil, err
	}
	return result, nil
}

func describeFn(fn *value.Function) string {
	if fn.Name == "" {
		return "<lambda>"
	}
	return fn.Name
}

func (it *Interp) callNative(n *value.Native, args []value.Value, line int) (value.Value, error) {
	if n.Arity >= 0 && len(args) != n.Arity {
		return value.Nil, newError(TypeError, line, "native function %s expects %d argument(s), got %d", n.Name, n.Arity, len(args))
	}
	v, err := n.Fn(args)
	if err != nil {
		return value.Nil, newError(RuntimeError, line, "%v", err)
	}
	return v, nil
}

func (it *Interp) callForeign(cf *value.CFunction, args []value.Value, line int) (value.Value, error) {
	v, err := cf.Call(args)
	if err != nil {
		return value.Nil, newError(ForeignError, line, "%v", err)
	}
	return v, nil
}
