package ffi

import (
	"fmt"
	"reflect"

	"github.com/ebitengine/purego"

	"nyxlang/value"
)

// preparedCall is the ABI call descriptor lazily built from a FuncDesc's
// return/parameter types: a synthesized Go function signature bound to the
// resolved symbol address via purego.RegisterFunc. Building it is the
// expensive part (reflect.FuncOf + a cgo-free dynamic registration), so a
// fixed-arity function's preparedCall is built once and cached on the
// CFunction's closure; a variadic function gets a fresh preparedCall on
// every call, sized to that call's arguments.
type preparedCall struct {
	fn reflect.Value // addressable; call via fn.Call(args)
}

// prepare synthesizes a Go function type matching paramTypes/retType, binds
// it to addr, and returns the callable reflect.Value.
func prepare(addr uintptr, paramTypes []value.CType, retType value.CType) *preparedCall {
	in := make([]reflect.Type, len(paramTypes))
	for i, ct := range paramTypes {
		in[i] = goType(ct)
	}
	var out []reflect.Type
	if rt := goType(retType); rt != nil {
		out = []reflect.Type{rt}
	}
	sig := reflect.FuncOf(in, out, false)
	fnPtr := reflect.New(sig)
	purego.RegisterFunc(fnPtr.Interface(), addr)
	return &preparedCall{fn: fnPtr.Elem()}
}

// invoke marshals args per paramTypes, calls pc, and marshals the result
// back per retType.
func invoke(pc *preparedCall, paramTypes []value.CType, retType value.CType, args []value.Value) (value.Value, error) {
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		rv, err := marshalIn(a, paramTypes[i])
		if err != nil {
			return value.Nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		in[i] = rv
	}
	out := pc.fn.Call(in)
	if retType == value.CVoid || len(out) == 0 {
		return value.Nil, nil
	}
	return marshalOut(out[0], retType)
}

// BindFunction wraps a resolved FuncDesc (return type, parameter types,
// variadic flag, and the symbol's address already set by the caller — see
// native package's ImportHeader) into a script-visible CFunction. The
// fixed-arity descriptor is prepared lazily on first call and cached;
// each variadic call rebuilds a call shape sized to its own excess
// argument count, since the descriptor's fixed prefix doesn't predict how
// many extra arguments a given call site passes.
func BindFunction(name string, desc *value.FuncDesc) *value.CFunction {
	var cached *preparedCall

	call := func(args []value.Value) (value.Value, error) {
		if !desc.Variadic {
			if len(args) != len(desc.ParamTypes) {
				return value.Nil, fmt.Errorf("%s expects %d argument(s), got %d", name, len(desc.ParamTypes), len(args))
			}
			if cached == nil {
				cached = prepare(desc.Addr, desc.ParamTypes, desc.ReturnType)
			}
			return invoke(cached, desc.ParamTypes, desc.ReturnType, args)
		}

		if len(args) < len(desc.ParamTypes) {
			return value.Nil, fmt.Errorf("%s is variadic, expects at least %d argument(s), got %d", name, len(desc.ParamTypes), len(args))
		}
		paramTypes := make([]value.CType, len(args))
		copy(paramTypes, desc.ParamTypes)
		for i := len(desc.ParamTypes); i < len(args); i++ {
			paramTypes[i] = inferVariadicType(args[i])
		}
		pc := prepare(desc.Addr, paramTypes, desc.ReturnType)
		return invoke(pc, paramTypes, desc.ReturnType, args)
	}

	return value.NewCFunction(name, desc, call)
}
