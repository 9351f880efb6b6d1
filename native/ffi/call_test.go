package ffi

import (
	"testing"

	"nyxlang/value"
)

// These exercise BindFunction's argument-count validation, which runs
// before any purego call is prepared — safe to test without a resolved
// symbol address.

func TestBindFunctionRejectsWrongFixedArity(t *testing.T) {
	desc := &value.FuncDesc{Name: "add", ReturnType: value.CInt, ParamTypes: []value.CType{value.CInt, value.CInt}}
	cf := BindFunction("add", desc)
	_, err := cf.Call([]value.Value{value.Int(1)})
	if err == nil {
		t.Error("expected an arity error calling a 2-arg function with 1 argument")
	}
}

func TestBindFunctionVariadicRejectsTooFewArgs(t *testing.T) {
	desc := &value.FuncDesc{Name: "printf", ReturnType: value.CInt, ParamTypes: []value.CType{value.CString}, Variadic: true}
	cf := BindFunction("printf", desc)
	_, err := cf.Call(nil)
	if err == nil {
		t.Error("expected an error calling a variadic function missing its required leading argument")
	}
}
