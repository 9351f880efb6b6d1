package value

import "nyxlang/ast"

// Function is a closure over a script-defined fn or lambda: its captured
// environment, parameter names, and body. Closure is stored as an opaque
// interface{} rather than a concrete *env.Environment to avoid a package
// cycle (env stores Values, Values can hold Functions); interp type-asserts
// it back to *env.Environment when it calls the function.
type Function struct {
	header
	Name    string // empty for lambdas
	Params  []string
	Body    *ast.Block
	Closure interface{}
}

func (*Function) ObjType() ObjectType { return ObjFunction }

// NewFunction returns a Function with refcount 1.
func NewFunction(name string, params []string, body *ast.Block, closure interface{}) *Function {
	f := &Function{Name: name, Params: params, Body: body, Closure: closure}
	f.Incref()
	return f
}

func (f *Function) Arity() int { return len(f.Params) }

// NativeFn is the Go signature every builtin must implement: given its
// arguments, return a result or an error. Arity of -1 marks a variadic
// builtin (print, for instance).
type NativeFn func(args []Value) (Value, error)

// Native wraps a Go-implemented builtin function so it can be stored and
// called like any other callable Value.
type Native struct {
	header
	Name  string
	Arity int
	Fn    NativeFn
}

func (*Native) ObjType() ObjectType { return ObjNative }

// NewNative returns a Native with refcount 1.
func NewNative(name string, arity int, fn NativeFn) *Native {
	n := &Native{Name: name, Arity: arity, Fn: fn}
	n.Incref()
	return n
}
