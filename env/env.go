// Package env implements the chained lexical scopes that back variable
// binding, closures, and function calls.
package env

import "nyxlang/value"

type binding struct {
	value   value.Value
	isConst bool
}

// Environment is one lexical scope: a set of bindings plus a link to the
// enclosing scope. Functions capture their defining Environment by pointer,
// which is what makes closures work — mutations made after a closure is
// created are visible inside it, and vice versa.
type Environment struct {
	parent *Environment
	vars   map[string]*binding
}

// New returns a fresh root environment with no parent.
func New() *Environment {
	return &Environment{vars: make(map[string]*binding)}
}

// Child returns a new scope nested inside e.
func (e *Environment) Child() *Environment {
	return &Environment{parent: e, vars: make(map[string]*binding)}
}

// Parent returns the enclosing scope, or nil at the root.
func (e *Environment) Parent() *Environment { return e.parent }

// Define creates a new binding in this scope, shadowing any binding of the
// same name in an enclosing scope. Redefining a name already bound in this
// exact scope overwrites it (releasing the old value).
func (e *Environment) Define(name string, v value.Value, isConst bool) {
	v.Retain()
	if old, ok := e.vars[name]; ok {
		old.value.Release()
	}
	e.vars[name] = &binding{value: v, isConst: isConst}
}

// Get resolves name by walking outward from e to the root.
func (e *Environment) Get(name string) (value.Value, bool) {
	for scope := e; scope != nil; scope = scope.parent {
		if b, ok := scope.vars[name]; ok {
			return b.value, true
		}
	}
	return value.Nil, false
}

// GetLocal looks up name only in this scope, without walking outward.
func (e *Environment) GetLocal(name string) (value.Value, bool) {
	if b, ok := e.vars[name]; ok {
		return b.value, true
	}
	return value.Nil, false
}

// IsConst reports whether name, as resolved from e outward, was declared
// with `::`.
func (e *Environment) IsConst(name string) bool {
	for scope := e; scope != nil; scope = scope.parent {
		if b, ok := scope.vars[name]; ok {
			return b.isConst
		}
	}
	return false
}

// Assign rebinds the nearest existing binding of name, walking outward from
// e. Returns false if name is undeclared anywhere in the chain, or if the
// existing binding is const.
func (e *Environment) Assign(name string, v value.Value) bool {
	for scope := e; scope != nil; scope = scope.parent {
		if b, ok := scope.vars[name]; ok {
			if b.isConst {
				return false
			}
			v.Retain()
			b.value.Release()
			b.value = v
			return true
		}
	}
	return false
}
