// Package builtins registers the language's standard native functions —
// print/println/len, a handful of math shims, and string utilities — into
// an evaluator's root environment before a program runs. These are
// explicitly external to the core evaluator: it only ever
// sees them as ordinary value.Native callables, with no special-cased
// dispatch for any particular name.
package builtins

import (
	"fmt"
	"math"
	"os"
	"strings"

	"nyxlang/env"
	"nyxlang/value"
)

// Register installs every builtin into root. Call it once per Interp
// before running a program, the same way a host registers any native
// `clock` into its global environment.
func Register(root *env.Environment) {
	def := func(name string, arity int, fn value.NativeFn) {
		root.Define(name, value.Obj(value.NewNative(name, arity, fn)), false)
	}

	def("print", -1, biPrint)
	def("println", -1, biPrintln)
	def("len", 1, biLen)

	def("sqrt", 1, mathUnary(math.Sqrt))
	def("abs", 1, mathUnary(math.Abs))
	def("floor", 1, mathUnary(math.Floor))
	def("ceil", 1, mathUnary(math.Ceil))
	def("round", 1, mathUnary(math.Round))
	def("pow", 2, biPow)
	def("min", 2, biMin)
	def("max", 2, biMax)

	def("upper", 1, stringUnary(strings.ToUpper))
	def("lower", 1, stringUnary(strings.ToLower))
	def("trim", 1, stringUnary(strings.TrimSpace))
	def("split", 2, biSplit)
	def("join", 2, biJoin)
	def("contains", 2, biContains)
	def("substr", 3, biSubstr)

	def("assert", -1, biAssert)
	def("error", 1, biError)
}

func biPrint(args []value.Value) (value.Value, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(value.ToString(a))
	}
	fmt.Print(b.String())
	return value.Nil, nil
}

func biPrintln(args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.ToString(a)
	}
	fmt.Println(strings.Join(parts, " "))
	return value.Nil, nil
}

func biLen(args []value.Value) (value.Value, error) {
	v := args[0]
	switch {
	case v.IsString():
		return value.Int(int64(len(v.AsString().Chars()))), nil
	case v.IsArray():
		return value.Int(int64(v.AsArray().Len())), nil
	case v.IsTable():
		return value.Int(int64(v.AsTable().Count())), nil
	default:
		return value.Nil, fmt.Errorf("len: expected string, array, or table, got %s", value.TypeName(v))
	}
}

// mathUnary lifts a float64->float64 stdlib math function into a NativeFn
// that accepts an int or a float and always returns a float, per the
// numeric-promotion convention used throughout the evaluator's own
// arithmetic.
func mathUnary(f func(float64) float64) value.NativeFn {
	return func(args []value.Value) (value.Value, error) {
		if !args[0].IsNumber() {
			return value.Nil, fmt.Errorf("expected a number, got %s", value.TypeName(args[0]))
		}
		return value.Float(f(args[0].AsNumber())), nil
	}
}

func biPow(args []value.Value) (value.Value, error) {
	if !args[0].IsNumber() || !args[1].IsNumber() {
		return value.Nil, fmt.Errorf("pow: expected numbers, got %s and %s", value.TypeName(args[0]), value.TypeName(args[1]))
	}
	return value.Float(math.Pow(args[0].AsNumber(), args[1].AsNumber())), nil
}

func biMin(args []value.Value) (value.Value, error) {
	a, b := args[0], args[1]
	if !a.IsNumber() || !b.IsNumber() {
		return value.Nil, fmt.Errorf("min: expected numbers, got %s and %s", value.TypeName(a), value.TypeName(b))
	}
	if a.IsInt() && b.IsInt() {
		if a.AsInt() < b.AsInt() {
			return a, nil
		}
		return b, nil
	}
	if a.AsNumber() < b.AsNumber() {
		return a, nil
	}
	return b, nil
}

func biMax(args []value.Value) (value.Value, error) {
	a, b := args[0], args[1]
	if !a.IsNumber() || !b.IsNumber() {
		return value.Nil, fmt.Errorf("max: expected numbers, got %s and %s", value.TypeName(a), value.TypeName(b))
	}
	if a.IsInt() && b.IsInt() {
		if a.AsInt() > b.AsInt() {
			return a, nil
		}
		return b, nil
	}
	if a.AsNumber() > b.AsNumber() {
		return a, nil
	}
	return b, nil
}

func stringUnary(f func(string) string) value.NativeFn {
	return func(args []value.Value) (value.Value, error) {
		if !args[0].IsString() {
			return value.Nil, fmt.Errorf("expected a string, got %s", value.TypeName(args[0]))
		}
		return value.Obj(value.NewString(f(args[0].AsString().Chars()))), nil
	}
}

func biSplit(args []value.Value) (value.Value, error) {
	if !args[0].IsString() || !args[1].IsString() {
		return value.Nil, fmt.Errorf("split: expected two strings")
	}
	parts := strings.Split(args[0].AsString().Chars(), args[1].AsString().Chars())
	vs := make([]value.Value, len(parts))
	for i, p := range parts {
		vs[i] = value.Obj(value.NewString(p))
	}
	return value.Obj(value.NewArrayFrom(vs)), nil
}

func biJoin(args []value.Value) (value.Value, error) {
	if !args[0].IsArray() || !args[1].IsString() {
		return value.Nil, fmt.Errorf("join: expected an array and a string")
	}
	sep := args[1].AsString().Chars()
	elems := args[0].AsArray().Elements()
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = value.ToString(e)
	}
	return value.Obj(value.NewString(strings.Join(parts, sep))), nil
}

func biContains(args []value.Value) (value.Value, error) {
	if !args[0].IsString() || !args[1].IsString() {
		return value.Nil, fmt.Errorf("contains: expected two strings")
	}
	return value.Bool(strings.Contains(args[0].AsString().Chars(), args[1].AsString().Chars())), nil
}

func biSubstr(args []value.Value) (value.Value, error) {
	if !args[0].IsString() || !args[1].IsInt() || !args[2].IsInt() {
		return value.Nil, fmt.Errorf("substr: expected (string, int, int)")
	}
	s := args[0].AsString().Chars()
	start, end := int(args[1].AsInt()), int(args[2].AsInt())
	if start < 0 || end > len(s) || start > end {
		return value.Nil, fmt.Errorf("substr: range [%d:%d] out of bounds for length %d", start, end, len(s))
	}
	return value.Obj(value.NewString(s[start:end])), nil
}

// biAssert reports a failing assertion to stderr and terminates the
// process; it and error are the builtins with an effect the evaluator's
// own error flag can't express.
func biAssert(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Nil, fmt.Errorf("assert: expected at least one argument")
	}
	if value.Truthy(args[0]) {
		return value.Nil, nil
	}
	msg := "assertion failed"
	if len(args) > 1 {
		msg = value.ToString(args[1])
	}
	fmt.Fprintln(os.Stderr, "assertion failed:", msg)
	os.Exit(1)
	return value.Nil, nil
}

func biError(args []value.Value) (value.Value, error) {
	fmt.Fprintln(os.Stderr, "error:", value.ToString(args[0]))
	os.Exit(1)
	return value.Nil, nil
}
