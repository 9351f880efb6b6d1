// Package value implements the runtime value representation shared by the
// evaluator and the native bridge: a small tagged union for immediates
// (nil, bool, int, float) plus a reference-counted heap for strings,
// arrays, tables, functions, and foreign objects.
package value

import (
	"fmt"
	"math"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindObj
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindObj:
		return "obj"
	default:
		return "unknown"
	}
}

// Value is the scripting language's universal value type. Immediates are
// stored inline; heap-allocated kinds carry an Object behind Obj, reference
// counted independently of Go's GC so that native/ffi can hand out raw
// pointers into array/string storage without the Go runtime relocating it
// underneath a C callee.
type Value struct {
	Kind    Kind
	boolean bool
	integer int64
	floatv  float64
	Obj     Object
}

// Object is implemented by every heap-allocated value kind.
type Object interface {
	ObjType() ObjectType
	Incref()
	Decref() int // returns the reference count after decrementing
	RefCount() int
}

// ObjectType tags the concrete heap representation of an Object.
type ObjectType int

const (
	ObjString ObjectType = iota
	ObjArray
	ObjTable
	ObjFunction
	ObjNative
	ObjPointer
	ObjCStruct
	ObjCFunction
)

func (t ObjectType) String() string {
	switch t {
	case ObjString:
		return "string"
	case ObjArray:
		return "array"
	case ObjTable:
		return "table"
	case ObjFunction:
		return "function"
	case ObjNative:
		return "native"
	case ObjPointer:
		return "pointer"
	case ObjCStruct:
		return "cstruct"
	case ObjCFunction:
		return "cfunction"
	default:
		return "unknown"
	}
}

// header is embedded by every heap object and provides the shared
// reference-counting bookkeeping.
type header struct {
	refs int
}

func (h *header) Incref()     { h.refs++ }
func (h *header) RefCount() int { return h.refs }
func (h *header) Decref() int {
	h.refs--
	return h.refs
}

// ---- constructors ----------------------------------------------------

var Nil = Value{Kind: KindNil}

func Bool(b bool) Value  { return Value{Kind: KindBool, boolean: b} }
func Int(n int64) Value  { return Value{Kind: KindInt, integer: n} }
func Float(f float64) Value { return Value{Kind: KindFloat, floatv: f} }

func Obj(o Object) Value { return Value{Kind: KindObj, Obj: o} }

// ---- accessors ---------------------------------------------------------

func (v Value) IsNil() bool    { return v.Kind == KindNil }
func (v Value) IsBool() bool   { return v.Kind == KindBool }
func (v Value) IsInt() bool    { return v.Kind == KindInt }
func (v Value) IsFloat() bool  { return v.Kind == KindFloat }
func (v Value) IsNumber() bool { return v.Kind == KindInt || v.Kind == KindFloat }
func (v Value) IsObj() bool    { return v.Kind == KindObj }

func (v Value) AsBool() bool     { return v.boolean }
func (v Value) AsInt() int64     { return v.integer }
func (v Value) AsFloat() float64 { return v.floatv }

// AsNumber widens an int or float Value to a float64, used for mixed
// arithmetic where one operand is a float.
func (v Value) AsNumber() float64 {
	if v.Kind == KindInt {
		return float64(v.integer)
	}
	return v.floatv
}

func (v Value) objType() (ObjectType, bool) {
	if v.Kind != KindObj || v.Obj == nil {
		return 0, false
	}
	return v.Obj.ObjType(), true
}

func (v Value) IsString() bool   { t, ok := v.objType(); return ok && t == ObjString }
func (v Value) IsArray() bool    { t, ok := v.objType(); return ok && t == ObjArray }
func (v Value) IsTable() bool    { t, ok := v.objType(); return ok && t == ObjTable }
func (v Value) IsFunction() bool { t, ok := v.objType(); return ok && t == ObjFunction }
func (v Value) IsNative() bool   { t, ok := v.objType(); return ok && t == ObjNative }
func (v Value) IsPointer() bool  { t, ok := v.objType(); return ok && t == ObjPointer }
func (v Value) IsCStruct() bool  { t, ok := v.objType(); return ok && t == ObjCStruct }
func (v Value) IsCFunction() bool { t, ok := v.objType(); return ok && t == ObjCFunction }

func (v Value) AsString() *String {
	s, _ := v.Obj.(*String)
	return s
}
func (v Value) AsArray() *Array {
	a, _ := v.Obj.(*Array)
	return a
}
func (v Value) AsTable() *Table {
	t, _ := v.Obj.(*Table)
	return t
}
func (v Value) AsFunction() *Function {
	f, _ := v.Obj.(*Function)
	return f
}
func (v Value) AsNative() *Native {
	n, _ := v.Obj.(*Native)
	return n
}
func (v Value) AsPointer() *Pointer {
	p, _ := v.Obj.(*Pointer)
	return p
}
func (v Value) AsCStruct() *CStruct {
	c, _ := v.Obj.(*CStruct)
	return c
}
func (v Value) AsCFunction() *CFunction {
	c, _ := v.Obj.(*CFunction)
	return c
}

// Retain and Release implement the value-level reference-counting protocol:
// every heap slot (environment binding, array element, table entry) must
// Retain a Value on store and Release the value it overwrites.
func (v Value) Retain() {
	if v.Kind == KindObj && v.Obj != nil {
		v.Obj.Incref()
	}
}

// Release decrements the refcount and frees transitively owned references
// once it reaches zero (array elements and table entries are released in
// turn).
func (v Value) Release() {
	if v.Kind != KindObj || v.Obj == nil {
		return
	}
	if v.Obj.Decref() > 0 {
		return
	}
	switch o := v.Obj.(type) {
	case *Array:
		for _, e := range o.elements {
			e.Release()
		}
	case *Table:
		for _, e := range o.entries {
			if e.occupied {
				e.Value.Release()
				Obj(e.Key).Release()
			}
		}
	case *String:
		unintern(o)
	}
}

// Equals implements value equality: numbers compare across int/float,
// strings compare by content, everything else (arrays, tables, functions,
// pointers) compares by identity.
func Equals(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		if a.Kind == KindInt && b.Kind == KindInt {
			return a.integer == b.integer
		}
		return a.AsNumber() == b.AsNumber()
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindObj:
		if a.IsString() && b.IsString() {
			return a.AsString().chars == b.AsString().chars
		}
		return a.Obj == b.Obj
	}
	return false
}

// Truthy implements the language's truthiness rule: nil and false are
// falsy, every other value (including 0 and "") is truthy.
func Truthy(v Value) bool {
	switch v.Kind {
	case KindNil:
		return false
	case KindBool:
		return v.boolean
	default:
		return true
	}
}

// TypeName returns the user-facing type name used in error messages.
func TypeName(v Value) string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindObj:
		t, _ := v.objType()
		return t.String()
	}
	return "unknown"
}

// ToString renders a Value the way the language's print builtin does.
func ToString(v Value) string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.integer)
	case KindFloat:
		if math.IsInf(v.floatv, 1) {
			return "inf"
		}
		if math.IsInf(v.floatv, -1) {
			return "-inf"
		}
		return fmt.Sprintf("%g", v.floatv)
	case KindObj:
		return objToString(v)
	}
	return "?"
}

func objToString(v Value) string {
	switch o := v.Obj.(type) {
	case *String:
		return o.chars
	case *Array:
		s := "["
		for i, e := range o.elements {
			if i > 0 {
				s += ", "
			}
			s += ToString(e)
		}
		return s + "]"
	case *Table:
		s := "{"
		first := true
		for _, e := range o.entries {
			if !e.occupied {
				continue
			}
			if !first {
				s += ", "
			}
			first = false
			s += e.Key.chars + ": " + ToString(e.Value)
		}
		return s + "}"
	case *Function:
		return fmt.Sprintf("<fn %s>", o.Name)
	case *Native:
		return fmt.Sprintf("<native %s>", o.Name)
	case *Pointer:
		return fmt.Sprintf("<pointer %s>", o.TypeName)
	case *CStruct:
		return fmt.Sprintf("<cstruct %s>", o.Desc.Name)
	case *CFunction:
		return fmt.Sprintf("<cfunction %s>", o.Name)
	}
	return "<obj>"
}
