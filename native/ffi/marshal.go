package ffi

import (
	"fmt"
	"reflect"
	"unsafe"

	"nyxlang/value"
)

// marshalIn converts a scripting Value into a reflect.Value of goType(ct),
// following a strict marshal-in acceptance table. Any combination not
// listed there is a marshal error.
func marshalIn(v value.Value, ct value.CType) (reflect.Value, error) {
	gt := goType(ct)
	switch {
	case isIntegerKind(ct):
		return marshalInInt(v, ct, gt)
	case isFloatKind(ct):
		return marshalInFloat(v, ct, gt)
	case ct == value.CString:
		return marshalInString(v, gt)
	case ct == value.CPointer:
		return marshalInPointer(v, gt)
	case ct == value.CTypeStruct:
		return marshalInStruct(v, gt)
	default:
		return reflect.Value{}, fmt.Errorf("ffi: cannot marshal into C type %s", ct)
	}
}

// marshalInInt handles bool/int* and the unsigned variants: int is
// accepted and truncated/reinterpreted to the slot width; bool is accepted
// (as 0/1) only for the bool C type and the signed integer types, not for
// the unsigned variants.
func marshalInInt(v value.Value, ct value.CType, gt reflect.Type) (reflect.Value, error) {
	var n int64
	switch {
	case v.IsInt():
		n = v.AsInt()
	case v.IsBool():
		if !isSigned(ct) && ct != value.CBool {
			return reflect.Value{}, fmt.Errorf("ffi: C type %s requires int, got %s", ct, value.TypeName(v))
		}
		if v.AsBool() {
			n = 1
		}
	default:
		return reflect.Value{}, fmt.Errorf("ffi: C type %s requires int or bool, got %s", ct, value.TypeName(v))
	}
	out := reflect.New(gt).Elem()
	switch gt.Kind() {
	case reflect.Int8:
		out.SetInt(int64(int8(n)))
	case reflect.Int16:
		out.SetInt(int64(int16(n)))
	case reflect.Int32:
		out.SetInt(int64(int32(n)))
	case reflect.Int64:
		out.SetInt(n)
	case reflect.Uint8:
		out.SetUint(uint64(uint8(n)))
	case reflect.Uint16:
		out.SetUint(uint64(uint16(n)))
	case reflect.Uint32:
		out.SetUint(uint64(uint32(n)))
	case reflect.Uint64, reflect.Uintptr:
		out.SetUint(uint64(n))
	case reflect.Bool:
		out.SetBool(n != 0)
	default:
		return reflect.Value{}, fmt.Errorf("ffi: unsupported integer slot kind %s", gt.Kind())
	}
	return out, nil
}

// marshalInFloat accepts an int (promoted) or a float, rounding per IEEE
// 754 into float32/float64 as the slot requires.
func marshalInFloat(v value.Value, ct value.CType, gt reflect.Type) (reflect.Value, error) {
	if !v.IsNumber() {
		return reflect.Value{}, fmt.Errorf("ffi: C type %s requires a number, got %s", ct, value.TypeName(v))
	}
	f := v.AsNumber()
	out := reflect.New(gt).Elem()
	if gt.Kind() == reflect.Float32 {
		out.SetFloat(float64(float32(f)))
	} else {
		out.SetFloat(f)
	}
	return out, nil
}

// marshalInString accepts nil (-> null) or a scripting string (-> pointer
// to its interned, NUL-terminated bytes).
func marshalInString(v value.Value, gt reflect.Type) (reflect.Value, error) {
	if v.IsNil() {
		return reflect.Zero(gt), nil
	}
	if !v.IsString() {
		return reflect.Value{}, fmt.Errorf("ffi: char* parameter requires nil or a string, got %s", value.TypeName(v))
	}
	out := reflect.New(gt).Elem()
	out.SetString(v.AsString().Chars())
	return out, nil
}

// marshalInPointer accepts nil (-> null), an existing foreign pointer, a
// foreign struct (passed by its buffer's address), or an int reinterpreted
// as a raw address.
func marshalInPointer(v value.Value, gt reflect.Type) (reflect.Value, error) {
	var p unsafe.Pointer
	switch {
	case v.IsNil():
		p = nil
	case v.IsPointer():
		p = v.AsPointer().Ptr
	case v.IsCStruct():
		p = v.AsCStruct().DataPtr()
	case v.IsInt():
		p = unsafe.Pointer(uintptr(v.AsInt()))
	default:
		return reflect.Value{}, fmt.Errorf("ffi: pointer parameter requires nil, pointer, struct, or int, got %s", value.TypeName(v))
	}
	out := reflect.New(gt).Elem()
	out.Set(reflect.ValueOf(p))
	return out, nil
}

// marshalInStruct requires a foreign-struct value, passed by the address of
// its owned byte buffer.
func marshalInStruct(v value.Value, gt reflect.Type) (reflect.Value, error) {
	if !v.IsCStruct() {
		return reflect.Value{}, fmt.Errorf("ffi: struct parameter requires a foreign struct, got %s", value.TypeName(v))
	}
	out := reflect.New(gt).Elem()
	out.Set(reflect.ValueOf(v.AsCStruct().DataPtr()))
	return out, nil
}

// marshalOut converts a reflect.Value produced by a foreign call's return
// slot back into a scripting Value, per the marshal-out rules.
func marshalOut(rv reflect.Value, ct value.CType) (value.Value, error) {
	switch {
	case ct == value.CVoid:
		return value.Nil, nil
	case ct == value.CBool:
		return value.Bool(rv.Bool()), nil
	case isIntegerKind(ct):
		if isSigned(ct) {
			return value.Int(rv.Int()), nil
		}
		return value.Int(int64(rv.Uint())), nil
	case isFloatKind(ct):
		return value.Float(rv.Float()), nil
	case ct == value.CString:
		if rv.Kind() == reflect.String {
			return value.Obj(value.NewString(rv.String())), nil
		}
		ptr := rv.UnsafePointer()
		if ptr == nil {
			return value.Nil, nil
		}
		return value.Obj(value.NewString(cStringFromPointer(ptr))), nil
	case ct == value.CPointer || ct == value.CTypeStruct:
		ptr := rv.UnsafePointer()
		if ptr == nil {
			return value.Nil, nil
		}
		return value.Obj(value.NewPointer(ptr, ct.String()+"*")), nil
	default:
		return value.Nil, fmt.Errorf("ffi: cannot marshal C type %s out", ct)
	}
}

// cStringFromPointer reads a NUL-terminated byte run starting at ptr. It is
// used when purego hands back the return slot as a bare pointer rather than
// pre-decoding it to a Go string (string-typed return slots are decoded by
// the reflect.Value itself; this path only fires if a lower-level signature
// surfaces the raw address instead).
func cStringFromPointer(ptr unsafe.Pointer) string {
	if ptr == nil {
		return ""
	}
	const maxLen = 1 << 20
	n := 0
	for n < maxLen {
		b := *(*byte)(unsafe.Pointer(uintptr(ptr) + uintptr(n)))
		if b == 0 {
			break
		}
		n++
	}
	return string(unsafe.Slice((*byte)(ptr), n))
}
