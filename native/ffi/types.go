// Package ffi is the foreign-call bridge: it prepares ABI call descriptors
// for C functions resolved by native/loader, marshals scripting values into
// and out of C argument/return slots, and lays out C struct descriptors.
//
// Invocation goes through reflect.FuncOf + purego.RegisterFunc rather than
// cgo: a Go function value whose signature matches the C descriptor is
// synthesized (once per bound fixed-arity function, and afresh on every call
// of a variadic one), purego binds it to the resolved
// symbol address, and reflect.Value.Call does the actual cross into C. This
// is what makes the bridge "generic" instead of needing a
// hand-written trampoline per function signature.
package ffi

import (
	"math/bits"
	"reflect"
	"runtime"
	"unsafe"

	"nyxlang/value"
)

var isWindows = runtime.GOOS == "windows"

// longIs64 reports whether this platform's C `long` is 64 bits: true on
// 64-bit non-Windows targets (LP64). 32-bit targets have a 32-bit `long`,
// and Windows uses the LLP64 convention where `long` stays 32 bits even on
// 64-bit builds. bits.UintSize tracks the Go int width, which matches the
// platform's native word size and, on every non-Windows Go target, the C
// `long` width too.
var longIs64 = bits.UintSize == 64 && !isWindows

// goType returns the reflect.Type used to marshal ct across the purego
// boundary. Every case here must be a type purego's RegisterFunc knows how
// to place in an argument/return slot per the host ABI.
func goType(ct value.CType) reflect.Type {
	switch ct {
	case value.CVoid:
		return nil
	case value.CChar, value.CSChar, value.CInt8:
		return reflect.TypeOf(int8(0))
	case value.CUChar, value.CUint8:
		return reflect.TypeOf(uint8(0))
	case value.CShort, value.CInt16:
		return reflect.TypeOf(int16(0))
	case value.CUShort, value.CUint16:
		return reflect.TypeOf(uint16(0))
	case value.CInt, value.CInt32:
		return reflect.TypeOf(int32(0))
	case value.CUInt, value.CUint32:
		return reflect.TypeOf(uint32(0))
	case value.CLong:
		if longIs64 {
			return reflect.TypeOf(int64(0))
		}
		return reflect.TypeOf(int32(0))
	case value.CULong:
		if longIs64 {
			return reflect.TypeOf(uint64(0))
		}
		return reflect.TypeOf(uint32(0))
	case value.CLongLong, value.CInt64:
		return reflect.TypeOf(int64(0))
	case value.CULongLong, value.CUint64:
		return reflect.TypeOf(uint64(0))
	case value.CFloat:
		return reflect.TypeOf(float32(0))
	case value.CDouble:
		return reflect.TypeOf(float64(0))
	case value.CBool:
		return reflect.TypeOf(false)
	case value.CSizeT:
		return reflect.TypeOf(uintptr(0))
	case value.CPointer, value.CTypeStruct:
		return reflect.TypeOf(unsafe.Pointer(nil))
	case value.CString:
		return reflect.TypeOf("")
	default:
		return reflect.TypeOf(int32(0))
	}
}

// isSigned reports whether ct's Go mapping is a signed integer kind, used
// by marshal-out to decide whether to sign- or zero-extend into Value's
// int64.
func isSigned(ct value.CType) bool {
	switch ct {
	case value.CUChar, value.CUShort, value.CUInt, value.CULong, value.CULongLong,
		value.CUint8, value.CUint16, value.CUint32, value.CUint64, value.CSizeT, value.CBool:
		return false
	default:
		return true
	}
}

// isFloatKind reports whether ct marshals through a Go floating-point type.
func isFloatKind(ct value.CType) bool {
	return ct == value.CFloat || ct == value.CDouble
}

// isIntegerKind reports whether ct marshals through a Go integer type
// (everything scalar except float/double/string/pointer/struct/void).
func isIntegerKind(ct value.CType) bool {
	switch ct {
	case value.CVoid, value.CFloat, value.CDouble, value.CString, value.CPointer, value.CTypeStruct:
		return false
	default:
		return true
	}
}

// inferVariadicType maps a scripting Value's own kind to a C type for an
// excess variadic argument: int->int, float->double, string->string,
// bool->bool, and anything else (pointer, struct, nil, ...)->pointer.
func inferVariadicType(v value.Value) value.CType {
	switch {
	case v.IsInt():
		return value.CInt
	case v.IsFloat():
		return value.CDouble
	case v.IsString():
		return value.CString
	case v.IsBool():
		return value.CBool
	default:
		return value.CPointer
	}
}
