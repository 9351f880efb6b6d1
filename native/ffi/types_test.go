package ffi

import (
	"reflect"
	"testing"

	"nyxlang/value"
)

func TestGoTypeScalarMappings(t *testing.T) {
	cases := []struct {
		ct   value.CType
		kind reflect.Kind
	}{
		{value.CChar, reflect.Int8},
		{value.CUChar, reflect.Uint8},
		{value.CShort, reflect.Int16},
		{value.CInt, reflect.Int32},
		{value.CUInt, reflect.Uint32},
		{value.CLongLong, reflect.Int64},
		{value.CFloat, reflect.Float32},
		{value.CDouble, reflect.Float64},
		{value.CBool, reflect.Bool},
		{value.CSizeT, reflect.Uintptr},
		{value.CString, reflect.String},
		{value.CPointer, reflect.UnsafePointer},
		{value.CTypeStruct, reflect.UnsafePointer},
	}
	for _, c := range cases {
		got := goType(c.ct)
		if got == nil || got.Kind() != c.kind {
			t.Errorf("goType(%s) kind = %v, want %v", c.ct, got, c.kind)
		}
	}
}

func TestGoTypeVoidIsNil(t *testing.T) {
	if goType(value.CVoid) != nil {
		t.Error("goType(CVoid) should be nil (no return slot)")
	}
}

func TestGoTypeLongFollowsPlatformWidth(t *testing.T) {
	got := goType(value.CLong)
	wantKind := reflect.Int32
	if longIs64 {
		wantKind = reflect.Int64
	}
	if got.Kind() != wantKind {
		t.Errorf("goType(CLong) kind = %v, want %v (longIs64=%v)", got.Kind(), wantKind, longIs64)
	}
}

func TestIsSignedClassification(t *testing.T) {
	if isSigned(value.CUInt) {
		t.Error("CUInt should be unsigned")
	}
	if !isSigned(value.CInt) {
		t.Error("CInt should be signed")
	}
	if isSigned(value.CBool) {
		t.Error("CBool is classified as unsigned (zero-extended)")
	}
}

func TestIsFloatKind(t *testing.T) {
	if !isFloatKind(value.CFloat) || !isFloatKind(value.CDouble) {
		t.Error("CFloat and CDouble should be float kinds")
	}
	if isFloatKind(value.CInt) {
		t.Error("CInt should not be a float kind")
	}
}

func TestIsIntegerKindExcludesAggregatesAndFloats(t *testing.T) {
	for _, ct := range []value.CType{value.CVoid, value.CFloat, value.CDouble, value.CString, value.CPointer, value.CTypeStruct} {
		if isIntegerKind(ct) {
			t.Errorf("isIntegerKind(%s) = true, want false", ct)
		}
	}
	if !isIntegerKind(value.CInt) || !isIntegerKind(value.CBool) {
		t.Error("CInt and CBool should classify as integer kinds")
	}
}

func TestInferVariadicType(t *testing.T) {
	cases := []struct {
		v    value.Value
		want value.CType
	}{
		{value.Int(1), value.CInt},
		{value.Float(1.5), value.CDouble},
		{value.Obj(value.NewString("x")), value.CString},
		{value.Bool(true), value.CBool},
	}
	for _, c := range cases {
		if got := inferVariadicType(c.v); got != c.want {
			t.Errorf("inferVariadicType(%v) = %s, want %s", c.v, got, c.want)
		}
	}
}
