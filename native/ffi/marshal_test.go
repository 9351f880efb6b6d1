package ffi

import (
	"reflect"
	"testing"
	"unsafe"

	"nyxlang/value"
)

func TestMarshalInIntTruncatesToSlotWidth(t *testing.T) {
	rv, err := marshalIn(value.Int(300), value.CUChar)
	if err != nil {
		t.Fatal(err)
	}
	if rv.Uint() != 44 { // 300 mod 256
		t.Errorf("marshalIn(300, CUChar) = %d, want 44", rv.Uint())
	}
}

func TestMarshalInIntAcceptsBoolAsZeroOrOne(t *testing.T) {
	rv, err := marshalIn(value.Bool(true), value.CInt)
	if err != nil {
		t.Fatal(err)
	}
	if rv.Int() != 1 {
		t.Errorf("marshalIn(true, CInt) = %d, want 1", rv.Int())
	}
}

func TestMarshalInIntRejectsString(t *testing.T) {
	_, err := marshalIn(value.Obj(value.NewString("nope")), value.CInt)
	if err == nil {
		t.Error("expected an error marshaling a string into an int slot")
	}
}

func TestMarshalInFloatPromotesInt(t *testing.T) {
	rv, err := marshalIn(value.Int(7), value.CDouble)
	if err != nil {
		t.Fatal(err)
	}
	if rv.Float() != 7.0 {
		t.Errorf("marshalIn(7, CDouble) = %v, want 7.0", rv.Float())
	}
}

func TestMarshalInStringAcceptsNilAsNullPointer(t *testing.T) {
	rv, err := marshalIn(value.Nil, value.CString)
	if err != nil {
		t.Fatal(err)
	}
	if rv.String() != "" {
		t.Errorf("marshalIn(nil, CString) = %q, want empty", rv.String())
	}
}

func TestMarshalInStringRejectsNonString(t *testing.T) {
	_, err := marshalIn(value.Int(1), value.CString)
	if err == nil {
		t.Error("expected an error marshaling an int into a char* slot")
	}
}

func TestMarshalInPointerAcceptsIntAsRawAddress(t *testing.T) {
	rv, err := marshalIn(value.Int(0x1000), value.CPointer)
	if err != nil {
		t.Fatal(err)
	}
	p := rv.Interface().(unsafe.Pointer)
	if uintptr(p) != 0x1000 {
		t.Errorf("marshalIn(0x1000, CPointer) = %v, want 0x1000", p)
	}
}

func TestMarshalInPointerAcceptsCStruct(t *testing.T) {
	desc := &value.StructDesc{Name: "p", Size: 8, Alignment: 4}
	cs := value.NewCStruct(desc)
	rv, err := marshalIn(value.Obj(cs), value.CPointer)
	if err != nil {
		t.Fatal(err)
	}
	p := rv.Interface().(unsafe.Pointer)
	if p != cs.DataPtr() {
		t.Error("marshalIn(cstruct, CPointer) should pass the struct's own buffer address")
	}
}

func TestMarshalInStructRequiresCStruct(t *testing.T) {
	_, err := marshalIn(value.Int(1), value.CTypeStruct)
	if err == nil {
		t.Error("expected an error marshaling a non-struct into a struct slot")
	}
}

func TestMarshalOutVoidIsNil(t *testing.T) {
	v, err := marshalOut(reflect.Value{}, value.CVoid)
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsNil() {
		t.Errorf("marshalOut(_, CVoid) = %v, want nil", v)
	}
}

func TestMarshalOutSignedInt(t *testing.T) {
	rv, _ := marshalIn(value.Int(-5), value.CInt)
	v, err := marshalOut(rv, value.CInt)
	if err != nil {
		t.Fatal(err)
	}
	if v.AsInt() != -5 {
		t.Errorf("marshalOut = %v, want -5", v.AsInt())
	}
}

func TestMarshalOutUnsignedIntWidensPositive(t *testing.T) {
	rv, _ := marshalIn(value.Int(200), value.CUChar)
	v, err := marshalOut(rv, value.CUChar)
	if err != nil {
		t.Fatal(err)
	}
	if v.AsInt() != 200 {
		t.Errorf("marshalOut = %v, want 200", v.AsInt())
	}
}

func TestMarshalOutFloat(t *testing.T) {
	rv, _ := marshalIn(value.Float(2.5), value.CDouble)
	v, err := marshalOut(rv, value.CDouble)
	if err != nil {
		t.Fatal(err)
	}
	if v.AsFloat() != 2.5 {
		t.Errorf("marshalOut = %v, want 2.5", v.AsFloat())
	}
}

func TestMarshalOutBool(t *testing.T) {
	rv, _ := marshalIn(value.Bool(true), value.CBool)
	v, err := marshalOut(rv, value.CBool)
	if err != nil {
		t.Fatal(err)
	}
	if !v.AsBool() {
		t.Error("marshalOut(true, CBool) should round-trip true")
	}
}
