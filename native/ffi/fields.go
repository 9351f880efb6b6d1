package ffi

import (
	"fmt"
	"unsafe"

	"nyxlang/value"
)

// pointerSize is the host's native pointer width, used for CPointer/CString
// fields and as the fallback size for an unresolved nested-struct pointer.
var pointerSize = int(unsafe.Sizeof(uintptr(0)))

// FieldSpec describes one struct field as supplied by a header declaration
// or a script-side struct definition, before layout is computed.
type FieldSpec struct {
	Name   string
	Type   value.CType
	Nested *value.StructDesc // non-nil when Type == CTypeStruct
}

// sizeOf returns the byte size of one scalar or nested-struct field.
func sizeOf(ct value.CType, nested *value.StructDesc) int {
	switch ct {
	case value.CVoid:
		return 0
	case value.CChar, value.CSChar, value.CUChar, value.CInt8, value.CUint8, value.CBool:
		return 1
	case value.CShort, value.CUShort, value.CInt16, value.CUint16:
		return 2
	case value.CInt, value.CUInt, value.CInt32, value.CUint32, value.CFloat:
		return 4
	case value.CLong, value.CULong:
		if longIs64 {
			return 8
		}
		return 4
	case value.CLongLong, value.CULongLong, value.CInt64, value.CUint64, value.CDouble:
		return 8
	case value.CPointer, value.CString:
		return pointerSize
	case value.CSizeT:
		return pointerSize
	case value.CTypeStruct:
		if nested != nil {
			return nested.Size
		}
		return pointerSize
	default:
		return 4
	}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// NewStructDesc computes field offsets by walking fields with natural
// alignment per field size (capped at 8, the widest scalar the C ABI
// aligns to on every platform this bridge targets), then rounds the total
// size up to the struct's own alignment — mirroring cffi.h's
// struct_compute_layout.
func NewStructDesc(name string, fields []FieldSpec) *value.StructDesc {
	desc := &value.StructDesc{Name: name}
	offset := 0
	maxAlign := 1
	for _, f := range fields {
		size := sizeOf(f.Type, f.Nested)
		align := size
		if align > 8 {
			align = 8
		}
		if align < 1 {
			align = 1
		}
		offset = roundUp(offset, align)
		desc.Fields = append(desc.Fields, value.FieldDesc{
			Name: f.Name, Type: f.Type, Offset: offset, Size: size, Nested: f.Nested,
		})
		offset += size
		if align > maxAlign {
			maxAlign = align
		}
	}
	desc.Size = roundUp(offset, maxAlign)
	desc.Alignment = maxAlign
	return desc
}

// GetField reads field name out of c's raw buffer and marshals it to a
// scripting Value per fd.Type.
func GetField(c *value.CStruct, name string) (value.Value, error) {
	fd, ok := c.Desc.FieldByName(name)
	if !ok {
		return value.Nil, fmt.Errorf("struct %s has no field %q", c.Desc.Name, name)
	}
	if fd.Offset+fd.Size > len(c.Data) {
		return value.Nil, fmt.Errorf("struct %s field %q out of bounds", c.Desc.Name, name)
	}
	base := unsafe.Add(c.DataPtr(), fd.Offset)
	switch fd.Type {
	case value.CChar, value.CSChar, value.CInt8:
		return value.Int(int64(*(*int8)(base))), nil
	case value.CUChar, value.CUint8, value.CBool:
		return value.Int(int64(*(*uint8)(base))), nil
	case value.CShort, value.CInt16:
		return value.Int(int64(*(*int16)(base))), nil
	case value.CUShort, value.CUint16:
		return value.Int(int64(*(*uint16)(base))), nil
	case value.CInt, value.CInt32:
		return value.Int(int64(*(*int32)(base))), nil
	case value.CUInt, value.CUint32:
		return value.Int(int64(*(*uint32)(base))), nil
	case value.CLong, value.CULong, value.CLongLong, value.CULongLong, value.CInt64, value.CUint64, value.CSizeT:
		if fd.Size == 4 {
			return value.Int(int64(*(*int32)(base))), nil
		}
		return value.Int(int64(*(*int64)(base))), nil
	case value.CFloat:
		return value.Float(float64(*(*float32)(base))), nil
	case value.CDouble:
		return value.Float(*(*float64)(base)), nil
	case value.CPointer, value.CString:
		ptr := *(*unsafe.Pointer)(base)
		if ptr == nil {
			return value.Nil, nil
		}
		if fd.Type == value.CString {
			return value.Obj(value.NewString(cStringFromPointer(ptr))), nil
		}
		return value.Obj(value.NewPointer(ptr, "pointer")), nil
	case value.CTypeStruct:
		if fd.Nested == nil {
			return value.Nil, fmt.Errorf("struct %s field %q has no layout for its nested struct", c.Desc.Name, name)
		}
		nested := value.NewCStructView(fd.Nested, unsafe.Slice((*byte)(base), fd.Size))
		return value.Obj(nested), nil
	default:
		return value.Nil, fmt.Errorf("struct %s field %q has unsupported type %s", c.Desc.Name, name, fd.Type)
	}
}

// SetField marshals v into field name of c's raw buffer per fd.Type.
func SetField(c *value.CStruct, name string, v value.Value) error {
	fd, ok := c.Desc.FieldByName(name)
	if !ok {
		return fmt.Errorf("struct %s has no field %q", c.Desc.Name, name)
	}
	if fd.Offset+fd.Size > len(c.Data) {
		return fmt.Errorf("struct %s field %q out of bounds", c.Desc.Name, name)
	}
	base := unsafe.Add(c.DataPtr(), fd.Offset)

	asInt := func() (int64, error) {
		switch {
		case v.IsInt():
			return v.AsInt(), nil
		case v.IsBool():
			if v.AsBool() {
				return 1, nil
			}
			return 0, nil
		default:
			return 0, fmt.Errorf("field %q requires an int or bool, got %s", name, value.TypeName(v))
		}
	}

	switch fd.Type {
	case value.CChar, value.CSChar, value.CInt8:
		n, err := asInt()
		if err != nil {
			return err
		}
		*(*int8)(base) = int8(n)
	case value.CUChar, value.CUint8, value.CBool:
		n, err := asInt()
		if err != nil {
			return err
		}
		*(*uint8)(base) = uint8(n)
	case value.CShort, value.CInt16:
		n, err := asInt()
		if err != nil {
			return err
		}
		*(*int16)(base) = int16(n)
	case value.CUShort, value.CUint16:
		n, err := asInt()
		if err != nil {
			return err
		}
		*(*uint16)(base) = uint16(n)
	case value.CInt, value.CInt32:
		n, err := asInt()
		if err != nil {
			return err
		}
		*(*int32)(base) = int32(n)
	case value.CUInt, value.CUint32:
		n, err := asInt()
		if err != nil {
			return err
		}
		*(*uint32)(base) = uint32(n)
	case value.CLong, value.CULong, value.CLongLong, value.CULongLong, value.CInt64, value.CUint64, value.CSizeT:
		n, err := asInt()
		if err != nil {
			return err
		}
		if fd.Size == 4 {
			*(*int32)(base) = int32(n)
		} else {
			*(*int64)(base) = n
		}
	case value.CFloat:
		if !v.IsNumber() {
			return fmt.Errorf("field %q requires a number, got %s", name, value.TypeName(v))
		}
		*(*float32)(base) = float32(v.AsNumber())
	case value.CDouble:
		if !v.IsNumber() {
			return fmt.Errorf("field %q requires a number, got %s", name, value.TypeName(v))
		}
		*(*float64)(base) = v.AsNumber()
	case value.CPointer:
		switch {
		case v.IsNil():
			*(*unsafe.Pointer)(base) = nil
		case v.IsPointer():
			*(*unsafe.Pointer)(base) = v.AsPointer().Ptr
		case v.IsCStruct():
			*(*unsafe.Pointer)(base) = v.AsCStruct().DataPtr()
		default:
			return fmt.Errorf("field %q requires nil, pointer, or struct, got %s", name, value.TypeName(v))
		}
	case value.CString:
		switch {
		case v.IsNil():
			*(*unsafe.Pointer)(base) = nil
		case v.IsString():
			*(*unsafe.Pointer)(base) = v.AsString().DataPtr()
		default:
			return fmt.Errorf("field %q requires nil or a string, got %s", name, value.TypeName(v))
		}
	default:
		return fmt.Errorf("struct %s field %q has unsupported type %s", c.Desc.Name, name, fd.Type)
	}
	return nil
}
