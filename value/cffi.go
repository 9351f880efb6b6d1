package value

import "unsafe"

// CType enumerates the C scalar and aggregate types the foreign bridge
// understands, mirroring the ctype lattice of a typical libffi front end.
type CType int

const (
	CVoid CType = iota
	CChar
	CSChar
	CUChar
	CShort
	CUShort
	CInt
	CUInt
	CLong
	CULong
	CLongLong
	CULongLong
	CFloat
	CDouble
	CPointer
	CString // char* (null-terminated)
	CTypeStruct
	CBool
	CSizeT
	CInt8
	CInt16
	CInt32
	CInt64
	CUint8
	CUint16
	CUint32
	CUint64
)

var ctypeNames = [...]string{
	CVoid: "void", CChar: "char", CSChar: "schar", CUChar: "uchar",
	CShort: "short", CUShort: "ushort", CInt: "int", CUInt: "uint",
	CLong: "long", CULong: "ulong", CLongLong: "longlong", CULongLong: "ulonglong",
	CFloat: "float", CDouble: "double", CPointer: "pointer", CString: "string",
	CTypeStruct: "struct", CBool: "bool", CSizeT: "size_t",
	CInt8: "int8", CInt16: "int16", CInt32: "int32", CInt64: "int64",
	CUint8: "uint8", CUint16: "uint16", CUint32: "uint32", CUint64: "uint64",
}

func (t CType) String() string {
	if int(t) >= 0 && int(t) < len(ctypeNames) {
		return ctypeNames[t]
	}
	return "unknown"
}

// FieldDesc describes one field of a C struct layout: its name, type, byte
// offset, size, and (for nested structs) the descriptor of the field's own
// type.
type FieldDesc struct {
	Name   string
	Type   CType
	Offset int
	Size   int
	Nested *StructDesc
}

// StructDesc describes the memory layout of a C struct: field list, total
// size, and natural alignment. native/ffi computes these from a cheader
// declaration or an explicit script-side struct definition.
type StructDesc struct {
	Name      string
	Fields    []FieldDesc
	Size      int
	Alignment int
}

// FieldByName returns the field descriptor matching name, if any.
func (d *StructDesc) FieldByName(name string) (FieldDesc, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDesc{}, false
}

// FuncDesc describes a bound C function: its signature and, once prepared,
// the resolved symbol address. native/ffi fills Addr via native/loader.
type FuncDesc struct {
	Name       string
	ReturnType CType
	ParamTypes []CType
	Variadic   bool
	Addr       uintptr
}

// Pointer wraps a raw foreign address, tagged with a human-readable type
// name for diagnostics. It never owns the memory it addresses; Decref just
// drops the wrapper.
type Pointer struct {
	header
	Ptr      unsafe.Pointer
	TypeName string
}

func (*Pointer) ObjType() ObjectType { return ObjPointer }

// NewPointer wraps ptr with refcount 1.
func NewPointer(ptr unsafe.Pointer, typeName string) *Pointer {
	p := &Pointer{Ptr: ptr, TypeName: typeName}
	p.Incref()
	return p
}

// CStruct is a script-visible instance of a C struct: raw bytes backing it
// plus the descriptor used to interpret field reads/writes.
type CStruct struct {
	header
	Desc *StructDesc
	Data []byte
}

func (*CStruct) ObjType() ObjectType { return ObjCStruct }

// NewCStruct allocates zeroed storage sized per desc.
func NewCStruct(desc *StructDesc) *CStruct {
	c := &CStruct{Desc: desc, Data: make([]byte, desc.Size)}
	c.Incref()
	return c
}

// NewCStructView wraps an existing byte region (a nested-struct field of a
// parent CStruct) without copying. The view aliases the parent's buffer, so
// writes through it are visible to the parent and vice versa.
func NewCStructView(desc *StructDesc, data []byte) *CStruct {
	c := &CStruct{Desc: desc, Data: data}
	c.Incref()
	return c
}

// DataPtr returns an unsafe pointer to the struct's backing bytes, valid
// for the lifetime of the CStruct value (Go's GC will not move the backing
// array of an already-escaped byte slice while a reference is held).
func (c *CStruct) DataPtr() unsafe.Pointer {
	if len(c.Data) == 0 {
		return nil
	}
	return unsafe.Pointer(&c.Data[0])
}

// CFunction is a script-visible bound C function.
type CFunction struct {
	header
	Name string
	Desc *FuncDesc
	// Call is installed by native/ffi at bind time; it performs the actual
	// marshal-in/invoke/marshal-out dance. Stored as an opaque func value to
	// keep native/ffi's reflect-heavy call machinery out of this package.
	Call func(args []Value) (Value, error)
}

func (*CFunction) ObjType() ObjectType { return ObjCFunction }

// NewCFunction wraps desc with the given call trampoline, refcount 1.
func NewCFunction(name string, desc *FuncDesc, call func(args []Value) (Value, error)) *CFunction {
	f := &CFunction{Name: name, Desc: desc, Call: call}
	f.Incref()
	return f
}
