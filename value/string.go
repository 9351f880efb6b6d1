package value

import "unsafe"

// String is the heap representation of a scripting string. Strings are
// interned: two String literals with identical bytes share one allocation,
// so equality and hashing are cheap and tables can key directly off the
// pointer once interned.
type String struct {
	header
	chars string
	hash  uint32
}

func (*String) ObjType() ObjectType { return ObjString }

// Chars returns the Go string backing this value.
func (s *String) Chars() string { return s.chars }

// Len returns the byte length of the string.
func (s *String) Len() int { return len(s.chars) }

// DataPtr exposes a read-only pointer to the string's backing bytes, for
// passing an interned string to a C function expecting const char*.
func (s *String) DataPtr() unsafe.Pointer {
	if len(s.chars) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.StringData(s.chars))
}

// internTable holds every live interned string, keyed by content so
// NewString can return an existing object instead of allocating.
var internTable = map[string]*String{}

// fnvHash computes the 32-bit FNV-1a hash used for string identity and for
// table bucket placement.
func fnvHash(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// NewString interns s, returning the shared String object and bumping its
// reference count for the caller's new reference.
func NewString(s string) *String {
	if existing, ok := internTable[s]; ok {
		existing.Incref()
		return existing
	}
	str := &String{chars: s, hash: fnvHash(s)}
	str.Incref()
	internTable[s] = str
	return str
}

// unintern removes a String from the global table once its refcount drops
// to zero; called only from Value.Release.
func unintern(s *String) {
	if internTable[s.chars] == s {
		delete(internTable, s.chars)
	}
}

// Concat builds a new interned string from the concatenation of a and b.
func Concat(a, b *String) *String {
	return NewString(a.chars + b.chars)
}

// InternedCount reports how many distinct strings are currently interned,
// used by tests to check that Release actually frees dead strings.
func InternedCount() int { return len(internTable) }
