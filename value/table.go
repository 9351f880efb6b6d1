package value

// tableEntry is one slot of the open-addressed hash table. occupied
// distinguishes a live entry from an empty slot; tombstone distinguishes a
// deleted entry (which must still terminate nothing — probing continues
// past it) from a truly empty slot (which stops a probe).
type tableEntry struct {
	Key      *String
	Value    Value
	occupied bool
	tombstone bool
	IsConst  bool
}

// Table is an open-addressed hash table keyed by interned strings, grown
// geometrically and kept below a 0.75 load factor. Deletes leave tombstones
// so linear probe chains stay intact.
type Table struct {
	header
	entries []tableEntry
	count   int // live entries, not counting tombstones
	used    int // occupied slots plus tombstones; drives growth so probes always hit an empty slot
}

func (*Table) ObjType() ObjectType { return ObjTable }

const tableMaxLoad = 0.75

// NewTable returns an empty table with its own refcount of 1.
func NewTable() *Table {
	t := &Table{}
	t.Incref()
	return t
}

func (t *Table) findSlot(entries []tableEntry, key *String) int {
	capacity := len(entries)
	idx := int(key.hash) % capacity
	var tombstoneIdx = -1
	for {
		e := &entries[idx]
		if !e.occupied && !e.tombstone {
			if tombstoneIdx != -1 {
				return tombstoneIdx
			}
			return idx
		}
		if e.tombstone && tombstoneIdx == -1 {
			tombstoneIdx = idx
		}
		if e.occupied && e.Key == key {
			return idx
		}
		idx = (idx + 1) % capacity
	}
}

func (t *Table) grow() {
	newCap := 8
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	newEntries := make([]tableEntry, newCap)
	for _, e := range t.entries {
		if !e.occupied {
			continue
		}
		idx := t.findSlot(newEntries, e.Key)
		newEntries[idx] = tableEntry{Key: e.Key, Value: e.Value, occupied: true, IsConst: e.IsConst}
	}
	t.entries = newEntries
	t.used = t.count // rehashing discards tombstones
}

// Get looks up key, returning (value, true) if present.
func (t *Table) Get(key *String) (Value, bool) {
	if len(t.entries) == 0 {
		return Nil, false
	}
	idx := t.findSlot(t.entries, key)
	e := &t.entries[idx]
	if !e.occupied {
		return Nil, false
	}
	return e.Value, true
}

// Has reports whether key is present.
func (t *Table) Has(key *String) bool {
	_, ok := t.Get(key)
	return ok
}

// Set inserts or overwrites key with value. Returns false without modifying
// the table if the existing entry is const.
func (t *Table) Set(key *String, v Value, isConst bool) bool {
	if max := float64(len(t.entries)) * tableMaxLoad; len(t.entries) == 0 || float64(t.used+1) > max {
		t.grow()
	}
	idx := t.findSlot(t.entries, key)
	e := &t.entries[idx]
	if e.occupied {
		if e.IsConst {
			return false
		}
		v.Retain()
		e.Value.Release()
		e.Value = v
		e.IsConst = isConst
		return true
	}
	if !e.tombstone {
		t.used++
	}
	key.Incref()
	v.Retain()
	*e = tableEntry{Key: key, Value: v, occupied: true, IsConst: isConst}
	t.count++
	return true
}

// Delete removes key, turning its slot into a tombstone so later probes
// for other keys still terminate correctly.
func (t *Table) Delete(key *String) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx := t.findSlot(t.entries, key)
	e := &t.entries[idx]
	if !e.occupied {
		return false
	}
	e.Value.Release()
	e.Key.Decref()
	*e = tableEntry{occupied: false, tombstone: true}
	t.count--
	return true
}

// Keys returns every live key as a new array of string values.
func (t *Table) Keys() *Array {
	a := NewArray()
	for _, e := range t.entries {
		if e.occupied {
			a.Push(Obj(e.Key))
		}
	}
	return a
}

// Values returns every live value as a new array.
func (t *Table) Values() *Array {
	a := NewArray()
	for _, e := range t.entries {
		if e.occupied {
			a.Push(e.Value)
		}
	}
	return a
}

// Count returns the number of live entries.
func (t *Table) Count() int { return t.count }

// Entries exposes the live (key, value) pairs for iteration.
func (t *Table) Entries() []struct {
	Key   *String
	Value Value
} {
	out := make([]struct {
		Key   *String
		Value Value
	}, 0, t.count)
	for _, e := range t.entries {
		if e.occupied {
			out = append(out, struct {
				Key   *String
				Value Value
			}{e.Key, e.Value})
		}
	}
	return out
}
