package value

import (
	"strconv"
	"testing"
)

func TestTableSetAndGet(t *testing.T) {
	tbl := NewTable()
	key := NewString("name")
	tbl.Set(key, Obj(NewString("nyx")), false)
	v, ok := tbl.Get(key)
	if !ok {
		t.Fatal("Get after Set should report true")
	}
	if v.AsString().Chars() != "nyx" {
		t.Errorf("Get() = %q, want nyx", v.AsString().Chars())
	}
	if tbl.Count() != 1 {
		t.Errorf("Count() = %d, want 1", tbl.Count())
	}
}

func TestTableOverwriteKeepsSingleEntry(t *testing.T) {
	tbl := NewTable()
	key := NewString("x")
	tbl.Set(key, Int(1), false)
	tbl.Set(key, Int(2), false)
	if tbl.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 after overwrite", tbl.Count())
	}
	v, _ := tbl.Get(key)
	if v.AsInt() != 2 {
		t.Errorf("Get() = %v, want 2", v)
	}
}

func TestTableConstFieldRejectsOverwrite(t *testing.T) {
	tbl := NewTable()
	key := NewString("frozen")
	tbl.Set(key, Int(1), true)
	if ok := tbl.Set(key, Int(2), false); ok {
		t.Error("Set on a const entry should report false")
	}
	v, _ := tbl.Get(key)
	if v.AsInt() != 1 {
		t.Errorf("value changed despite const entry: got %v", v)
	}
}

func TestTableDelete(t *testing.T) {
	tbl := NewTable()
	key := NewString("gone")
	tbl.Set(key, Int(1), false)
	if !tbl.Delete(key) {
		t.Fatal("Delete of a present key should report true")
	}
	if tbl.Has(key) {
		t.Error("Has should report false after Delete")
	}
	if tbl.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after delete", tbl.Count())
	}
}

func TestTableDeleteThenReinsertOtherKeyStillReachable(t *testing.T) {
	// Exercises tombstone probing: deleting one key must not break lookups
	// for a different key that was inserted after it in the same bucket.
	tbl := NewTable()
	a := NewString("a")
	b := NewString("b")
	tbl.Set(a, Int(1), false)
	tbl.Set(b, Int(2), false)
	tbl.Delete(a)
	v, ok := tbl.Get(b)
	if !ok || v.AsInt() != 2 {
		t.Errorf("Get(b) after deleting a = (%v, %v), want (2, true)", v, ok)
	}
}

func TestTableGrowPastLoadFactor(t *testing.T) {
	tbl := NewTable()
	for i := 0; i < 100; i++ {
		key := NewString("k" + strconv.Itoa(i))
		tbl.Set(key, Int(int64(i)), false)
	}
	if tbl.Count() != 100 {
		t.Fatalf("Count() = %d, want 100", tbl.Count())
	}
	for i := 0; i < 100; i++ {
		key := NewString("k" + strconv.Itoa(i))
		v, ok := tbl.Get(key)
		if !ok || v.AsInt() != int64(i) {
			t.Errorf("Get(key %d) = (%v, %v), want (%d, true)", i, v, ok, i)
		}
	}
}

func TestTableKeysAndValues(t *testing.T) {
	tbl := NewTable()
	tbl.Set(NewString("x"), Int(1), false)
	tbl.Set(NewString("y"), Int(2), false)
	if tbl.Keys().Len() != 2 {
		t.Errorf("Keys().Len() = %d, want 2", tbl.Keys().Len())
	}
	if tbl.Values().Len() != 2 {
		t.Errorf("Values().Len() = %d, want 2", tbl.Values().Len())
	}
}
