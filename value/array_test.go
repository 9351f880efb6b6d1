package value

import "testing"

func TestArrayPushGetLen(t *testing.T) {
	a := NewArray()
	a.Push(Int(1))
	a.Push(Int(2))
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
	v, ok := a.Get(0)
	if !ok || v.AsInt() != 1 {
		t.Errorf("Get(0) = (%v, %v), want (1, true)", v, ok)
	}
}

func TestArrayGetOutOfRange(t *testing.T) {
	a := NewArray()
	if _, ok := a.Get(0); ok {
		t.Error("Get on an empty array should report false")
	}
}

func TestArrayPop(t *testing.T) {
	a := NewArrayFrom([]Value{Int(1), Int(2), Int(3)})
	v, ok := a.Pop()
	if !ok || v.AsInt() != 3 {
		t.Fatalf("Pop() = (%v, %v), want (3, true)", v, ok)
	}
	if a.Len() != 2 {
		t.Errorf("Len() after Pop() = %d, want 2", a.Len())
	}
}

func TestArrayPopEmpty(t *testing.T) {
	a := NewArray()
	if _, ok := a.Pop(); ok {
		t.Error("Pop on an empty array should report false")
	}
}

func TestArraySetReplacesAndReleasesOld(t *testing.T) {
	a := NewArrayFrom([]Value{Int(1)})
	if ok := a.Set(0, Int(42)); !ok {
		t.Fatal("Set(0, ...) on a valid index should succeed")
	}
	v, _ := a.Get(0)
	if v.AsInt() != 42 {
		t.Errorf("Get(0) after Set = %v, want 42", v)
	}
}

func TestArraySetOutOfRange(t *testing.T) {
	a := NewArray()
	if ok := a.Set(0, Int(1)); ok {
		t.Error("Set on an out-of-range index should report false")
	}
}
