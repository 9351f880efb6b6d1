package env

import (
	"testing"

	"nyxlang/value"
)

func TestDefineAndGet(t *testing.T) {
	e := New()
	e.Define("x", value.Int(1), false)
	v, ok := e.Get("x")
	if !ok || v.AsInt() != 1 {
		t.Fatalf("Get(x) = (%v, %v), want (1, true)", v, ok)
	}
}

func TestGetWalksParentChain(t *testing.T) {
	root := New()
	root.Define("x", value.Int(1), false)
	child := root.Child()
	v, ok := child.Get("x")
	if !ok || v.AsInt() != 1 {
		t.Fatalf("Get(x) from child = (%v, %v), want (1, true)", v, ok)
	}
}

func TestGetLocalDoesNotWalkParentChain(t *testing.T) {
	root := New()
	root.Define("x", value.Int(1), false)
	child := root.Child()
	if _, ok := child.GetLocal("x"); ok {
		t.Error("GetLocal should not see a binding defined only in the parent scope")
	}
}

func TestChildShadowsParent(t *testing.T) {
	root := New()
	root.Define("x", value.Int(1), false)
	child := root.Child()
	child.Define("x", value.Int(2), false)
	v, _ := child.Get("x")
	if v.AsInt() != 2 {
		t.Errorf("child Get(x) = %v, want 2 (shadowed)", v)
	}
	v, _ = root.Get("x")
	if v.AsInt() != 1 {
		t.Errorf("root Get(x) = %v, want 1 (unaffected by shadowing)", v)
	}
}

func TestAssignRebindsNearestBinding(t *testing.T) {
	root := New()
	root.Define("x", value.Int(1), false)
	child := root.Child()
	if ok := child.Assign("x", value.Int(99)); !ok {
		t.Fatal("Assign to an existing outer binding should succeed")
	}
	v, _ := root.Get("x")
	if v.AsInt() != 99 {
		t.Errorf("root Get(x) after child Assign = %v, want 99", v)
	}
}

func TestAssignUndeclaredFails(t *testing.T) {
	e := New()
	if ok := e.Assign("nope", value.Int(1)); ok {
		t.Error("Assign to an undeclared name should report false")
	}
}

func TestAssignConstFails(t *testing.T) {
	e := New()
	e.Define("x", value.Int(1), true)
	if ok := e.Assign("x", value.Int(2)); ok {
		t.Error("Assign to a const binding should report false")
	}
	v, _ := e.Get("x")
	if v.AsInt() != 1 {
		t.Errorf("value changed despite const binding: got %v", v)
	}
}

func TestIsConstWalksChain(t *testing.T) {
	root := New()
	root.Define("frozen", value.Int(1), true)
	child := root.Child()
	if !child.IsConst("frozen") {
		t.Error("IsConst should walk outward to find a const binding in an enclosing scope")
	}
}

func TestRedefineInSameScopeOverwrites(t *testing.T) {
	e := New()
	e.Define("x", value.Int(1), false)
	e.Define("x", value.Int(2), false)
	v, _ := e.Get("x")
	if v.AsInt() != 2 {
		t.Errorf("Get(x) after redefine = %v, want 2", v)
	}
}

func TestParentOfRootIsNil(t *testing.T) {
	e := New()
	if e.Parent() != nil {
		t.Error("Parent() of a root environment should be nil")
	}
	if e.Child().Parent() != e {
		t.Error("Parent() of a child should be the environment it was created from")
	}
}
