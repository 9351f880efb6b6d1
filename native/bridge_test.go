package native

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveHeaderPathFindsInSourceDir(t *testing.T) {
	dir := t.TempDir()
	header := filepath.Join(dir, "local.h")
	if err := os.WriteFile(header, []byte("int f(void);\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := resolveHeaderPath("local.h", dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != header {
		t.Errorf("resolveHeaderPath = %q, want %q", got, header)
	}
}

func TestResolveHeaderPathAbsolute(t *testing.T) {
	dir := t.TempDir()
	header := filepath.Join(dir, "abs.h")
	if err := os.WriteFile(header, []byte("int f(void);\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := resolveHeaderPath(header, "/does/not/matter")
	if err != nil {
		t.Fatal(err)
	}
	if got != header {
		t.Errorf("resolveHeaderPath(absolute) = %q, want %q", got, header)
	}
}

func TestResolveHeaderPathMissingReturnsError(t *testing.T) {
	_, err := resolveHeaderPath("definitely-not-a-real-header.h", t.TempDir())
	if err == nil {
		t.Error("expected an error for a header that doesn't exist anywhere searched")
	}
}

func TestWellKnownLibsMapsMathHeaderToLibm(t *testing.T) {
	if lib := wellKnownLibs["math.h"]; lib != "m" {
		t.Errorf("wellKnownLibs[math.h] = %q, want m", lib)
	}
}

func TestNewBridgeStartsWithNoHandles(t *testing.T) {
	b := NewBridge()
	if len(b.handles) != 0 {
		t.Errorf("len(handles) = %d, want 0 for a fresh Bridge", len(b.handles))
	}
}
