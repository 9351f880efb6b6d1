// Package loader wraps dynamic library loading for the foreign-call
// bridge. It uses purego's pure-Go dlopen/dlsym binding so the rest of the
// interpreter can resolve C symbols without cgo.
package loader

import (
	"fmt"
	"runtime"

	"github.com/ebitengine/purego"
)

// Handle is an opaque library handle, owned by the caller until Close.
// Handles are process-lifetime: Close is bookkeeping only and does not
// actually unload the library, since a C function bound from it may still
// be cached on a script-side CFunction value.
type Handle struct {
	lib   uintptr
	path  string
	valid bool
}

// Valid reports whether the handle still refers to an opened library.
func (h *Handle) Valid() bool { return h != nil && h.valid }

// Close marks the handle invalid. It is intentionally a no-op on the
// underlying library: process-lifetime ownership means nothing else in
// the interpreter can distinguish a closed handle from an about-to-be-used
// one, and actually dlclose-ing would risk unmapping code a cached
// CFunction still points into.
func (h *Handle) Close() {
	h.valid = false
}

var lastError string

// platformSuffix returns the shared-library suffix for the running OS.
func platformSuffix() string {
	switch runtime.GOOS {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

// standardDirs lists the conventional system library directories searched
// for a short name, after the bare and suffixed forms.
func standardDirs() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/usr/lib/", "/usr/local/lib/", "/opt/homebrew/lib/"}
	case "windows":
		return nil
	default:
		return []string{"/usr/lib/", "/usr/lib/x86_64-linux-gnu/", "/lib/", "/usr/local/lib/"}
	}
}

// candidates produces the search order for a short library name N: N
// itself, N+suffix, lib+N+suffix, then lib+N+suffix under each standard
// directory.
func candidates(name string) []string {
	suffix := platformSuffix()
	libName := "lib" + name + suffix
	out := []string{name, name + suffix, libName}
	for _, dir := range standardDirs() {
		out = append(out, dir+libName)
	}
	return out
}

// Open opens a shared library by path or short name. An empty path
// resolves to a handle on the current process, exposing every symbol
// already loaded into it (matching dlopen(NULL, ...) semantics).
func Open(path string) (*Handle, error) {
	if path == "" {
		h, err := purego.Dlopen("", purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastError = err.Error()
			return nil, fmt.Errorf("loader: open current process: %w", err)
		}
		return &Handle{lib: h, path: "<process>", valid: true}, nil
	}

	// An explicit path (one containing a path separator) is tried directly,
	// without the short-name search.
	if looksLikePath(path) {
		h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastError = err.Error()
			return nil, fmt.Errorf("loader: open %q: %w", path, err)
		}
		return &Handle{lib: h, path: path, valid: true}, nil
	}

	var lastErr error
	for _, candidate := range candidates(path) {
		h, err := purego.Dlopen(candidate, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return &Handle{lib: h, path: candidate, valid: true}, nil
		}
		lastErr = err
	}
	lastError = lastErr.Error()
	return nil, fmt.Errorf("loader: could not resolve library %q: %w", path, lastErr)
}

func looksLikePath(path string) bool {
	for _, c := range path {
		if c == '/' || c == '\\' {
			return true
		}
	}
	return false
}

// Symbol resolves name in h, clearing lastError before the lookup and
// recording purego.Dlsym's error when the lookup fails. A symbol whose
// address is null is reported as not found: the two cases are not told
// apart.
func Symbol(h *Handle, name string) (uintptr, error) {
	lastError = ""
	addr, err := purego.Dlsym(h.lib, name)
	if err != nil {
		lastError = err.Error()
		return 0, fmt.Errorf("loader: symbol %q not found: %w", name, err)
	}
	return addr, nil
}

// LastError returns the most recent loader error message, or "" if none.
func LastError() string { return lastError }
