// Package native is the facade the evaluator talks to for the @import
// directive: it resolves a header path against the system include
// directories, runs native/cheader over it, opens the right shared library
// via native/loader, and publishes each classified declaration into the
// target environment via native/ffi. It implements interp.Bridge so
// package interp itself never imports cgo-adjacent code.
package native

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"nyxlang/env"
	"nyxlang/native/cheader"
	"nyxlang/native/ffi"
	"nyxlang/native/loader"
	"nyxlang/value"
)

// Bridge wires native/cheader, native/loader, and native/ffi together to
// implement interp.Bridge. Library handles are cached across imports so
// two `@import "math.h"` directives in the same program share one libm
// handle instead of dlopen-ing it twice.
type Bridge struct {
	handles map[string]*loader.Handle
}

// NewBridge returns a Bridge with no libraries opened yet.
func NewBridge() *Bridge {
	return &Bridge{handles: make(map[string]*loader.Handle)}
}

// wellKnownLibs maps a header's base name to the shared library that
// declares its symbols: if the stem matches certain well-known libraries,
// the loader additionally pre-opens that shared library. Anything not
// listed here attaches to the current process
// handle instead, matching a header whose declarations are expected to
// already be linked into the running binary (libc itself, for instance).
var wellKnownLibs = map[string]string{
	"math.h":           "m",
	"pthread.h":        "pthread",
	"dlfcn.h":          "dl",
	"zlib.h":           "z",
	"curl/curl.h":      "curl",
	"openssl/ssl.h":    "ssl",
	"openssl/crypto.h": "crypto",
	"sqlite3.h":        "sqlite3",
}

// systemIncludeDirs is the fixed search list a header import is resolved
// against when a header is imported.
func systemIncludeDirs() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/usr/include", "/usr/local/include", "/opt/homebrew/include",
			"/Library/Developer/CommandLineTools/usr/include",
		}
	case "windows":
		return nil
	default:
		return []string{
			"/usr/include", "/usr/local/include",
			"/usr/include/x86_64-linux-gnu", "/usr/include/aarch64-linux-gnu",
		}
	}
}

// ImportHeader implements interp.Bridge: it resolves headerPath, parses it,
// opens the owning library, and registers every function/enum/macro it
// could classify into scope.
func (b *Bridge) ImportHeader(scope *env.Environment, headerPath string, sourceDir string) error {
	resolved, err := resolveHeaderPath(headerPath, sourceDir)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(resolved)
	if err != nil {
		return fmt.Errorf("native: cannot read header %q: %w", headerPath, err)
	}
	result := cheader.Parse(string(src))

	handle, err := b.handleFor(headerPath)
	if err != nil {
		return err
	}

	for _, fn := range result.Functions {
		addr, err := loader.Symbol(handle, fn.Name)
		if err != nil {
			// Best-effort: a header may declare more than
			// the library actually exports into this process; skip rather
			// than fail the whole import.
			continue
		}
		desc := &value.FuncDesc{
			Name: fn.Name, ReturnType: fn.ReturnType, ParamTypes: fn.ParamTypes,
			Variadic: fn.Variadic, Addr: addr,
		}
		cf := ffi.BindFunction(fn.Name, desc)
		scope.Define(fn.Name, value.Obj(cf), false)
	}
	for _, ec := range result.Enums {
		scope.Define(ec.Name, value.Int(ec.Value), false)
	}
	for _, m := range result.Macros {
		switch {
		case m.IsInt:
			scope.Define(m.Name, value.Int(m.Int), false)
		case m.IsFloat:
			scope.Define(m.Name, value.Float(m.Float), false)
		default:
			scope.Define(m.Name, value.Obj(value.NewString(m.String)), false)
		}
	}
	return nil
}

// resolveHeaderPath finds headerPath on disk: as given (if absolute), under
// each system include directory, or finally relative to the importing
// script's directory (for project-local headers that aren't installed
// system-wide).
func resolveHeaderPath(headerPath, sourceDir string) (string, error) {
	if filepath.IsAbs(headerPath) {
		if _, err := os.Stat(headerPath); err == nil {
			return headerPath, nil
		}
	}
	for _, dir := range systemIncludeDirs() {
		candidate := filepath.Join(dir, headerPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	candidate := filepath.Join(sourceDir, headerPath)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", fmt.Errorf("native: header %q not found in any system include directory", headerPath)
}

// handleFor returns the library handle that should back headerPath's
// declarations, opening and caching it on first use.
func (b *Bridge) handleFor(headerPath string) (*loader.Handle, error) {
	key := strings.ToLower(filepath.ToSlash(headerPath))
	lib, known := wellKnownLibs[key]
	if !known {
		key = strings.ToLower(filepath.Base(headerPath))
		lib, known = wellKnownLibs[key]
	}
	if !known {
		lib = "" // current process
	}
	if h, ok := b.handles[lib]; ok {
		return h, nil
	}
	h, err := loader.Open(lib)
	if err != nil {
		return nil, fmt.Errorf("native: cannot open library for %q: %w", headerPath, err)
	}
	b.handles[lib] = h
	return h, nil
}
