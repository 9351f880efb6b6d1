// Package interp implements the tree-walking evaluator: expression
// evaluation, statement execution, closures, defer stacks, control-flow
// signalling, and the @import directive.
package interp

import (
	"os"
	"path/filepath"

	"nyxlang/ast"
	"nyxlang/env"
	"nyxlang/lexer"
	"nyxlang/parser"
	"nyxlang/value"
)

// Bridge is implemented by the native package that wires C header imports
// and dynamic library loading into the interpreter. Interp never imports
// the header reader or the loader directly; cmd/nyx supplies the concrete
// Bridge, and an Interp without one simply reports header imports as
// errors.
type Bridge interface {
	ImportHeader(scope *env.Environment, headerPath string, sourceDir string) error
}

// deferFrame is one pending defer: the statement to run and the scope it
// should run in (the scope active at the point `defer` was executed).
type deferFrame struct {
	stmt  ast.Stmt
	scope *env.Environment
}

// Interp is the evaluator: its root environment, control-flow state, the
// defer stack, and the optional native bridge.
type Interp struct {
	Root *env.Environment

	returnValue value.Value
	lastValue   value.Value
	returning   bool
	breaking    bool
	continuing  bool

	defers []deferFrame

	Bridge Bridge

	// SourceDir anchors relative @import paths to the directory of the
	// script currently being run.
	SourceDir string

	// imported guards against re-executing the same sibling script twice
	// within one process, keyed by absolute path.
	imported map[string]bool
}

// New returns an Interp with a fresh root environment.
func New() *Interp {
	return &Interp{Root: env.New(), imported: make(map[string]bool)}
}

// RegisterNative installs a host-provided native function in the root
// environment. Arity -1 marks the function variadic.
func (it *Interp) RegisterNative(name string, arity int, fn value.NativeFn) {
	it.Root.Define(name, value.Obj(value.NewNative(name, arity, fn)), false)
}

// Run parses and executes src as a top-level program in the root
// environment. It returns the first error encountered, whether a parse
// error or a runtime error.
func (it *Interp) Run(src []byte, sourceDir string) error {
	p := parser.New(src)
	prog := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		return errs[0]
	}
	prevDir := it.SourceDir
	it.SourceDir = sourceDir
	defer func() { it.SourceDir = prevDir }()
	return it.execProgram(prog)
}

func (it *Interp) execProgram(prog *ast.Program) error {
	marker := len(it.defers)
	for _, stmt := range prog.Statements {
		if err := it.exec(stmt, it.Root); err != nil {
			it.runDefers(marker)
			return err
		}
	}
	return it.runDefers(marker)
}

// runDefers pops every deferFrame pushed since marker and runs them in
// reverse order, with the control-flow flags suspended so a defer can't
// swallow the return/break/continue it's running underneath. The first
// error raised by a defer is returned; later defers still run.
func (it *Interp) runDefers(marker int) error {
	if len(it.defers) <= marker {
		return nil
	}
	savedReturning, savedBreaking, savedContinuing := it.returning, it.breaking, it.continuing
	savedReturn, savedLast := it.returnValue, it.lastValue
	it.returning, it.breaking, it.continuing = false, false, false

	var firstErr error
	for i := len(it.defers) - 1; i >= marker; i-- {
		frame := it.defers[i]
		if err := it.exec(frame.stmt, frame.scope); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	it.defers = it.defers[:marker]

	it.returning, it.breaking, it.continuing = savedReturning, savedBreaking, savedContinuing
	it.returnValue, it.lastValue = savedReturn, savedLast
	return firstErr
}

// resolveImportPath decides whether path refers to another script (by
// extension) or a C header, and for scripts locates it relative to
// SourceDir first and a conventional lib/ directory second.
func (it *Interp) resolveImportPath(path string) (isScript bool, resolved string) {
	ext := filepath.Ext(path)
	if ext == ".nx" {
		candidate := filepath.Join(it.SourceDir, path)
		if _, err := os.Stat(candidate); err == nil {
			return true, candidate
		}
		return true, filepath.Join(it.SourceDir, "lib", path)
	}
	return false, path
}

// doImport implements the @import directive.
func (it *Interp) doImport(stmt *ast.ImportStmt) error {
	isScript, resolved := it.resolveImportPath(stmt.Path)
	if isScript {
		abs, err := filepath.Abs(resolved)
		if err != nil {
			abs = resolved
		}
		if it.imported[abs] {
			return nil
		}
		it.imported[abs] = true
		src, err := os.ReadFile(resolved)
		if err != nil {
			return newError(ImportError, int(stmt.Pos().Line), "cannot import %q: %v", stmt.Path, err)
		}
		return it.Run(src, filepath.Dir(resolved))
	}
	if it.Bridge == nil {
		return newError(ImportError, int(stmt.Pos().Line), "cannot import header %q: no foreign bridge configured", stmt.Path)
	}
	if err := it.Bridge.ImportHeader(it.Root, resolved, it.SourceDir); err != nil {
		return newError(ImportError, int(stmt.Pos().Line), "%v", err)
	}
	return nil
}

// ExecProgram executes an already-parsed program in the root environment.
// It is exposed alongside Run for hosts (a REPL, cmd/nyx's "evaluate"
// subcommand) that parse once and want to execute or re-execute the
// resulting tree without re-parsing.
func (it *Interp) ExecProgram(prog *ast.Program) error {
	return it.execProgram(prog)
}

// Evaluate implements the `evaluate(handle, expression-node) -> value` host
// entry point: it evaluates a single expression node in the
// root environment, for a REPL that wants to print one result at a time
// without running it as a full program.
func (it *Interp) Evaluate(expr ast.Expr) (value.Value, error) {
	return it.eval(expr, it.Root)
}

// lex and parse are exposed for tooling (cmd/nyx's tokenize/parse
// subcommands) that wants the intermediate stages without executing.
func Tokenize(src []byte) string {
	toks := lexer.All(src)
	out := ""
	for _, t := range toks {
		out += t.String() + "\n"
	}
	return out
}

func ParseOnly(src []byte) (*ast.Program, []error) {
	p := parser.New(src)
	prog := p.Parse()
	var errs []error
	for _, e := range p.Errors() {
		errs = append(errs, e)
	}
	return prog, errs
}
