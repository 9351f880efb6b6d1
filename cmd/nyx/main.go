// Command nyx reads a source file, wires an Interp up with the built-in
// functions and the native bridge, and dispatches on a subcommand: tokenize,
// parse, run, or evaluate.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"nyxlang/ast"
	"nyxlang/builtins"
	"nyxlang/interp"
	"nyxlang/native"
	"nyxlang/value"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: nyx [tokenize | parse | run | evaluate] <filename>")
		os.Exit(1)
	}
	command, filename := os.Args[1], os.Args[2]

	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nyx: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case "tokenize":
		fmt.Print(interp.Tokenize(src))

	case "parse":
		prog, errs := interp.ParseOnly(src)
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, e)
			}
			os.Exit(65)
		}
		fmt.Println(prog.String())

	case "run":
		it := newInterp(filepath.Dir(filename))
		if err := it.Run(src, filepath.Dir(filename)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(70)
		}

	case "evaluate":
		prog, errs := interp.ParseOnly(src)
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, e)
			}
			os.Exit(65)
		}
		it := newInterp(filepath.Dir(filename))
		v, err := evaluateLast(it, prog)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(70)
		}
		fmt.Println(value.ToString(v))

	default:
		fmt.Fprintf(os.Stderr, "nyx: unknown command %q\n", command)
		os.Exit(1)
	}
}

func newInterp(sourceDir string) *interp.Interp {
	it := interp.New()
	builtins.Register(it.Root)
	it.Bridge = native.NewBridge()
	it.SourceDir = sourceDir
	return it
}

// evaluateLast runs every statement of prog, executing declarations and
// side effects normally but evaluating each top-level expression statement
// directly so its value can be returned, matching the `evaluate(handle,
// expression-node) -> value` host contract used by a REPL that wants to
// print the last expression's result.
func evaluateLast(it *interp.Interp, prog *ast.Program) (value.Value, error) {
	var last value.Value
	for _, stmt := range prog.Statements {
		exprStmt, ok := stmt.(*ast.ExprStmt)
		if !ok {
			if err := it.ExecProgram(&ast.Program{Statements: []ast.Stmt{stmt}}); err != nil {
				return value.Nil, err
			}
			continue
		}
		v, err := it.Evaluate(exprStmt.Expr)
		if err != nil {
			return value.Nil, err
		}
		last = v
	}
	return last, nil
}
