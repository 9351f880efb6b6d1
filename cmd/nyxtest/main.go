// Command nyxtest is the golden-file test runner: it discovers *.nx/*.golden
// pairs under testdata/, runs each script against an in-process Interp, and
// reports pass/fail. There's no separate reference binary to shell out to,
// so the "actual" side is produced by running the case in-process and
// capturing stdout.
package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"nyxlang/builtins"
	"nyxlang/interp"
	"nyxlang/native"
)

const width = 100

// Case is one discovered testdata pair.
type Case struct {
	Name   string // "arithmetic.nx"
	Path   string // testdata/arithmetic.nx
	Golden string // testdata/arithmetic.golden
}

// Result holds a Case's expected and actual output.
type Result struct {
	Case     *Case
	Expected string
	Actual   string
	RunErr   error
	Passed   bool
}

func main() {
	dir := "testdata"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	cases, err := discover(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nyxtest: %v\n", err)
		os.Exit(1)
	}
	if len(cases) == 0 {
		fmt.Fprintf(os.Stderr, "nyxtest: no *.nx/*.golden pairs found under %s\n", dir)
		os.Exit(1)
	}

	var results []*Result
	for _, c := range cases {
		results = append(results, run(c))
	}

	printResults(results)

	for _, r := range results {
		if !r.Passed {
			os.Exit(1)
		}
	}
}

// discover walks dir for every "<name>.nx" that has a matching
// "<name>.golden" sibling.
func discover(dir string) ([]*Case, error) {
	var cases []*Case
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".nx") {
			return nil
		}
		golden := strings.TrimSuffix(path, ".nx") + ".golden"
		if _, err := os.Stat(golden); err != nil {
			return nil
		}
		cases = append(cases, &Case{Name: d.Name(), Path: path, Golden: golden})
		return nil
	})
	return cases, err
}

// run executes one case's script against a fresh Interp, capturing stdout.
func run(c *Case) *Result {
	res := &Result{Case: c}

	expected, err := os.ReadFile(c.Golden)
	if err != nil {
		res.RunErr = err
		return res
	}
	res.Expected = string(expected)

	src, err := os.ReadFile(c.Path)
	if err != nil {
		res.RunErr = err
		return res
	}

	actual, runErr := capture(func() error {
		it := interp.New()
		builtins.Register(it.Root)
		it.Bridge = native.NewBridge()
		return it.Run(src, filepath.Dir(c.Path))
	})
	res.Actual = actual
	res.RunErr = runErr
	res.Passed = runErr == nil && res.Actual == res.Expected
	return res
}

// capture redirects os.Stdout for the duration of fn and returns whatever
// was written to it.
func capture(fn func() error) (string, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}
	orig := os.Stdout
	os.Stdout = w

	runErr := fn()

	os.Stdout = orig
	w.Close()

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String(), runErr
}

func printResults(results []*Result) {
	passed, failed := 0, 0
	for _, r := range results {
		label := fmt.Sprintf("%-12s", "passed")
		if !r.Passed {
			label = fmt.Sprintf("%-12s", "failed")
		}
		spacing := strings.Repeat(" ", max(1, width-len("  [passed] ")-len(r.Case.Name)))

		if r.Passed {
			passed++
			fmt.Printf("  [%s] %s%s\n", color.GreenString(strings.TrimSpace(label)), r.Case.Name, spacing)
			continue
		}
		failed++
		fmt.Printf("  [%s] %s%s\n", color.RedString(strings.TrimSpace(label)), r.Case.Name, spacing)
		if r.RunErr != nil {
			fmt.Printf("    error: %v\n", r.RunErr)
			continue
		}
		printDiff(r.Expected, r.Actual)
	}

	fmt.Printf("\n%d passed, %d failed\n", passed, failed)
}

// printDiff prints expected/actual stdout side by side.
func printDiff(expected, actual string) {
	half := width / 2
	expLines := strings.Split(expected, "\n")
	actLines := strings.Split(actual, "\n")
	fmt.Printf("    %-*s%s\n", half, "expected stdout", "actual stdout")
	for i := 0; i < len(expLines) || i < len(actLines); i++ {
		var e, a string
		if i < len(expLines) {
			e = expLines[i]
		}
		if i < len(actLines) {
			a = actLines[i]
		}
		fmt.Printf("    %-*s%s\n", half, e, a)
	}
}
