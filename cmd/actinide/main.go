// Command actinide is a REPL over an actinide.Session, grounded on the
// teacher's own ReadEvalPrintLoop/main shape.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/actinide-lang/actinide"
)

// runFile reads and evaluates every top-level form in a source file, each
// form expanded and evaluated as its own top-level program (spec.md
// §6.3's REPL rule generalizes naturally to a batch file: each form still
// sees prior forms' definitions and macros).
func runFile(session *actinide.Session, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	port := actinide.NewStringPort(string(data))
	for {
		form, err := session.Read(port)
		if err != nil {
			return err
		}
		if form == session.EOF() {
			return nil
		}
		results, err := session.Eval(form)
		if err != nil {
			return err
		}
		_ = results
	}
}

func printResults(results []actinide.Value) {
	parts := make([]string, len(results))
	for i, v := range results {
		parts[i] = actinide.Display(v)
	}
	fmt.Println(strings.Join(parts, "\n"))
}

// readEvalPrintLoop reads one top-level form at a time from stdin,
// expanding and evaluating each independently, so a `define-macro`
// entered on one line is visible to the next (spec.md §6.3).
func readEvalPrintLoop(session *actinide.Session) {
	port := actinide.NewReaderPort(os.Stdin)
	for {
		fmt.Print("> ")
		form, err := session.Read(port)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if form == session.EOF() {
			fmt.Println("Goodbye")
			return
		}
		results, err := session.Eval(form)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if len(results) > 0 {
			printResults(results)
		}
	}
}

func main() {
	session := actinide.NewSession()
	if len(os.Args) >= 2 {
		if err := runFile(session, os.Args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if len(os.Args) < 3 || os.Args[2] != "-" {
			return
		}
	}
	readEvalPrintLoop(session)
}
