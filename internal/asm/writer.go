package asm

// writer.go implements pass 2 (§4.6): resolve every operation's operands through the finished
// symbol table, build the dense image, and optionally render the source listing and
// symbol table elsie-style tools print after assembly.

import (
	"fmt"
	"io"
	"strings"

	"github.com/omzn/casl2/internal/log"
	"github.com/omzn/casl2/internal/obj"
	"github.com/omzn/casl2/internal/vm"
)

// Writer performs pass 2: generating code for every operation in a syntax table and writing the
// resulting object.
type Writer struct {
	pass1 *Pass1
	log   *log.Logger
}

// NewWriter creates a pass 2 writer bound to a completed pass 1.
func NewWriter(pass1 *Pass1) *Writer {
	return &Writer{pass1: pass1, log: log.DefaultLogger()}
}

// Assemble resolves every operand and returns the finished object.
func (w *Writer) Assemble() (*obj.Object, error) {
	image := make([]vm.Word, 0, 1024)
	pc := vm.Word(0)

	for _, si := range w.pass1.Syntax {
		words, err := si.Generate(w.pass1.Symbols, pc)
		if err != nil {
			return nil, &SyntaxError{File: si.Filename, Loc: pc, Pos: si.Pos, Line: si.Line, Err: err}
		}

		image = append(image, words...)
		pc += vm.Word(len(words))
	}

	entry := vm.Word(0)

	if sym, ok := w.pass1.EntrySymbol(); ok {
		v, err := w.pass1.Symbols.Resolve(sym)
		if err != nil {
			return nil, err
		}

		entry = v
	}

	w.log.Debug("assembled", "words", len(image), "entry", entry)

	return &obj.Object{Entry: entry, Image: image}, nil
}

// Listing writes the pass-2 listing: one line per contributing source line, the address and
// value of its first word, and (elided) its remaining words, followed by the defined-symbols
// table.
func (w *Writer) Listing(out io.Writer) error {
	pc := vm.Word(0)

	for _, si := range w.pass1.Syntax {
		words, err := si.Generate(w.pass1.Symbols, pc)
		if err != nil {
			return err
		}

		if len(words) == 0 {
			continue
		}

		stripped := stripScope(si.Line, si.Scope)
		fmt.Fprintf(out, "%4d %04X %04X\t%s\n", si.Pos, uint16(pc), uint16(words[0]), stripped)

		for _, word := range words[1:] {
			fmt.Fprintf(out, "%4d      %04X\n", si.Pos, uint16(word))
		}

		pc += vm.Word(len(words))
	}

	fmt.Fprintln(out, "\nSymbols:")

	for _, name := range w.pass1.Symbols.Names() {
		v, _ := w.pass1.Symbols.Value(name)
		fmt.Fprintf(out, "%-24s %04X\n", name, uint16(v))
	}

	return nil
}

// stripScope removes any "scope." text from a listing line. Pass 1 records each source line as
// written (its operand qualification is applied only to the parsed tokens), so this only changes
// lines whose own text contains "scope.".
func stripScope(line, scope string) string {
	if scope == "" {
		return line
	}

	return strings.ReplaceAll(line, scope+".", "")
}
