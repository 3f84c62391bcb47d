// Command comet2 loads a CASL object file and either runs it to completion or drives an
// interactive, gdb-style debugger session over it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/omzn/casl2/internal/cli"
	"github.com/omzn/casl2/internal/debugger"
	"github.com/omzn/casl2/internal/log"
	"github.com/omzn/casl2/internal/obj"
	"github.com/omzn/casl2/internal/tty"
	"github.com/omzn/casl2/internal/vm"
)

const banner = "comet2 -- COMET II simulator"

type simCmd struct {
	fs      *flag.FlagSet
	quiet   bool
	quiet2  bool
	showVer bool
}

func newSimCmd() *simCmd {
	c := &simCmd{fs: flag.NewFlagSet("comet2", flag.ContinueOnError)}
	c.fs.BoolVar(&c.quiet, "q", false, "suppress banner and chatter; auto-run")
	c.fs.BoolVar(&c.quiet2, "Q", false, "suppress banner, chatter, and IN/OUT prompts; auto-run")
	c.fs.BoolVar(&c.showVer, "v", false, "print version and exit")

	return c
}

func (c *simCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *simCmd) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, "usage: comet2 [-qQv] [file]")
	return err
}

const version = "comet2 0.1.0"

func (c *simCmd) Run(args []string, out io.Writer, logger *log.Logger) int {
	if c.showVer {
		fmt.Fprintln(out, version)
		return 0
	}

	quiet := c.quiet || c.quiet2

	if quiet && len(args) != 1 {
		_ = c.Usage(os.Stderr)
		return 1
	}

	if !quiet {
		fmt.Fprintln(out, banner)
	}

	m := vm.New()

	var loaded bool

	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		object, err := obj.ReadFrom(f)
		f.Close()

		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		entry := object.Load(&m.Mem)
		m.Reset(entry)
		loaded = true
	}

	if quiet {
		if err := m.Run(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		return 0
	}

	if !loaded {
		fmt.Fprintln(out, "no file loaded; use 'file <path>' to load one")
	}

	// dump/stack fall back to a width derived from the terminal, when attached to one, ahead of
	// the package's own hardcoded default.
	width := 0
	if tty.IsTerminal(os.Stdout) {
		width = tty.Width(os.Stdout, 0) / 6 // "%04X " plus its ASCII character is six columns per word.
	}

	dbg := debugger.New(m, os.Stdin, out, debugger.WithDumpWidth(width))

	if err := dbg.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(cli.New(newSimCmd()).Execute(os.Args[1:]))
}
