// Command casl2 assembles a CASL II source file into a CASL object file.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/omzn/casl2/internal/asm"
	"github.com/omzn/casl2/internal/cli"
	"github.com/omzn/casl2/internal/log"
)

// version is the casl2 release string printed by -v.
const version = "casl2 0.1.0"

type assembleCmd struct {
	fs      *flag.FlagSet
	listing bool
	showVer bool
}

func newAssembleCmd() *assembleCmd {
	c := &assembleCmd{fs: flag.NewFlagSet("casl2", flag.ContinueOnError)}
	c.fs.BoolVar(&c.listing, "a", false, "produce an assembly listing")
	c.fs.BoolVar(&c.showVer, "v", false, "print version and exit")

	return c
}

func (c *assembleCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *assembleCmd) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, "usage: casl2 [-av] <file>")
	return err
}

func (c *assembleCmd) Run(args []string, out io.Writer, logger *log.Logger) int {
	if c.showVer {
		fmt.Fprintln(out, version)
		return 0
	}

	if len(args) != 1 {
		_ = c.Usage(os.Stderr)
		return 1
	}

	path := args[0]

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	lines := strings.Split(string(src), "\n")

	p1 := asm.NewPass1(path)
	if err := p1.Assemble(lines); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	w := asm.NewWriter(p1)

	object, err := w.Assemble()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := stem + ".com"

	data, err := object.MarshalBinary()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if c.listing {
		f, err := os.Create(stem + ".lst")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer f.Close()

		if err := w.Listing(f); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	return 0
}

func main() {
	os.Exit(cli.New(newAssembleCmd()).Execute(os.Args[1:]))
}
