// Package debugger implements the gdb-style REPL described in §4.9: a blocking,
// single-threaded command loop over a *vm.Machine, with breakpoints, single-step, memory and
// register inspection, and disassembly.
package debugger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/omzn/casl2/internal/config"
	"github.com/omzn/casl2/internal/log"
	"github.com/omzn/casl2/internal/obj"
	"github.com/omzn/casl2/internal/vm"
)

func openFile(path string) (*os.File, error) {
	return os.Open(path)
}

// ErrQuit is returned by Run when the user issues the quit command.
var ErrQuit = errors.New("quit")

// Debugger owns the machine under test, its breakpoint list, and the REPL's input/output.
type Debugger struct {
	Machine *vm.Machine
	Breaks  Breakpoints

	in        *bufio.Scanner
	out       io.Writer
	last      string // the previous command line, repeated on blank input.
	loaded    string // path of the most recently loaded object file.
	dumpWidth int    // words per dump/stack row; from .comet2rc.toml, default DefaultDumpWidth.

	log *log.Logger
}

// OptionFn configures a Debugger at construction.
type OptionFn func(*Debugger)

// WithDumpWidth supplies a fallback words-per-row for dump/stack, used only when
// .comet2rc.toml leaves dump.bytes_per_row unset.
func WithDumpWidth(width int) OptionFn {
	return func(d *Debugger) {
		if d.dumpWidth == 0 {
			d.dumpWidth = width
		}
	}
}

// New creates a debugger reading commands from in and writing output to out, with preferences
// read via internal/config from the user's home directory only (a missing or malformed
// .comet2rc.toml leaves every preference at its default). Only dump.bytes_per_row is used.
func New(m *vm.Machine, in io.Reader, out io.Writer, opts ...OptionFn) *Debugger {
	cfg, err := config.Load("")
	if err != nil {
		cfg = config.Default()
	}

	d := &Debugger{
		Machine:   m,
		in:        bufio.NewScanner(in),
		out:       out,
		dumpWidth: cfg.Dump.BytesPerRow,
		log:       log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Run reads and executes commands until the user quits or input is exhausted.
func (d *Debugger) Run(ctx context.Context) error {
	for {
		fmt.Fprint(d.out, "(comet2) ")

		if !d.in.Scan() {
			return nil
		}

		line := strings.TrimSpace(d.in.Text())
		if line == "" {
			line = d.last
		}

		if line == "" {
			continue
		}

		d.last = line

		if err := d.eval(line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}

			fmt.Fprintln(d.out, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

func (d *Debugger) eval(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd, ok := lookup(fields[0])
	if !ok {
		fmt.Fprintf(d.out, "Undefined command: %q. Try \"help\".\n", fields[0])
		return nil
	}

	if err := cmd.fn(d, fields[1:]); err != nil {
		return err
	}

	if cmd.list {
		fmt.Fprint(d.out, Print(d.Machine))
	}

	return nil
}

func (d *Debugger) cmdRun(args []string) error {
	for {
		if err := d.Machine.Step(); err != nil {
			if errors.Is(err, vm.ErrHalted) {
				return nil
			}

			return err
		}

		if d.Machine.Halted || d.Breaks.Hit(d.Machine.PR) {
			return nil
		}
	}
}

func (d *Debugger) cmdStep(args []string) error {
	n := 1

	if len(args) == 1 {
		v, err := ParseNumber(args[0])
		if err != nil {
			return err
		}

		n = int(v)
	}

	for i := 0; i < n && !d.Machine.Halted; i++ {
		if err := d.Machine.Step(); err != nil && !errors.Is(err, vm.ErrHalted) {
			return err
		}
	}

	return nil
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("break requires an address")
	}

	addr, err := ParseNumber(args[0])
	if err != nil {
		return err
	}

	d.Breaks.Add(addr)

	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(d.out, "Delete all breakpoints? (y or n) ")

		if !d.in.Scan() {
			return nil
		}

		if strings.EqualFold(strings.TrimSpace(d.in.Text()), "y") {
			d.Breaks.Clear()
		}

		return nil
	}

	v, err := ParseNumber(args[0])
	if err != nil {
		return err
	}

	if !d.Breaks.DeleteAt(int(v)) {
		return fmt.Errorf("no breakpoint %d", v)
	}

	return nil
}

func (d *Debugger) cmdInfo(args []string) error {
	for i, addr := range d.Breaks.List() {
		fmt.Fprintf(d.out, "%d: %s\n", i+1, addr)
	}

	return nil
}

func (d *Debugger) cmdPrint(args []string) error {
	fmt.Fprint(d.out, Print(d.Machine))
	return nil
}

func (d *Debugger) cmdDump(args []string) error {
	addr := d.Machine.PR

	if len(args) == 1 {
		v, err := ParseNumber(args[0])
		if err != nil {
			return err
		}

		addr = v
	}

	fmt.Fprint(d.out, Dump(d.Machine, addr, d.dumpWidth))

	return nil
}

func (d *Debugger) cmdStack(args []string) error {
	fmt.Fprint(d.out, Stack(d.Machine, d.dumpWidth))
	return nil
}

func (d *Debugger) cmdFile(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("file requires a path")
	}

	f, err := openFile(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	object, err := obj.ReadFrom(f)
	if err != nil {
		return err
	}

	entry := object.Load(&d.Machine.Mem)
	d.Machine.Reset(entry)
	d.loaded = args[0]

	return nil
}

func (d *Debugger) cmdJump(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("jump requires an address")
	}

	addr, err := ParseNumber(args[0])
	if err != nil {
		return err
	}

	d.Machine.PR = addr

	return nil
}

func (d *Debugger) cmdMemory(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("memory requires an address and a value")
	}

	addr, err := ParseNumber(args[0])
	if err != nil {
		return err
	}

	val, err := ParseNumber(args[1])
	if err != nil {
		return err
	}

	d.Machine.Mem.Store(addr, val)

	return nil
}

func (d *Debugger) cmdDisasm(args []string) error {
	addr := d.Machine.PR

	if len(args) == 1 {
		v, err := ParseNumber(args[0])
		if err != nil {
			return err
		}

		addr = v
	}

	fmt.Fprint(d.out, Disasm(d.Machine, addr))

	return nil
}

func (d *Debugger) cmdHelp(args []string) error {
	for _, c := range table {
		fmt.Fprintf(d.out, "%-2s  %s\n", c.short, c.long)
	}

	return nil
}

func (d *Debugger) cmdQuit(args []string) error {
	return ErrQuit
}
