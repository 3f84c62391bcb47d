package debugger

// commands.go implements the command dispatch table (§9 design notes: "a fixed table mapping
// short/long names to handler functions ... plus a 'list after' flag") and the decimal/hex
// argument parser shared by every command that takes an address or value.

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/omzn/casl2/internal/vm"
)

// ParseNumber parses a command argument as decimal (optionally signed) or hex ("#hhhh"),
// masking the result to 16 bits.
func ParseNumber(tok string) (vm.Word, error) {
	if strings.HasPrefix(tok, "#") {
		v, err := strconv.ParseUint(strings.TrimPrefix(tok, "#"), 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid hex value %q", tok)
		}

		return vm.Word(uint16(v)), nil
	}

	v, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", tok)
	}

	return vm.Word(uint16(v)), nil
}

// command describes one REPL verb: its canonical short/long names, its handler, and whether a
// successful run should auto-print the register dump afterward.
type command struct {
	short, long string
	list        bool // per §4.9: run/step/file/jump/memory auto-print.
	fn          func(d *Debugger, args []string) error
}

// table is the fixed command set, in the order help lists it; lookup resolves a token against
// it.
var table = []command{
	{short: "r", long: "run", list: true, fn: (*Debugger).cmdRun},
	{short: "s", long: "step", list: true, fn: (*Debugger).cmdStep},
	{short: "b", long: "break", fn: (*Debugger).cmdBreak},
	{short: "d", long: "delete", fn: (*Debugger).cmdDelete},
	{short: "i", long: "info", fn: (*Debugger).cmdInfo},
	{short: "p", long: "print", fn: (*Debugger).cmdPrint},
	{short: "du", long: "dump", fn: (*Debugger).cmdDump},
	{short: "st", long: "stack", fn: (*Debugger).cmdStack},
	{short: "f", long: "file", list: true, fn: (*Debugger).cmdFile},
	{short: "j", long: "jump", list: true, fn: (*Debugger).cmdJump},
	{short: "m", long: "memory", list: true, fn: (*Debugger).cmdMemory},
	{short: "di", long: "disasm", fn: (*Debugger).cmdDisasm},
	{short: "h", long: "help", fn: (*Debugger).cmdHelp},
	{short: "q", long: "quit", fn: (*Debugger).cmdQuit},
}

// lookup finds the command matching tok, per the prefix rule in §4.9. Every entry's exact short
// form is checked before any long-form prefix is considered, so a short form that happens to
// prefix a different command's long name (e.g. "st" vs. "step") still dispatches to its own
// command.
func lookup(tok string) (command, bool) {
	if tok == "" {
		return command{}, false
	}

	for _, c := range table {
		if tok == c.short {
			return c, true
		}
	}

	for _, c := range table {
		if strings.HasPrefix(c.long, tok) {
			return c, true
		}
	}

	return command{}, false
}
