package debugger

// format.go renders the exact text the print/dump/disasm commands produce (§6: "spaces and
// field widths significant"). Every literal width here was reverse-engineered character by
// character from the specification's sample output, not guessed.

import (
	"fmt"
	"strings"

	"github.com/omzn/casl2/internal/vm"
)

// Print renders the register dump: current instruction, PR, SP, FR, and all eight GRs.
func Print(m *vm.Machine) string {
	var b strings.Builder

	d := vm.Decode(&m.Mem, m.PR)

	fmt.Fprintf(&b, "PR  %s [ %-9s%-16s]\n", m.PR, d.Mnemonic, d.Operands())
	fmt.Fprintf(&b, "SP  %s(%6d)  FR  %s  (%5d)\n", m.SP, uint16(m.SP), m.FR, m.FR.Mask())

	for row := 0; row < 2; row++ {
		for col := 0; col < 4; col++ {
			n := row*4 + col
			gr := vm.GR(n)

			if col > 0 {
				b.WriteString("  ")
			}

			fmt.Fprintf(&b, "GR%d %s(%5d)", n, m.GR[gr], uint16(m.GR[gr]))
		}

		b.WriteString("\n")
	}

	return b.String()
}

// DefaultDumpWidth is the number of words per row when a caller does not override it via
// .comet2rc.toml's dump.bytes_per_row.
const DefaultDumpWidth = 8

// Dump renders 16 rows of width words starting at addr, each row showing its address, the hex
// words, and their ASCII rendering (low byte; unprintable bytes render as '.'). A width <= 0
// falls back to DefaultDumpWidth.
func Dump(m *vm.Machine, addr vm.Word, width int) string {
	if width <= 0 {
		width = DefaultDumpWidth
	}

	var b strings.Builder

	for row := 0; row < 16; row++ {
		base := addr + vm.Word(row*width)

		fmt.Fprintf(&b, "%s ", base)

		ascii := make([]byte, width)

		for col := 0; col < width; col++ {
			w := m.Mem.Load(base + vm.Word(col))
			fmt.Fprintf(&b, "%04X ", uint16(w))

			c := byte(w)
			if c < 0x20 || c > 0x7f {
				c = '.'
			}

			ascii[col] = c
		}

		fmt.Fprintf(&b, "|%s|\n", ascii)
	}

	return b.String()
}

// Stack renders the same dump, starting at the current stack pointer.
func Stack(m *vm.Machine, width int) string {
	return Dump(m, m.SP, width)
}

// Disasm renders 16 decoded instructions starting at addr, advancing by each instruction's own
// size so operand words are not re-shown as separate instructions.
func Disasm(m *vm.Machine, addr vm.Word) string {
	var b strings.Builder

	pc := addr

	for i := 0; i < 16; i++ {
		d := vm.Decode(&m.Mem, pc)
		fmt.Fprintf(&b, "%s  %s\n", pc, d.String())
		pc += vm.Word(d.Size)
	}

	return b.String()
}
