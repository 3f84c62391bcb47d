package asm

// macro.go implements the four macro-instructions (§4.5): IN, OUT, RPUSH and RPOP. Each expands
// to a fixed, bit-exact sequence of ordinary instruction words; the macro itself never appears
// in the object file.

import (
	"github.com/omzn/casl2/internal/vm"
)

// InOut implements the IN and OUT macros: PUSH GR1/GR2, load their buffer/length addresses,
// SVC the trap vector, then POP GR2/GR1.
type InOut struct {
	out      bool // true for OUT, false for IN.
	buf, len string
}

func (m *InOut) Parse(operator string, operands []string) error {
	if len(operands) != 2 {
		return errOperand("Invalid operand")
	}

	m.out = operator == "OUT"
	m.buf, m.len = operands[0], operands[1]

	return nil
}

func (m *InOut) Size() int { return 12 }

func (m *InOut) Generate(symbols *SymbolTable, pc vm.Word) ([]vm.Word, error) {
	buf, err := symbols.Resolve(m.buf)
	if err != nil {
		return nil, err
	}

	length, err := symbols.Resolve(m.len)
	if err != nil {
		return nil, err
	}

	trap := vm.SysIn
	if m.out {
		trap = vm.SysOut
	}

	words := make([]vm.Word, 0, 12)
	words = append(words, pushWord(vm.GR1)...)
	words = append(words, pushWord(vm.GR2)...)
	words = append(words, loadAddrWords(vm.GR1, buf)...)
	words = append(words, loadAddrWords(vm.GR2, length)...)
	words = append(words, svcWords(trap)...)
	words = append(words, popWord(vm.GR2))
	words = append(words, popWord(vm.GR1))

	return words, nil
}

// RegisterSpill implements RPUSH (save all of GR1..GR7) and RPOP (restore them in reverse).
type RegisterSpill struct {
	pop bool
}

func (m *RegisterSpill) Parse(operator string, operands []string) error {
	if len(operands) != 0 {
		return errOperand("Invalid operand")
	}

	m.pop = operator == "RPOP"

	return nil
}

func (m *RegisterSpill) Size() int {
	if m.pop {
		return 7
	}
	return 14
}

func (m *RegisterSpill) Generate(symbols *SymbolTable, pc vm.Word) ([]vm.Word, error) {
	words := make([]vm.Word, 0, 14)

	if m.pop {
		for gr := vm.GR7; gr >= vm.GR1; gr-- {
			words = append(words, popWord(gr))
		}
	} else {
		for gr := vm.GR1; gr <= vm.GR7; gr++ {
			words = append(words, pushWord(gr)...)
		}
	}

	return words, nil
}

// pushWord encodes "PUSH 0, GRn": a two-word op2 instruction whose effective address is simply
// GR[n]'s value, making PUSH 0,GRn a register-save.
func pushWord(gr vm.GR) []vm.Word {
	return []vm.Word{
		vm.Word(uint16(vm.PUSH)<<8 | uint16(gr)),
		0,
	}
}

// popWord encodes "POP GRn": a one-word op3 instruction.
func popWord(gr vm.GR) vm.Word {
	return vm.Word(uint16(vm.POP)<<8 | uint16(gr)<<4)
}

// loadAddrWords encodes "LAD GRn, addr": a two-word op1 instruction.
func loadAddrWords(gr vm.GR, addr vm.Word) []vm.Word {
	return []vm.Word{
		vm.Word(uint16(vm.LAD)<<8 | uint16(gr)<<4),
		addr,
	}
}

// svcWords encodes "SVC trap": a two-word op2 instruction.
func svcWords(trap vm.Word) []vm.Word {
	return []vm.Word{
		vm.Word(uint16(vm.SVC) << 8),
		trap,
	}
}
