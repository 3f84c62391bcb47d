package asm

// ops.go implements Operation for ordinary instructions (op1..op5) and the DS/DC/START/END
// directives. Unlike elsie's one-struct-per-mnemonic approach, CASL II's five instruction shapes
// are regular enough that a single Instruction type, driven by vm.InstrTable, covers all
// twenty-eight mnemonics.

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/omzn/casl2/internal/vm"
)

// Instruction is a parsed op1..op5 instruction: a fixed opcode plus up to a register, an
// address expression, and an index register.
type Instruction struct {
	Def vm.InstrDef

	GR vm.GR
	XR vm.GR // GR0 means "no index".
	GR2 vm.GR // second register, for the op5 register-to-register form.

	Adr      string // unresolved address expression; empty for op3/op4/register-form op5.
	Register bool   // true for the op5 register-to-register encoding.
}

// NewInstruction creates an Instruction for the given mnemonic's table entry.
func NewInstruction(def vm.InstrDef) *Instruction {
	return &Instruction{Def: def}
}

func (in *Instruction) Parse(operator string, operands []string) error {
	switch in.Def.Type {
	case vm.TypeOp1:
		return in.parseOp1(operator, operands)
	case vm.TypeOp2:
		return in.parseOp2(operator, operands)
	case vm.TypeOp3:
		return in.parseOp3(operator, operands)
	case vm.TypeOp4:
		if len(operands) != 0 {
			return errOperand("Invalid operand")
		}
		return nil
	case vm.TypeOp5:
		return in.parseOp5(operator, operands)
	default:
		return errOpcode(fmt.Sprintf("Instruction type %q is not implemented", operator))
	}
}

func (in *Instruction) parseOp1(operator string, operands []string) error {
	if len(operands) < 2 || len(operands) > 3 {
		return errOperand("Invalid operand")
	}

	gr, ok := RegisterNumber(operands[0])
	if !ok {
		return errOperand("Invalid operand")
	}

	in.GR = gr
	in.Adr = operands[1]

	if len(operands) == 3 {
		xr, err := parseIndex(operator, operands[2])
		if err != nil {
			return err
		}

		in.XR = xr
	}

	return nil
}

func (in *Instruction) parseOp2(operator string, operands []string) error {
	if len(operands) < 1 || len(operands) > 2 {
		return errOperand("Invalid operand")
	}

	in.Adr = operands[0]

	if len(operands) == 2 {
		xr, err := parseIndex(operator, operands[1])
		if err != nil {
			return err
		}

		in.XR = xr
	}

	return nil
}

func (in *Instruction) parseOp3(operator string, operands []string) error {
	if len(operands) != 1 {
		return errOperand("Invalid operand")
	}

	gr, ok := RegisterNumber(operands[0])
	if !ok {
		return errOperand("Invalid operand")
	}

	in.GR = gr

	return nil
}

func (in *Instruction) parseOp5(operator string, operands []string) error {
	if len(operands) < 2 || len(operands) > 3 {
		return errOperand("Invalid operand")
	}

	gr, ok := RegisterNumber(operands[0])
	if !ok {
		return errOperand("Invalid operand")
	}

	in.GR = gr

	if IsRegister(operands[1]) {
		if len(operands) != 2 {
			return errOperand("Invalid operand")
		}

		gr2, _ := RegisterNumber(operands[1])
		in.GR2 = gr2
		in.Register = true

		return nil
	}

	in.Adr = operands[1]

	if len(operands) == 3 {
		xr, err := parseIndex(operator, operands[2])
		if err != nil {
			return err
		}

		in.XR = xr
	}

	return nil
}

// parseIndex parses an index-register operand, rejecting GR0 (per §4.4, rule 6).
func parseIndex(operator, tok string) (vm.GR, error) {
	xr, ok := RegisterNumber(tok)
	if !ok {
		return 0, errOperand("Invalid operand")
	}

	if xr == vm.GR0 {
		return 0, errOperand("Can't use GR0 as an index register")
	}

	return xr, nil
}

func (in *Instruction) Size() int {
	return in.Def.Type.Size(in.Register)
}

func (in *Instruction) Generate(symbols *SymbolTable, pc vm.Word) ([]vm.Word, error) {
	op := uint16(in.Def.Opcode)

	switch in.Def.Type {
	case vm.TypeOp3:
		return []vm.Word{vm.Word(op<<8 | uint16(in.GR)<<4)}, nil
	case vm.TypeOp4:
		return []vm.Word{vm.Word(op << 8)}, nil
	case vm.TypeOp5:
		if in.Register {
			return []vm.Word{vm.Word((op+4)<<8 | uint16(in.GR)<<4 | uint16(in.GR2))}, nil
		}

		fallthrough
	case vm.TypeOp1:
		adr, err := symbols.Resolve(in.Adr)
		if err != nil {
			return nil, err
		}

		return []vm.Word{vm.Word(op<<8 | uint16(in.GR)<<4 | uint16(in.XR)), adr}, nil
	case vm.TypeOp2:
		adr, err := symbols.Resolve(in.Adr)
		if err != nil {
			return nil, err
		}

		return []vm.Word{vm.Word(op<<8 | uint16(in.XR)), adr}, nil
	default:
		return nil, errOpcode("Illegal instruction")
	}
}

// Start implements the START directive: it never emits, but records the scope name and an
// optional entry-point operand for pass 1 to resolve into the program's entry symbol.
type Start struct {
	Label   string
	Operand string
}

func (s *Start) Parse(operator string, operands []string) error {
	if len(operands) > 1 {
		return errOperand("Invalid operand")
	}

	if len(operands) == 1 {
		s.Operand = operands[0]
	}

	return nil
}

func (s *Start) Size() int { return 0 }

func (s *Start) Generate(symbols *SymbolTable, pc vm.Word) ([]vm.Word, error) { return nil, nil }

// End implements the END directive. It never emits directly; pass 1 drains the literal pool
// when it sees END and appends synthetic DC cells to the syntax table itself.
type End struct{}

func (e *End) Parse(operator string, operands []string) error {
	if len(operands) != 0 {
		return errOperand("Invalid operand")
	}

	return nil
}

func (e *End) Size() int { return 0 }

func (e *End) Generate(symbols *SymbolTable, pc vm.Word) ([]vm.Word, error) { return nil, nil }

// DS implements the DS directive: N words of zero.
type DS struct {
	N int
}

func (d *DS) Parse(operator string, operands []string) error {
	if len(operands) != 1 {
		return errOperand("Invalid operand")
	}

	n, err := strconv.Atoi(operands[0])
	if err != nil || n < 0 {
		return errSyntax(fmt.Sprintf("%q must be decimal", operands[0]))
	}

	d.N = n

	return nil
}

func (d *DS) Size() int { return d.N }

func (d *DS) Generate(symbols *SymbolTable, pc vm.Word) ([]vm.Word, error) {
	return make([]vm.Word, d.N), nil
}

// dcElement is one item in a DC directive's operand list.
type dcElement struct {
	isString bool
	text     string // decoded string body, or the raw numeric/label expression.
}

// DC implements the DC directive: a list of quoted strings, decimal/hex numbers, or labels,
// each contributing one word per character or one word per value.
type DC struct {
	elements []dcElement
}

func (d *DC) Parse(operator string, operands []string) error {
	if len(operands) == 0 {
		return errOperand("Invalid operand")
	}

	for _, tok := range operands {
		if strings.HasPrefix(tok, "'") && strings.HasSuffix(tok, "'") && len(tok) >= 2 {
			d.elements = append(d.elements, dcElement{isString: true, text: DecodeString(tok[1 : len(tok)-1])})
		} else {
			d.elements = append(d.elements, dcElement{text: tok})
		}
	}

	return nil
}

func (d *DC) Size() int {
	n := 0

	for _, el := range d.elements {
		if el.isString {
			n += len(el.text)
		} else {
			n++
		}
	}

	return n
}

func (d *DC) Generate(symbols *SymbolTable, pc vm.Word) ([]vm.Word, error) {
	words := make([]vm.Word, 0, d.Size())

	for _, el := range d.elements {
		if el.isString {
			for i := 0; i < len(el.text); i++ {
				words = append(words, vm.Word(el.text[i])%256)
			}

			continue
		}

		v, err := symbols.Resolve(el.text)
		if err != nil {
			return nil, err
		}

		words = append(words, v)
	}

	return words, nil
}
