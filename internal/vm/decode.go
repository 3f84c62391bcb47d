package vm

// decode.go implements the decoder/disassembler: splitting a fetched word into mnemonic,
// operand descriptor and instruction size, without executing anything.

import "fmt"

// Decoded is the result of decoding one instruction word (and its operand word, if any).
type Decoded struct {
	Addr     Word
	Mnemonic string
	GR       GR
	XR       GR
	Adr      Word
	HasAdr   bool // true when a second (operand) word was fetched.
	Size     int  // 1 or 2 words.
	Known    bool // false for an unrecognized opcode.
	Raw      Word // the raw instruction word, for the "DC #xxxx" fallback rendering.
	Type     InstrType
	Register bool // true for the register-to-register encoding of a TypeOp5 mnemonic.
}

// Decode splits the word at addr (and, if needed, addr+1) into a decoded instruction. It does
// not advance any program counter; callers needing side effects use the executor.
func Decode(mem *Memory, addr Word) Decoded {
	inst := mem.Load(addr)
	op := Opcode(inst >> 8)
	gr := GR((inst >> 4) & 0xF)
	xr := GR(inst & 0xF)

	entry, ok := DecodeTable[op]
	if !ok {
		return Decoded{Addr: addr, Size: 1, Known: false, Raw: inst}
	}

	size := entry.Type.Size(entry.Register)

	d := Decoded{
		Addr:     addr,
		Mnemonic: entry.Mnemonic,
		GR:       gr,
		XR:       xr,
		Size:     size,
		Known:    true,
		Raw:      inst,
		Type:     entry.Type,
		Register: entry.Register,
	}

	if size == 2 {
		d.Adr = mem.Load(addr + 1)
		d.HasAdr = true
	}

	return d
}

// Operands renders the decoded operands the way the assembler would accept them back, using
// raw addresses rather than symbolic names (the decoder has no symbol table).
func (d Decoded) Operands() string {
	if !d.Known {
		return ""
	}

	switch d.Type {
	case TypeOp1:
		return withXR(fmt.Sprintf("GR%d,%s", d.GR, d.Adr), d.XR)
	case TypeOp2:
		return withXR(d.Adr.String(), d.XR)
	case TypeOp3:
		return fmt.Sprintf("GR%d", d.GR)
	case TypeOp4:
		return ""
	case TypeOp5:
		if d.Register {
			return fmt.Sprintf("GR%d,GR%d", d.GR, d.XR)
		}
		return withXR(fmt.Sprintf("GR%d,%s", d.GR, d.Adr), d.XR)
	default:
		return ""
	}
}

func withXR(base string, xr GR) string {
	if xr == GR0 {
		return base
	}
	return fmt.Sprintf("%s,GR%d", base, xr)
}

// String renders the instruction as "MNEM OPERANDS", or "DC #xxxx" for an unknown opcode.
func (d Decoded) String() string {
	if !d.Known {
		return fmt.Sprintf("DC %s", d.Raw)
	}

	ops := d.Operands()
	if ops == "" {
		return d.Mnemonic
	}

	return fmt.Sprintf("%s %s", d.Mnemonic, ops)
}
