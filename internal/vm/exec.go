package vm

// exec.go implements the instruction cycle: fetch, decode and execute a single COMET II
// instruction, including effective-address computation, flag updates, and the trap dispatch
// for SVC. Execution is synchronous; Step is the only place state changes.

import (
	"context"
	"errors"
	"fmt"
)

// ErrHalted is returned by Step when the machine has already halted.
var ErrHalted = errors.New("machine halted")

// IllegalInstructionError is returned when the decoder cannot recognize the opcode at pc.
type IllegalInstructionError struct {
	PC   Word
	Word Word
}

func (e *IllegalInstructionError) Error() string {
	return fmt.Sprintf("Illegal instruction %s at %s", e.Word, e.PC)
}

// Step executes exactly one instruction. It returns ErrHalted if the machine has already
// halted (via RET underflowing the stack), or an *IllegalInstructionError for an unrecognized
// opcode.
func (m *Machine) Step() error {
	if m.Halted {
		return ErrHalted
	}

	pc := m.PR
	d := Decode(&m.Mem, pc)

	if !d.Known {
		err := &IllegalInstructionError{PC: pc, Word: d.Raw}
		m.Halted = true
		m.LastExit = err

		return err
	}

	var eadr Word
	if d.HasAdr {
		xr := d.XR
		var offset Word
		if xr >= GR1 && xr <= GR7 {
			offset = m.GR[xr]
		}
		eadr = d.Adr + offset
	}

	m.execute(d, eadr)

	return nil
}

// execute performs the semantics of the decoded instruction and advances PR accordingly. It
// assumes m.PR still points at the instruction (d.Addr == m.PR).
func (m *Machine) execute(d Decoded, eadr Word) {
	gr := d.GR
	xr2 := d.XR // second register operand, for the register-to-register encodings.

	switch {
	case d.Mnemonic == "NOP":
		m.PR += 1

	case d.Mnemonic == "LD" && d.Register:
		m.GR[gr] = m.GR[xr2]
		m.FR.SetFromResult(m.GR[gr])
		m.FR.Overflow = false
		m.PR += 1

	case d.Mnemonic == "LD":
		m.GR[gr] = m.Mem.Load(eadr)
		m.FR.SetFromResult(m.GR[gr])
		m.FR.Overflow = false
		m.PR += 2

	case d.Mnemonic == "ST":
		m.Mem.Store(eadr, m.GR[gr])
		m.PR += 2

	case d.Mnemonic == "LAD":
		m.GR[gr] = eadr
		m.PR += 2

	case d.Mnemonic == "ADDA":
		rhs := m.registerOrMemory(d, eadr, xr2)
		m.addSigned(gr, rhs.Signed())
		m.advance(d)

	case d.Mnemonic == "SUBA":
		rhs := m.registerOrMemory(d, eadr, xr2)
		m.addSigned(gr, -rhs.Signed())
		m.advance(d)

	case d.Mnemonic == "ADDL":
		rhs := m.registerOrMemory(d, eadr, xr2)
		m.addUnsigned(gr, int64(rhs))
		m.advance(d)

	case d.Mnemonic == "SUBL":
		rhs := m.registerOrMemory(d, eadr, xr2)
		m.addUnsigned(gr, -int64(rhs))
		m.advance(d)

	case d.Mnemonic == "AND":
		rhs := m.registerOrMemory(d, eadr, xr2)
		m.GR[gr] &= rhs
		m.FR.SetFromResult(m.GR[gr])
		m.FR.Overflow = false
		m.advance(d)

	case d.Mnemonic == "OR":
		rhs := m.registerOrMemory(d, eadr, xr2)
		m.GR[gr] |= rhs
		m.FR.SetFromResult(m.GR[gr])
		m.FR.Overflow = false
		m.advance(d)

	case d.Mnemonic == "XOR":
		rhs := m.registerOrMemory(d, eadr, xr2)
		m.GR[gr] ^= rhs
		m.FR.SetFromResult(m.GR[gr])
		m.FR.Overflow = false
		m.advance(d)

	case d.Mnemonic == "CPA":
		rhs := m.registerOrMemory(d, eadr, xr2)
		m.compare(int64(int32(int16(m.GR[gr]))), int64(int32(int16(rhs))))
		m.advance(d)

	case d.Mnemonic == "CPL":
		rhs := m.registerOrMemory(d, eadr, xr2)
		m.compare(int64(m.GR[gr]), int64(rhs))
		m.advance(d)

	case d.Mnemonic == "SLA":
		m.shiftLeftArithmetic(gr, eadr)
		m.PR += 2

	case d.Mnemonic == "SRA":
		m.shiftRightArithmetic(gr, eadr)
		m.PR += 2

	case d.Mnemonic == "SLL":
		m.shiftLeftLogical(gr, eadr)
		m.PR += 2

	case d.Mnemonic == "SRL":
		m.shiftRightLogical(gr, eadr)
		m.PR += 2

	case d.Mnemonic == "JMI":
		m.jumpIf(m.FR.Sign, eadr)
	case d.Mnemonic == "JPL":
		m.jumpIf(!m.FR.Sign && !m.FR.Zero, eadr)
	case d.Mnemonic == "JZE":
		m.jumpIf(m.FR.Zero, eadr)
	case d.Mnemonic == "JNZ":
		m.jumpIf(!m.FR.Zero, eadr)
	case d.Mnemonic == "JOV":
		m.jumpIf(m.FR.Overflow, eadr)
	case d.Mnemonic == "JUMP":
		m.jumpIf(true, eadr)

	case d.Mnemonic == "PUSH":
		m.SP--
		m.Mem.Store(m.SP, eadr)
		m.PR += 2

	case d.Mnemonic == "POP":
		m.GR[gr] = m.Mem.Load(m.SP)
		m.SP++
		m.PR += 1

	case d.Mnemonic == "CALL":
		ret := m.PR + 2
		m.SP--
		m.Mem.Store(m.SP, ret)
		m.PR = eadr

	case d.Mnemonic == "RET":
		target := m.Mem.Load(m.SP)
		m.SP++

		if m.SP > StackTop {
			m.Halted = true
			return
		}

		m.PR = target

	case d.Mnemonic == "SVC":
		switch eadr {
		case SysIn:
			m.svcIn()
		case SysOut:
			m.svcOut()
		}
		m.PR += 2
	}
}

// registerOrMemory returns the right-hand operand of a TypeOp5 instruction: another register
// in the register-to-register encoding, or the value addressed by eadr otherwise.
func (m *Machine) registerOrMemory(d Decoded, eadr Word, xr2 GR) Word {
	if d.Register {
		return m.GR[xr2]
	}
	return m.Mem.Load(eadr)
}

// advance moves PR past a TypeOp5 instruction: one word for the register form, two otherwise.
func (m *Machine) advance(d Decoded) {
	if d.Register {
		m.PR += 1
	} else {
		m.PR += 2
	}
}

func (m *Machine) jumpIf(take bool, eadr Word) {
	if take {
		m.PR = eadr
	} else {
		m.PR += 2
	}
}

// addSigned adds rhs (as a signed value) to GR[gr], setting OF iff the unmasked result falls
// outside the signed 16-bit range.
func (m *Machine) addSigned(gr GR, rhs int32) {
	lhs := int32(int16(m.GR[gr]))
	result := lhs + rhs
	m.FR.Overflow = result < -32768 || result > 32767
	m.GR[gr] = Word(uint16(result))
	m.FR.SetFromResult(m.GR[gr])
}

// addUnsigned adds rhs (as a signed delta, so subtraction reuses this path) to GR[gr]
// interpreted as unsigned, setting OF iff the unmasked result falls outside [0, 65535].
func (m *Machine) addUnsigned(gr GR, rhs int64) {
	lhs := int64(m.GR[gr])
	result := lhs + rhs
	m.FR.Overflow = result < 0 || result > 65535
	m.GR[gr] = Word(uint16(result))
	m.FR.SetFromResult(m.GR[gr])
}

// compare implements the CPA/CPL comparison: subtract, saturate to the signed 16-bit range,
// and set SF/ZF from the saturated value. OF is always cleared.
func (m *Machine) compare(lhs, rhs int64) {
	diff := lhs - rhs

	switch {
	case diff > 32767:
		diff = 32767
	case diff < -32768:
		diff = -32768
	}

	m.FR.Overflow = false
	m.FR.Zero = diff == 0
	m.FR.Sign = diff < 0
}

func (m *Machine) shiftLeftArithmetic(gr GR, n Word) {
	val := m.GR[gr]
	sign := val & 0x8000
	mantissa := val & 0x7FFF

	var of bool

	if n == 0 {
		of = false
	} else if n <= 15 {
		of = mantissa&(1<<(15-n)) != 0
		mantissa = (mantissa << n) & 0x7FFF
	} else {
		mantissa = 0
	}

	m.GR[gr] = sign | mantissa
	m.FR.SetFromResult(m.GR[gr])
	m.FR.Overflow = of
}

func (m *Machine) shiftRightArithmetic(gr GR, n Word) {
	val := m.GR[gr]

	var of bool

	if n == 0 {
		of = false
	} else {
		shift := n
		if shift > 16 {
			shift = 16
		}
		of = val&(1<<(shift-1)) != 0
	}

	shifted := int16(val) >> minWord(n, 15)
	m.GR[gr] = Word(uint16(shifted))
	m.FR.SetFromResult(m.GR[gr])
	m.FR.Overflow = of
}

func (m *Machine) shiftLeftLogical(gr GR, n Word) {
	val := m.GR[gr]

	var of bool

	if n == 0 {
		of = false
	} else if n <= 16 {
		of = val&(1<<(16-n)) != 0
	}

	var shifted Word
	if n < 16 {
		shifted = val << n
	}

	m.GR[gr] = shifted
	m.FR.SetFromResult(m.GR[gr])
	m.FR.Overflow = of
}

func (m *Machine) shiftRightLogical(gr GR, n Word) {
	val := m.GR[gr]

	var of bool

	if n == 0 {
		of = false
	} else {
		shift := n
		if shift > 16 {
			shift = 16
		}
		of = val&(1<<(shift-1)) != 0
	}

	var shifted Word
	if n < 16 {
		shifted = val >> n
	}

	m.GR[gr] = shifted
	m.FR.SetFromResult(m.GR[gr])
	m.FR.Overflow = of
}

func minWord(a, b Word) Word {
	if a < b {
		return a
	}
	return b
}

// Run steps the machine until it halts, a Step error occurs, or the context is done. It is
// used by comet2's auto-run mode (-q/-Q); the interactive debugger drives Step itself so it can
// check breakpoints between instructions.
func (m *Machine) Run(ctx context.Context) error {
	for !m.Halted {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := m.Step(); err != nil {
			if errors.Is(err, ErrHalted) {
				return nil
			}
			return err
		}
	}

	return nil
}
