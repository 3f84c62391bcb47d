package vm

// flags.go models the flag register as an explicit three-field record rather than a bare
// integer bitmask, per the machine's design notes: callers who need the raw mask (the
// debugger's register dump, the object of a disassembly) get it only at that boundary.

// FR is the flag register. Overflow is independent of the other two; Sign and Zero are
// mutually exclusive in the sense that an arithmetic or logical result sets exactly one of
// {Sign, Zero, neither} alongside whatever Overflow the operation computed.
type FR struct {
	Overflow bool
	Sign     bool
	Zero     bool
}

// Flag bit positions within the 3-bit mask exposed at the REPL/disassembly boundary.
const (
	FlagZero     = 1 << 0
	FlagSign     = 1 << 1
	FlagOverflow = 1 << 2
)

// Mask returns the flag register as the 3-bit bitmask (OF SF ZF) spec'd for diagnostics.
func (f FR) Mask() uint8 {
	var m uint8
	if f.Zero {
		m |= FlagZero
	}
	if f.Sign {
		m |= FlagSign
	}
	if f.Overflow {
		m |= FlagOverflow
	}
	return m
}

// SetFromResult sets Sign and Zero from the low 16 bits of a result, per COMET II semantics:
// Zero for a zero result, Sign for a negative one, and neither for a positive one; never both.
func (f *FR) SetFromResult(result Word) {
	f.Zero = result == 0
	f.Sign = !f.Zero && int16(result) < 0
}

// String renders the flag register as "OF SF ZF" binary digits, as used in the register dump.
func (f FR) String() string {
	bit := func(b bool) byte {
		if b {
			return '1'
		}
		return '0'
	}

	return string([]byte{bit(f.Overflow), bit(f.Sign), bit(f.Zero)})
}
