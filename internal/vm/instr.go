package vm

// instr.go is the canonical instruction table shared by the assembler (which emits against it)
// and the decoder/executor (which fetch against it). Opcode values and instruction shapes are
// fixed; this is not a retargetable assembler.

//go:generate go run golang.org/x/tools/cmd/stringer -type Opcode -output opcode_string.go

// Opcode is the 8-bit operation code stored in the high byte of an instruction word.
type Opcode uint8

// COMET II opcodes. Several mnemonics have both a memory-addressing form and a register-to-
// register form; the register form's opcode is always the memory form's opcode plus 4.
const (
	NOP Opcode = 0x00

	LD  Opcode = 0x10
	ST  Opcode = 0x11
	LAD Opcode = 0x12
	LDr Opcode = 0x14 // LD register-to-register form.

	ADDA  Opcode = 0x20
	SUBA  Opcode = 0x21
	ADDL  Opcode = 0x22
	SUBL  Opcode = 0x23
	ADDAr Opcode = 0x24
	SUBAr Opcode = 0x25
	ADDLr Opcode = 0x26
	SUBLr Opcode = 0x27

	AND  Opcode = 0x30
	OR   Opcode = 0x31
	XOR  Opcode = 0x32
	ANDr Opcode = 0x34
	ORr  Opcode = 0x35
	XORr Opcode = 0x36

	CPA  Opcode = 0x40
	CPL  Opcode = 0x41
	CPAr Opcode = 0x44
	CPLr Opcode = 0x45

	SLA Opcode = 0x50
	SRA Opcode = 0x51
	SLL Opcode = 0x52
	SRL Opcode = 0x53

	JMI  Opcode = 0x61
	JNZ  Opcode = 0x62
	JZE  Opcode = 0x63
	JUMP Opcode = 0x64
	JPL  Opcode = 0x65
	JOV  Opcode = 0x66

	PUSH Opcode = 0x70
	POP  Opcode = 0x71

	CALL Opcode = 0x80
	RET  Opcode = 0x81

	SVC Opcode = 0xF0
)

// InstrType classifies how an instruction's operands are shaped and emitted, per the
// assembler's pass 1 dispatch table.
type InstrType uint8

const (
	TypeOp1   InstrType = iota // GR, adr[, XR]                 -- two words, no register form.
	TypeOp2                    // adr[, XR]                     -- two words.
	TypeOp3                    // GR                             -- one word.
	TypeOp4                    // (no operands)                  -- one word.
	TypeOp5                    // GR, adr[, XR]  or  GR, GR      -- two words or one.
	TypeStart                  // START [entry]                  -- no emission.
	TypeEnd                    // END                             -- drains the literal pool.
	TypeDS                     // DS n                            -- n zero words.
	TypeDC                     // DC list                        -- one word per value or string character.
	TypeIN                     // IN buf, len                    -- macro, 12 words.
	TypeOUT                    // OUT buf, len                   -- macro, 12 words.
	TypeRPUSH                  // RPUSH                           -- macro, 14 words.
	TypeRPOP                   // RPOP                            -- macro, 7 words.
)

// InstrDef describes one assembler-visible mnemonic.
type InstrDef struct {
	Mnemonic string
	Opcode   Opcode // Base (memory-form, or sole-form) opcode. Unused for directives/macros.
	Type     InstrType
}

// InstrTable maps each mnemonic recognized by the assembler to its shape and base opcode.
var InstrTable = map[string]InstrDef{
	"LD":  {"LD", LD, TypeOp5},
	"ST":  {"ST", ST, TypeOp1},
	"LAD": {"LAD", LAD, TypeOp1},

	"ADDA": {"ADDA", ADDA, TypeOp5},
	"SUBA": {"SUBA", SUBA, TypeOp5},
	"ADDL": {"ADDL", ADDL, TypeOp5},
	"SUBL": {"SUBL", SUBL, TypeOp5},

	"AND": {"AND", AND, TypeOp5},
	"OR":  {"OR", OR, TypeOp5},
	"XOR": {"XOR", XOR, TypeOp5},

	"CPA": {"CPA", CPA, TypeOp5},
	"CPL": {"CPL", CPL, TypeOp5},

	"SLA": {"SLA", SLA, TypeOp2},
	"SRA": {"SRA", SRA, TypeOp2},
	"SLL": {"SLL", SLL, TypeOp2},
	"SRL": {"SRL", SRL, TypeOp2},

	"JMI":  {"JMI", JMI, TypeOp2},
	"JNZ":  {"JNZ", JNZ, TypeOp2},
	"JZE":  {"JZE", JZE, TypeOp2},
	"JUMP": {"JUMP", JUMP, TypeOp2},
	"JPL":  {"JPL", JPL, TypeOp2},
	"JOV":  {"JOV", JOV, TypeOp2},

	"PUSH": {"PUSH", PUSH, TypeOp2},
	"POP":  {"POP", POP, TypeOp3},

	"CALL": {"CALL", CALL, TypeOp2},
	"RET":  {"RET", RET, TypeOp4},

	"SVC": {"SVC", SVC, TypeOp2},
	"NOP": {"NOP", NOP, TypeOp4},

	"START": {"START", 0, TypeStart},
	"END":   {"END", 0, TypeEnd},
	"DS":    {"DS", 0, TypeDS},
	"DC":    {"DC", 0, TypeDC},

	"IN":    {"IN", 0, TypeIN},
	"OUT":   {"OUT", 0, TypeOUT},
	"RPUSH": {"RPUSH", 0, TypeRPUSH},
	"RPOP":  {"RPOP", 0, TypeRPOP},
}

// decodeEntry describes one opcode as seen by the decoder: its mnemonic, its assembler type
// (used to recover operand shape and size) and whether it is the register-to-register form of
// a TypeOp5 mnemonic.
type decodeEntry struct {
	Mnemonic string
	Type     InstrType
	Register bool // true for the "+4" register-to-register encoding of a TypeOp5 mnemonic.
}

// DecodeTable maps a fetched opcode byte to its decoded shape.
var DecodeTable = map[Opcode]decodeEntry{
	NOP: {"NOP", TypeOp4, false},

	LD:  {"LD", TypeOp5, false},
	LDr: {"LD", TypeOp5, true},
	ST:  {"ST", TypeOp1, false},
	LAD: {"LAD", TypeOp1, false},

	ADDA:  {"ADDA", TypeOp5, false},
	ADDAr: {"ADDA", TypeOp5, true},
	SUBA:  {"SUBA", TypeOp5, false},
	SUBAr: {"SUBA", TypeOp5, true},
	ADDL:  {"ADDL", TypeOp5, false},
	ADDLr: {"ADDL", TypeOp5, true},
	SUBL:  {"SUBL", TypeOp5, false},
	SUBLr: {"SUBL", TypeOp5, true},

	AND:  {"AND", TypeOp5, false},
	ANDr: {"AND", TypeOp5, true},
	OR:   {"OR", TypeOp5, false},
	ORr:  {"OR", TypeOp5, true},
	XOR:  {"XOR", TypeOp5, false},
	XORr: {"XOR", TypeOp5, true},

	CPA:  {"CPA", TypeOp5, false},
	CPAr: {"CPA", TypeOp5, true},
	CPL:  {"CPL", TypeOp5, false},
	CPLr: {"CPL", TypeOp5, true},

	SLA: {"SLA", TypeOp2, false},
	SRA: {"SRA", TypeOp2, false},
	SLL: {"SLL", TypeOp2, false},
	SRL: {"SRL", TypeOp2, false},

	JMI:  {"JMI", TypeOp2, false},
	JNZ:  {"JNZ", TypeOp2, false},
	JZE:  {"JZE", TypeOp2, false},
	JUMP: {"JUMP", TypeOp2, false},
	JPL:  {"JPL", TypeOp2, false},
	JOV:  {"JOV", TypeOp2, false},

	PUSH: {"PUSH", TypeOp2, false},
	POP:  {"POP", TypeOp3, false},

	CALL: {"CALL", TypeOp2, false},
	RET:  {"RET", TypeOp4, false},

	SVC: {"SVC", TypeOp2, false},
}

// Size returns the number of words an instruction of this type occupies: one word for op3, op4
// and the register-to-register encoding of op5; two words otherwise.
func (t InstrType) Size(registerForm bool) int {
	switch t {
	case TypeOp3, TypeOp4:
		return 1
	case TypeOp5:
		if registerForm {
			return 1
		}
		return 2
	default:
		return 2
	}
}
