package vm

// machine.go assembles the COMET II machine from its smaller parts, mirroring the teacher's
// vm.New(opts ...OptionFn) construction pattern.

import (
	"bufio"
	"io"
	"os"

	"github.com/omzn/casl2/internal/log"
)

// Trap vectors. SVC dispatches to the IN or OUT handler based on the operand's trap vector.
const (
	SysIn  Word = 0xFFF0
	SysOut Word = 0xFFF2
)

// Machine is COMET II simulated in software: registers, flags, memory and the I/O streams used
// to service the IN/OUT system calls.
type Machine struct {
	GR [NumGR]Word // General-purpose registers.
	PR Word        // Program counter.
	SP Word        // Stack pointer; independent of the GR file.
	FR FR          // Flag register.

	Mem Memory

	Halted   bool // Set when RET underflows the stack (main routine returned).
	LastExit error

	Stdin  io.Reader
	Stdout io.Writer
	in     *bufio.Reader // buffers Stdin for SVC SYS_IN; rebuilt whenever Stdin changes.

	log *log.Logger
}

// OptionFn configures a Machine at construction.
type OptionFn func(*Machine)

// New creates a Machine with the initial register and stack state spec'd for COMET II.
func New(opts ...OptionFn) *Machine {
	m := &Machine{
		SP:     StackTop,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		log:    log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.in = bufio.NewReader(m.Stdin)

	return m
}

// WithLogger overrides the machine's logger.
func WithLogger(logger *log.Logger) OptionFn {
	return func(m *Machine) { m.log = logger }
}

// WithIO overrides the streams used to service SVC SYS_IN / SYS_OUT.
func WithIO(in io.Reader, out io.Writer) OptionFn {
	return func(m *Machine) {
		m.Stdin = in
		m.Stdout = out
		m.in = bufio.NewReader(in)
	}
}

// WithEntryPoint sets the initial program counter, as the loader does after reading an
// object file's header.
func WithEntryPoint(pc Word) OptionFn {
	return func(m *Machine) { m.PR = pc }
}

// Reset restores the machine to its initial register state without clearing memory, so a
// debugger session can reload code and start over.
func (m *Machine) Reset(entry Word) {
	m.GR = [NumGR]Word{}
	m.PR = entry
	m.SP = StackTop
	m.FR = FR{}
	m.Halted = false
	m.LastExit = nil
}
