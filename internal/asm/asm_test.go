package asm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/omzn/casl2/internal/vm"
)

func assemble(t *testing.T, source string) *Pass1 {
	t.Helper()

	p1 := NewPass1("test.cas")

	lines := strings.Split(source, "\n")
	if err := p1.Assemble(lines); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	return p1
}

func TestEntryPoint(t *testing.T) {
	t.Parallel()

	source := "MAIN     START\n" +
		"         RET\n" +
		"         END\n"

	p1 := assemble(t, source)
	w := NewWriter(p1)

	object, err := w.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	bs, err := object.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	if !bytes.Equal(bs[0:6], []byte{'C', 'A', 'S', 'L', 0x00, 0x00}) {
		t.Fatalf("header = % x, want CASL + entry 0", bs[0:6])
	}

	if len(object.Image) == 0 || object.Image[0] != 0x8100 {
		t.Fatalf("first word = %#04x, want 0x8100", object.Image[0])
	}
}

func TestLiteralAndRun(t *testing.T) {
	t.Parallel()

	source := "MAIN     START\n" +
		"         LD    GR1,=5\n" +
		"         RET\n" +
		"         END\n"

	p1 := assemble(t, source)
	w := NewWriter(p1)

	object, err := w.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	var mem vm.Memory

	entry := object.Load(&mem)

	m := vm.New(vm.WithEntryPoint(entry))
	m.Mem = mem

	for !m.Halted {
		if err := m.Step(); err != nil {
			break
		}
	}

	if m.GR[vm.GR1] != 5 {
		t.Errorf("GR1 = %d, want 5", m.GR[vm.GR1])
	}

	if m.FR.Overflow || m.FR.Sign || m.FR.Zero {
		t.Errorf("FR = %s, want 000", m.FR)
	}
}

func TestOverflow(t *testing.T) {
	t.Parallel()

	source := "MAIN     START\n" +
		"         LAD   GR1,32767\n" +
		"         ADDA  GR1,ONE\n" +
		"         RET\n" +
		"ONE      DC    1\n" +
		"         END\n"

	p1 := assemble(t, source)
	w := NewWriter(p1)

	object, err := w.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	var mem vm.Memory

	entry := object.Load(&mem)

	m := vm.New(vm.WithEntryPoint(entry))
	m.Mem = mem

	for !m.Halted {
		if err := m.Step(); err != nil {
			break
		}
	}

	if m.GR[vm.GR1] != 0x8000 {
		t.Errorf("GR1 = %#04x, want 0x8000", m.GR[vm.GR1])
	}

	if !m.FR.Overflow || !m.FR.Sign || m.FR.Zero {
		t.Errorf("FR = %s, want OF|SF", m.FR)
	}
}

func TestDuplicateLabel(t *testing.T) {
	t.Parallel()

	source := "MAIN     START\n" +
		"L        DC    1\n" +
		"L        DC    2\n" +
		"         RET\n" +
		"         END\n"

	p1 := NewPass1("test.cas")

	err := p1.Assemble(strings.Split(source, "\n"))
	if err == nil {
		t.Fatal("expected duplicate label error")
	}

	if !strings.Contains(err.Error(), `Label "L in routine MAIN" already defined`) {
		t.Errorf("Error() = %q, want it to contain spec's literal diagnostic text", err.Error())
	}
}

func TestUndefinedEntryPointIsReported(t *testing.T) {
	t.Parallel()

	source := "MAIN     START TYPO\n" +
		"         RET\n" +
		"         END\n"

	p1 := NewPass1("test.cas")

	err := p1.Assemble(strings.Split(source, "\n"))
	if err == nil {
		t.Fatal("expected an undefined-label error for the entry point")
	}

	if !strings.Contains(err.Error(), `Label "TYPO in routine MAIN" is not defined`) {
		t.Errorf("Error() = %q, want it to name the undefined entry-point label", err.Error())
	}
}

func TestScoping(t *testing.T) {
	t.Parallel()

	source := "A        START\n" +
		"L        DC    1\n" +
		"         RET\n" +
		"         END\n" +
		"B        START\n" +
		"L        DC    2\n" +
		"         RET\n" +
		"         END\n"

	p1 := assemble(t, source)

	al, ok := p1.Symbols.Value("A.L")
	if !ok {
		t.Fatal("A.L not defined")
	}

	bl, ok := p1.Symbols.Value("B.L")
	if !ok {
		t.Fatal("B.L not defined")
	}

	if al == bl {
		t.Errorf("A.L and B.L share an address: %s", al)
	}
}

func TestMacroSizes(t *testing.T) {
	t.Parallel()

	source := "MAIN     START\n" +
		"         IN    BUF,LEN\n" +
		"         OUT   BUF,LEN\n" +
		"         RPUSH\n" +
		"         RPOP\n" +
		"         RET\n" +
		"BUF      DS    8\n" +
		"LEN      DS    1\n" +
		"         END\n"

	p1 := assemble(t, source)
	w := NewWriter(p1)

	if _, err := w.Assemble(); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	sizes := map[string]int{}
	for _, si := range p1.Syntax {
		if in, ok := si.Operation.(*InOut); ok {
			if in.out {
				sizes["OUT"] = in.Size()
			} else {
				sizes["IN"] = in.Size()
			}
		}

		if rs, ok := si.Operation.(*RegisterSpill); ok {
			if rs.pop {
				sizes["RPOP"] = rs.Size()
			} else {
				sizes["RPUSH"] = rs.Size()
			}
		}
	}

	want := map[string]int{"IN": 12, "OUT": 12, "RPUSH": 14, "RPOP": 7}

	for name, n := range want {
		if sizes[name] != n {
			t.Errorf("%s size = %d, want %d", name, sizes[name], n)
		}
	}
}
