package vm

import "testing"

func assembleWords(words ...Word) *Machine {
	m := New()
	for i, w := range words {
		m.Mem.Store(Word(i), w)
	}
	return m
}

func TestStep_LD_ADDA_Overflow(t *testing.T) {
	t.Parallel()

	// LAD GR1, 32767 ; ADDA GR1, GR1 (register form: doubles it) ; RET
	m := assembleWords(
		Word(uint16(LAD)<<8|uint16(GR1)<<4), 32767,
		Word(uint16(ADDAr)<<8|uint16(GR1)<<4|uint16(GR1)),
		Word(uint16(RET)<<8),
	)

	for i := 0; i < 3 && !m.Halted; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}

	if m.GR[GR1] != 0xFFFE {
		t.Fatalf("GR1 = %s, want #FFFE", m.GR[GR1])
	}

	if !m.FR.Overflow {
		t.Errorf("FR.Overflow = false, want true (32767+32767 overflows signed range)")
	}
}

func TestStep_SRA(t *testing.T) {
	t.Parallel()

	// LAD GR1, 0x8000 ; SRA GR1, 1
	m := assembleWords(
		Word(uint16(LAD)<<8|uint16(GR1)<<4), 0x8000,
		Word(uint16(SRA)<<8|uint16(GR1)<<4), 1,
	)

	if err := m.Step(); err != nil {
		t.Fatalf("Step 1: %v", err)
	}

	if err := m.Step(); err != nil {
		t.Fatalf("Step 2: %v", err)
	}

	if m.GR[GR1] != 0xC000 {
		t.Fatalf("GR1 = %s, want #C000", m.GR[GR1])
	}

	if !m.FR.Sign || m.FR.Zero || m.FR.Overflow {
		t.Errorf("FR = %s, want 010", m.FR)
	}
}

func TestStep_PushPopDuality(t *testing.T) {
	t.Parallel()

	// LAD GR1, 0x1234 ; PUSH 0, GR1 ; POP GR2
	m := assembleWords(
		Word(uint16(LAD)<<8|uint16(GR1)<<4), 0x1234,
		Word(uint16(PUSH)<<8|uint16(GR1)), 0,
		Word(uint16(POP)<<8|uint16(GR2)<<4),
	)

	sp0 := m.SP

	for i := 0; i < 3; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}

	if m.GR[GR2] != 0x1234 {
		t.Fatalf("GR2 = %s, want #1234", m.GR[GR2])
	}

	if m.SP != sp0 {
		t.Errorf("SP = %s, want restored to %s", m.SP, sp0)
	}
}

func TestStep_CallRetDuality(t *testing.T) {
	t.Parallel()

	// 0: CALL 3 ; 2: NOP (skipped) ; 3: RET
	m := assembleWords(
		Word(uint16(CALL)<<8), 3,
		Word(uint16(NOP)<<8),
		Word(uint16(RET)<<8),
	)

	sp0 := m.SP

	if err := m.Step(); err != nil { // CALL
		t.Fatalf("CALL: %v", err)
	}

	if m.PR != 3 {
		t.Fatalf("PR = %s after CALL, want #0003", m.PR)
	}

	if err := m.Step(); err != nil { // RET
		t.Fatalf("RET: %v", err)
	}

	if m.PR != 2 {
		t.Fatalf("PR = %s after RET, want #0002 (instruction after CALL)", m.PR)
	}

	if m.SP != sp0 {
		t.Errorf("SP = %s, want restored to %s", m.SP, sp0)
	}
}

func TestStep_RetUnderflowHalts(t *testing.T) {
	t.Parallel()

	m := assembleWords(Word(uint16(RET) << 8))
	m.SP = StackTop

	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if !m.Halted {
		t.Errorf("Halted = false, want true (RET underflowed the stack)")
	}
}

func TestStep_CPA_Saturates(t *testing.T) {
	t.Parallel()

	// LAD GR1, 0x7FFF ; LAD GR2, 0x8000 (as an address literal, i.e. -32768) ; CPA GR1, GR2
	m := assembleWords(
		Word(uint16(LAD)<<8|uint16(GR1)<<4), 0x7FFF,
		Word(uint16(LAD)<<8|uint16(GR2)<<4), 0x8000,
		Word(uint16(CPAr)<<8|uint16(GR1)<<4|uint16(GR2)),
	)

	for i := 0; i < 3; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}

	if m.FR.Overflow {
		t.Errorf("FR.Overflow = true, want false (CPA never sets overflow)")
	}

	if m.FR.Sign {
		t.Errorf("FR.Sign = true, want false (32767 > -32768)")
	}
}

func TestStep_IllegalInstructionHalts(t *testing.T) {
	t.Parallel()

	m := assembleWords(0xFFFF)

	err := m.Step()
	if err == nil {
		t.Fatal("expected an error for an unrecognized opcode")
	}

	if !m.Halted {
		t.Errorf("Halted = false, want true")
	}
}
