package debugger_test

import (
	"context"
	"strings"
	"testing"

	"github.com/omzn/casl2/internal/debugger"
	"github.com/omzn/casl2/internal/vm"
)

func TestUndefinedCommand(t *testing.T) {
	var out strings.Builder

	m := vm.New(vm.WithIO(strings.NewReader(""), &out))
	dbg := debugger.New(m, strings.NewReader("zzz\n"), &out)

	if err := dbg.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.Contains(out.String(), `Undefined command: "zzz". Try "help".`) {
		t.Errorf("expected undefined-command message, got %q", out.String())
	}
}

func TestListCommandAutoPrints(t *testing.T) {
	var out strings.Builder

	m := vm.New(vm.WithIO(strings.NewReader(""), &out))
	dbg := debugger.New(m, strings.NewReader("step\n"), &out)

	if err := dbg.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.Contains(out.String(), "PR  ") {
		t.Errorf("expected step to auto-print registers, got %q", out.String())
	}
}

func TestNonListCommandDoesNotAutoPrint(t *testing.T) {
	var out strings.Builder

	m := vm.New(vm.WithIO(strings.NewReader(""), &out))
	dbg := debugger.New(m, strings.NewReader("break #0010\n"), &out)

	if err := dbg.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if strings.Contains(out.String(), "PR  ") {
		t.Errorf("break should not auto-print registers, got %q", out.String())
	}
}

func TestEmptyInputRepeatsLastCommand(t *testing.T) {
	var out strings.Builder

	m := vm.New(vm.WithIO(strings.NewReader(""), &out))
	dbg := debugger.New(m, strings.NewReader("step\n\n"), &out)

	if err := dbg.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if n := strings.Count(out.String(), "PR  "); n != 2 {
		t.Errorf("expected 2 register dumps (step, then repeated step), got %d", n)
	}
}

func TestBreakThenInfoLists(t *testing.T) {
	var out strings.Builder

	m := vm.New(vm.WithIO(strings.NewReader(""), &out))
	dbg := debugger.New(m, strings.NewReader("break #0020\ninfo\n"), &out)

	if err := dbg.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.Contains(out.String(), "1: #0020") {
		t.Errorf("expected breakpoint listed, got %q", out.String())
	}
}

func TestQuitStopsTheLoop(t *testing.T) {
	var out strings.Builder

	m := vm.New(vm.WithIO(strings.NewReader(""), &out))
	dbg := debugger.New(m, strings.NewReader("quit\nstep\n"), &out)

	if err := dbg.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if strings.Contains(out.String(), "PR  ") {
		t.Errorf("quit should stop the loop before the queued step runs, got %q", out.String())
	}
}

func TestShortFormDoesNotCollideWithAnotherLongForm(t *testing.T) {
	var out strings.Builder

	// "st" is stack's own short form; it must not dispatch to step just because "step" also
	// starts with "st".
	m := vm.New(vm.WithIO(strings.NewReader(""), &out))
	dbg := debugger.New(m, strings.NewReader("st\n"), &out)

	if err := dbg.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if strings.Contains(out.String(), "PR  ") {
		t.Errorf("\"st\" dispatched to step instead of stack, got %q", out.String())
	}
}

func TestCommandPrefixMatching(t *testing.T) {
	var out strings.Builder

	// "s" is step's exact short form; "he" is a prefix of "help" only.
	m := vm.New(vm.WithIO(strings.NewReader(""), &out))
	dbg := debugger.New(m, strings.NewReader("he\n"), &out)

	if err := dbg.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.Contains(out.String(), "help") {
		t.Errorf("expected help listing from prefix match, got %q", out.String())
	}
}
