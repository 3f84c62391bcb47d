package asm

// pass1.go drives the assembler's first pass (§4.4): it walks the source line by line,
// maintaining the address counter and scope, dispatches each mnemonic to an Operation, and
// builds the syntax and symbol tables that pass 2 (see writer.go) encodes into an object file.

import (
	"fmt"
	"sort"
	"strings"

	"github.com/omzn/casl2/internal/log"
	"github.com/omzn/casl2/internal/vm"
)

// Pass1 holds the state threaded through one source file's first pass.
type Pass1 struct {
	Filename string

	addr    vm.Word
	scope   string
	inStart bool

	literalStack []string // staged literal text, in encounter order; drained LIFO at END.

	firstStart  bool // true once the first START has been seen.
	entrySymbol string
	entryIsZero bool

	pendingVirtual map[string]bool

	Symbols *SymbolTable
	Syntax  SyntaxTable

	log *log.Logger
}

// NewPass1 creates a pass 1 driver for a single source file.
func NewPass1(filename string) *Pass1 {
	return &Pass1{
		Filename:       filename,
		Symbols:        NewSymbolTable(),
		pendingVirtual: make(map[string]bool),
		log:            log.DefaultLogger(),
	}
}

// Assemble runs pass 1 over every line of source, in order. pos is 1-based.
func (p *Pass1) Assemble(lines []string) error {
	for i, raw := range lines {
		if err := p.line(i+1, raw); err != nil {
			return err
		}
	}

	if p.inStart {
		return &SyntaxError{File: p.Filename, Pos: len(lines), Err: errSyntax(`No "END" instruction found`)}
	}

	if len(p.pendingVirtual) > 0 {
		names := make([]string, 0, len(p.pendingVirtual))
		for name := range p.pendingVirtual {
			names = append(names, name)
		}

		sort.Strings(names)

		return &SyntaxError{File: p.Filename, Pos: len(lines), Err: errLabel(fmt.Sprintf("Label %q is not defined", prettyName(names[0])))}
	}

	return nil
}

// EntrySymbol returns the object's entry-point expression: either a qualified symbol name or,
// if the first START had no operand, the literal zero entry point.
func (p *Pass1) EntrySymbol() (string, bool) {
	return p.entrySymbol, !p.entryIsZero
}

func (p *Pass1) line(pos int, raw string) error {
	syntaxErr := func(err error) error {
		return &SyntaxError{File: p.Filename, Loc: p.addr, Pos: pos, Line: raw, Err: err}
	}

	parsed, err := ParseLine(raw)
	if err != nil {
		return syntaxErr(err)
	}

	if parsed.Blank {
		return nil
	}

	def, ok := vm.InstrTable[parsed.Mnemonic]
	if !ok {
		return syntaxErr(errOpcode("Illegal instruction"))
	}

	if parsed.Mnemonic != "START" && !p.inStart {
		return syntaxErr(errSyntax(`No "START" instruction found`))
	}

	// The scope under which this line's own label (if any) and operands are qualified: a START
	// line qualifies against the scope it is about to open, every other line against the
	// current scope.
	activeScope := p.scope
	if parsed.Mnemonic == "START" {
		if parsed.Label == "" {
			return syntaxErr(errLabel("No label found at START"))
		}

		activeScope = parsed.Label
	}

	if parsed.Mnemonic == "END" && parsed.Label != "" {
		return syntaxErr(errLabel(fmt.Sprintf("Can't use label %q at END", parsed.Label)))
	}

	rawOperands := SplitOperands(parsed.Operands)
	operands := make([]string, len(rawOperands))

	for i, tok := range rawOperands {
		operands[i] = p.qualifyOperand(parsed.Mnemonic, activeScope, tok)
	}

	op := newOperation(def)

	if err := op.Parse(parsed.Mnemonic, operands); err != nil {
		return syntaxErr(err)
	}

	p.stageLiterals(operands)

	addr := p.addr

	if parsed.Label != "" {
		if !ValidLabel(parsed.Label) {
			return syntaxErr(errLabel(fmt.Sprintf("Invalid label %q", parsed.Label)))
		}

		qualified := Qualify(activeScope, parsed.Label)

		if err := p.bindLabel(qualified, addr); err != nil {
			return syntaxErr(err)
		}
	}

	switch parsed.Mnemonic {
	case "START":
		start := op.(*Start)
		p.enterStart(activeScope, start, addr)
	case "END":
		p.drainLiterals()
		p.inStart = false
		p.scope = ""
	default:
		p.scope = activeScope
	}

	si := &SourceInfo{Filename: p.Filename, Pos: pos, Line: raw, Scope: activeScope, Operation: op}
	p.Syntax.Add(si)

	p.addr += vm.Word(op.Size())

	return nil
}

// qualifyOperand rewrites a bare identifier operand into its scoped form, applying CALL's
// CALL_ prefix first so resolution can try the cross-routine fallback.
func (p *Pass1) qualifyOperand(mnemonic, scope, tok string) string {
	if mnemonic == "CALL" && identPattern.MatchString(tok) && !IsRegister(tok) {
		return "CALL_" + Qualify(scope, tok)
	}

	return Qualify(scope, tok)
}

// bindLabel declares name at addr, patching a pending virtual label instead of erroring on
// "duplicate" if name was only a forward-reference placeholder.
func (p *Pass1) bindLabel(name string, addr vm.Word) error {
	if p.pendingVirtual[name] {
		delete(p.pendingVirtual, name)
		return p.Symbols.Update(name, addr)
	}

	return p.Symbols.Add(name, addr)
}

func (p *Pass1) enterStart(scope string, start *Start, addr vm.Word) {
	p.scope = scope
	p.inStart = true
	p.literalStack = nil

	if p.firstStart {
		// A nested START's operand is a forward reference to a label defined later in the same
		// scope; stage a placeholder pending an Update once that label is actually bound.
		if start.Operand != "" {
			target := Qualify(scope, start.Operand)
			if _, ok := p.Symbols.Value(target); !ok {
				_ = p.Symbols.Add(target, 0)
				p.pendingVirtual[target] = true
			}
		}

		return
	}

	p.firstStart = true

	if start.Operand != "" {
		p.entrySymbol = Qualify(scope, start.Operand)
		if _, ok := p.Symbols.Value(p.entrySymbol); !ok {
			_ = p.Symbols.Add(p.entrySymbol, 0)
			p.pendingVirtual[p.entrySymbol] = true
		}
	} else {
		p.entryIsZero = true
	}
}

// stageLiterals pushes any "=..." operand onto the literal stack, deduplicated by exact text.
func (p *Pass1) stageLiterals(operands []string) {
	for _, tok := range operands {
		if !strings.HasPrefix(tok, "=") {
			continue
		}

		found := false

		for _, existing := range p.literalStack {
			if existing == tok {
				found = true
				break
			}
		}

		if !found {
			p.literalStack = append(p.literalStack, tok)
		}
	}
}

// drainLiterals materializes the literal pool in LIFO order, appending one synthetic DC
// operation per literal to the syntax table and recording its address in the symbol table.
func (p *Pass1) drainLiterals() {
	for i := len(p.literalStack) - 1; i >= 0; i-- {
		text := p.literalStack[i]
		form := text[1:] // drop the leading '='

		dc := &DC{}

		switch {
		case strings.HasPrefix(form, "'") && strings.HasSuffix(form, "'") && len(form) >= 2:
			dc.elements = []dcElement{{isString: true, text: DecodeString(form[1 : len(form)-1])}}
		default:
			dc.elements = []dcElement{{text: form}}
		}

		p.Symbols.AddLiteral(text, p.addr)

		si := &SourceInfo{Filename: p.Filename, Scope: p.scope, Line: fmt.Sprintf("; literal %s", text), Operation: dc}
		p.Syntax.Add(si)

		p.addr += vm.Word(dc.Size())
	}

	p.literalStack = nil
}

// newOperation creates the Operation implementation for a mnemonic's table entry.
func newOperation(def vm.InstrDef) Operation {
	switch def.Type {
	case vm.TypeStart:
		return &Start{}
	case vm.TypeEnd:
		return &End{}
	case vm.TypeDS:
		return &DS{}
	case vm.TypeDC:
		return &DC{}
	case vm.TypeIN, vm.TypeOUT:
		return &InOut{}
	case vm.TypeRPUSH, vm.TypeRPOP:
		return &RegisterSpill{}
	default:
		return NewInstruction(def)
	}
}
