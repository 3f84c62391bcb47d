package asm

// symtab.go implements the scoped symbol table (§4.3): every label is qualified by the
// enclosing START block's name, and CALL targets get a second, prefixed resolution path so a
// CALL to a routine's own name reaches that routine's entry point.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/omzn/casl2/internal/vm"
)

// identPattern matches a bare identifier operand eligible for scope-qualification: it excludes
// register names, which are recognized separately.
var identPattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)

// SymbolTable is the qualified-name-to-address map built during pass 1 and consulted during
// pass 2.
type SymbolTable struct {
	symbols map[string]vm.Word
	literal map[string]vm.Word // staged literal text -> address, once drained.
	order   []string           // insertion order, for the listing's symbol table dump.
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbols: make(map[string]vm.Word),
		literal: make(map[string]vm.Word),
	}
}

// Qualify rewrites a bare identifier operand to its scoped form, "scope.operand". Register
// names and anything that isn't a bare identifier (hex, decimal, literal) pass through
// unchanged.
func Qualify(scope, operand string) string {
	if !identPattern.MatchString(operand) || IsRegister(operand) {
		return operand
	}

	if scope == "" {
		return operand
	}

	return scope + "." + operand
}

// IsRegister reports whether tok names one of the eight general registers.
func IsRegister(tok string) bool {
	if len(tok) != 3 || tok[0] != 'G' || tok[1] != 'R' {
		return false
	}

	return tok[2] >= '0' && tok[2] <= '7'
}

// RegisterNumber parses a validated register token ("GR0".."GR7") into its GR.
func RegisterNumber(tok string) (vm.GR, bool) {
	if !IsRegister(tok) {
		return 0, false
	}

	return vm.GR(tok[2] - '0'), true
}

// Add declares a qualified symbol. It fails if the name is already defined.
func (s *SymbolTable) Add(name string, value vm.Word) error {
	if _, ok := s.symbols[name]; ok {
		return errLabel(fmt.Sprintf("Label %q already defined", prettyName(name)))
	}

	s.symbols[name] = value
	s.order = append(s.order, name)

	return nil
}

// Update overwrites an already-declared symbol's value, used only to patch the placeholder
// staged for a START operand (the entry point, or a later START's target) once its real
// target is seen.
func (s *SymbolTable) Update(name string, value vm.Word) error {
	if _, ok := s.symbols[name]; !ok {
		return errLabel(fmt.Sprintf("Label %q is not defined", prettyName(name)))
	}

	s.symbols[name] = value

	return nil
}

// AddLiteral records a literal's materialized address, keyed by its exact textual form
// (including the leading '=').
func (s *SymbolTable) AddLiteral(text string, addr vm.Word) {
	s.literal[text] = addr
}

// Names returns the defined symbols in declaration order, for the listing output.
func (s *SymbolTable) Names() []string {
	return s.order
}

// Value returns a previously-defined symbol's value.
func (s *SymbolTable) Value(name string) (vm.Word, bool) {
	v, ok := s.symbols[name]
	return v, ok
}

// Resolve evaluates an operand expression: a hexadecimal "#hhhh" (exactly four hex digits), a
// signed decimal integer, a literal placeholder ("=..."), or a symbol (scoped, or CALL_-prefixed
// with the cross-routine fallback described in the design notes).
func (s *SymbolTable) Resolve(expr string) (vm.Word, error) {
	switch {
	case strings.HasPrefix(expr, "#"):
		return resolveHex(expr)
	case strings.HasPrefix(expr, "="):
		if addr, ok := s.literal[expr]; ok {
			return addr, nil
		}

		return 0, errLiteral(fmt.Sprintf("Invalid literal: %s", expr))
	case isDecimal(expr):
		return resolveDecimal(expr)
	default:
		if v, ok := s.symbols[expr]; ok {
			return v, nil
		}

		if strings.HasPrefix(expr, "CALL_") {
			if v, ok := s.symbols[strings.TrimPrefix(expr, "CALL_")]; ok {
				return v, nil
			}

			tail := expr
			if i := strings.LastIndexByte(tail, '.'); i >= 0 {
				tail = tail[i+1:]
			}

			fallback := tail + "." + tail
			if v, ok := s.symbols[fallback]; ok {
				return v, nil
			}
		}

		return 0, &SymbolError{Symbol: prettyName(expr)}
	}
}

// prettyName strips the internal CALL_ bookkeeping prefix, then applies §3's qualified-name
// rendering rule: "X.X" collapses to "X", and "S.Y" renders as "Y in routine S".
func prettyName(expr string) string {
	expr = strings.TrimPrefix(expr, "CALL_")

	i := strings.IndexByte(expr, '.')
	if i < 0 {
		return expr
	}

	scope, local := expr[:i], expr[i+1:]
	if scope == local {
		return scope
	}

	return fmt.Sprintf("%s in routine %s", local, scope)
}

func resolveHex(expr string) (vm.Word, error) {
	digits := strings.TrimPrefix(expr, "#")
	if len(digits) != 4 {
		return 0, errOperand("Invalid operand")
	}

	v, err := strconv.ParseUint(digits, 16, 16)
	if err != nil {
		return 0, errOperand("Invalid operand")
	}

	return vm.Word(v), nil
}

func isDecimal(expr string) bool {
	if expr == "" {
		return false
	}

	i := 0
	if expr[0] == '-' || expr[0] == '+' {
		i = 1
	}

	if i >= len(expr) {
		return false
	}

	for ; i < len(expr); i++ {
		if expr[i] < '0' || expr[i] > '9' {
			return false
		}
	}

	return true
}

func resolveDecimal(expr string) (vm.Word, error) {
	v, err := strconv.ParseInt(expr, 10, 32)
	if err != nil {
		return 0, errSyntax(fmt.Sprintf("%q must be decimal", expr))
	}

	return vm.Word(uint16(v)), nil
}
