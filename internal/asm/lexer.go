package asm

// lexer.go implements the line parser (§4.1) and the operand splitter (§4.2): both are small
// hand-written scanners, since CASL II's comment and quoting rules need lookahead a regexp
// would make harder to read, not easier.

import (
	"regexp"
	"strings"
)

// labelPattern validates a label: 1-8 characters, an uppercase letter followed by letters or
// digits.
var labelPattern = regexp.MustCompile(`^[A-Z][0-9A-Za-z]{0,7}$`)

// ValidLabel reports whether name is a syntactically valid CASL II label.
func ValidLabel(name string) bool {
	return labelPattern.MatchString(name)
}

// Line is one physical source line split into its label (if any), mnemonic, and raw operand
// string (everything after the mnemonic, not yet split on commas).
type Line struct {
	Label    string
	Mnemonic string
	Operands string
	Blank    bool // true for an empty or comment-only line.
}

// ParseLine splits a physical line into (label?, mnemonic, operand string), honoring CASL II's
// quoting rules: a ';' inside a single-quoted string is not a comment, and '' escapes a literal
// quote.
func ParseLine(raw string) (Line, error) {
	line := stripComment(raw)
	line = strings.TrimRight(line, " \t\r\n")

	if strings.TrimSpace(line) == "" {
		return Line{Blank: true}, nil
	}

	var label string

	rest := line

	if len(line) > 0 && line[0] != ' ' && line[0] != '\t' {
		// A label starts at column 1 and runs until whitespace.
		i := strings.IndexAny(line, " \t")
		if i < 0 {
			return Line{}, errSyntax("Syntax error")
		}

		label = line[:i]
		rest = line[i:]
	}

	rest = strings.TrimLeft(rest, " \t")
	if rest == "" {
		if label == "" {
			return Line{}, errSyntax("Syntax error")
		}
		// A label-only line (e.g. a bare START target declared earlier) still needs a mnemonic
		// to do anything; CASL II has no such form, so this is a syntax error.
		return Line{}, errSyntax("Syntax error")
	}

	i := strings.IndexAny(rest, " \t")

	var mnemonic, operands string

	if i < 0 {
		mnemonic = rest
	} else {
		mnemonic = rest[:i]
		operands = strings.TrimSpace(rest[i:])
	}

	if mnemonic == "" {
		return Line{}, errSyntax("Syntax error")
	}

	return Line{Label: label, Mnemonic: mnemonic, Operands: operands}, nil
}

// stripComment removes a trailing ';' comment, respecting single-quoted strings where ';' and
// ',' are literal text and '' escapes a quote.
func stripComment(line string) string {
	inString := false

	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\'':
			if inString && i+1 < len(line) && line[i+1] == '\'' {
				i++ // escaped quote; stay inside the string.
				continue
			}

			inString = !inString
		case ';':
			if !inString {
				return line[:i]
			}
		}
	}

	return line
}

// SplitOperands splits an operand string into top-level comma-separated tokens, honoring the
// same quoting rule as stripComment: a comma inside a single-quoted string is not a separator.
func SplitOperands(operands string) []string {
	if operands == "" {
		return nil
	}

	var (
		tokens   []string
		inString bool
		start    int
	)

	for i := 0; i < len(operands); i++ {
		switch operands[i] {
		case '\'':
			if inString && i+1 < len(operands) && operands[i+1] == '\'' {
				i++
				continue
			}

			inString = !inString
		case ',':
			if !inString {
				tokens = append(tokens, strings.TrimSpace(operands[start:i]))
				start = i + 1
			}
		}
	}

	tokens = append(tokens, strings.TrimSpace(operands[start:]))

	return tokens
}

// DecodeString decodes a CASL II quoted string literal's body (without the surrounding quotes),
// collapsing '' to a literal single quote.
func DecodeString(body string) string {
	return strings.ReplaceAll(body, "''", "'")
}
