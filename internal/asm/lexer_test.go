package asm

import "testing"

func TestParseLine(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name  string
		input string
		want  Line
	}{
		{
			name:  "blank",
			input: "",
			want:  Line{Blank: true},
		},
		{
			name:  "comment only",
			input: "; a comment",
			want:  Line{Blank: true},
		},
		{
			name:  "label and mnemonic",
			input: "MAIN     START",
			want:  Line{Label: "MAIN", Mnemonic: "START"},
		},
		{
			name:  "mnemonic with operands",
			input: "         LD    GR1,=5",
			want:  Line{Mnemonic: "LD", Operands: "GR1,=5"},
		},
		{
			name:  "semicolon inside string is not a comment",
			input: "MSG      DC    'a;b'",
			want:  Line{Label: "MSG", Mnemonic: "DC", Operands: "'a;b'"},
		},
		{
			name:  "trailing comment stripped",
			input: "         RET             ; return to caller",
			want:  Line{Mnemonic: "RET"},
		},
	}

	for _, tc := range tcs {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLine(tc.input)
			if err != nil {
				t.Fatalf("ParseLine(%q): %v", tc.input, err)
			}

			if got != tc.want {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tc.input, got, tc.want)
			}
		})
	}
}

func TestSplitOperands(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		input string
		want  []string
	}{
		{"GR1,=5", []string{"GR1", "=5"}},
		{"", nil},
		{"'h'',i'", []string{"'h'',i'"}},
		{"BUF,LEN", []string{"BUF", "LEN"}},
		{"GR1,ADR,GR2", []string{"GR1", "ADR", "GR2"}},
	}

	for _, tc := range tcs {
		got := SplitOperands(tc.input)

		if len(got) != len(tc.want) {
			t.Fatalf("SplitOperands(%q) = %v, want %v", tc.input, got, tc.want)
		}

		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Errorf("SplitOperands(%q)[%d] = %q, want %q", tc.input, i, got[i], tc.want[i])
			}
		}
	}
}

func TestValidLabel(t *testing.T) {
	t.Parallel()

	valid := []string{"A", "MAIN", "L1", "ABCDEFGH"}
	invalid := []string{"", "1A", "abc", "ABCDEFGHI", "A B"}

	for _, l := range valid {
		if !ValidLabel(l) {
			t.Errorf("ValidLabel(%q) = false, want true", l)
		}
	}

	for _, l := range invalid {
		if ValidLabel(l) {
			t.Errorf("ValidLabel(%q) = true, want false", l)
		}
	}
}
