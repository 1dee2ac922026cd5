package extract

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "  \n\t ", ""},
		{"block comment only", "   /* empty */   ", ""},
		{"line comment only", "// SPDX-License-Identifier: MIT", ""},
		{"line comment stripped to end of line", "uint x = 1; // note\nuint y = 2;", "uint x = 1; \nuint y = 2;"},
		{"multi-line block comment", "a /* one\n two\n three */ b", "a  b"},
		{"non-greedy block comments", "/* a */ keep /* b */", "keep"},
		{"comment inside string literal is still stripped", `string s = "http://x";`, `string s = "http:`},
		{"no comments", "  contract Token {}  ", "contract Token {}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_HidesSignaturesInComments(t *testing.T) {
	got := Normalize("/* selfdestruct */\n// delegatecall\ncontract A {}")
	if got != "contract A {}" {
		t.Errorf("expected comments removed, got %q", got)
	}
}
