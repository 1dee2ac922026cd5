package extract

import (
	"regexp"
	"strings"
)

// commentPattern matches block comments (non-greedy, may span lines) and
// line comments. It is purely lexical: delimiters inside string literals
// are stripped as well.
var commentPattern = regexp.MustCompile(`/\*[\s\S]*?\*/|//.*`)

// Normalize strips comments from contract source and trims surrounding whitespace
func Normalize(raw string) string {
	return strings.TrimSpace(commentPattern.ReplaceAllString(raw, ""))
}
