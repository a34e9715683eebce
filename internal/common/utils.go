package common

import (
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`[\s\x{00a0}]+`)

// HasAnyFold reports whether s equals any of the candidates, ignoring case and
// surrounding whitespace.
func HasAnyFold(s string, candidates ...string) bool {
	s = strings.TrimSpace(s)
	for _, c := range candidates {
		if strings.EqualFold(s, c) {
			return true
		}
	}
	return false
}

// Collapse trims s and folds every run of whitespace (including non-breaking
// spaces) into a single space.
func Collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
