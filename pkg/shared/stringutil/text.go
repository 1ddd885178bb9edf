package stringutil

import (
	"strings"
	"unicode/utf8"
)

// NormalizeSpace trims value and collapses every run of whitespace
// (including newlines from wrapped markup) into a single space.
func NormalizeSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

const ellipsis = "..."

// Truncate shortens value to at most max runes. When it cuts, the result
// ends in "..." and the ellipsis counts toward max.
func Truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if max <= 0 || utf8.RuneCountInString(value) <= max {
		return value
	}
	runes := []rune(value)
	if max <= len(ellipsis) {
		return string(runes[:max])
	}
	return strings.TrimSpace(string(runes[:max-len(ellipsis)])) + ellipsis
}
