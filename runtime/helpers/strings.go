// Package helpers implements the expression helper objects of the
// standard Weft dialect: #strings, #dates, and #numbers.
package helpers

import (
	"strings"
	"unicode"
)

// Strings is the #strings helper object: utilities for working with
// string values inside template expressions.
type Strings struct{}

// IsEmpty reports whether the value is empty or only whitespace.
func (Strings) IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Default returns the value, or the fallback when the value is empty.
func (h Strings) Default(s, fallback string) string {
	if h.IsEmpty(s) {
		return fallback
	}
	return s
}

// Trim removes leading and trailing whitespace.
func (Strings) Trim(s string) string {
	return strings.TrimSpace(s)
}

// Contains reports whether the value contains the substring.
func (Strings) Contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

// Capitalize upper-cases the first rune of the value.
func (Strings) Capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Abbreviate shortens the value to at most max runes, appending an
// ellipsis when it was cut. Max values below 4 leave no room for the
// ellipsis and return the value unchanged.
func (Strings) Abbreviate(s string, max int) string {
	runes := []rune(s)
	if max < 4 || len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// Join concatenates the parts with the separator between them.
func (Strings) Join(sep string, parts ...string) string {
	return strings.Join(parts, sep)
}
