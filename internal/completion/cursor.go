package completion

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// WordAt returns the identifier immediately left of the cursor at the
// zero-based line and character. Positions past the end are clamped.
func WordAt(text string, line, char int) string {
	left := lineLeft(text, line, char)
	i := len(left)
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(left[:i])
		if !isIdent(r) {
			break
		}
		i -= size
	}
	return left[i:]
}

// ContextAt returns the text of the cursor's line left of the cursor, with
// the word being typed removed.
func ContextAt(text string, line, char int) string {
	left := lineLeft(text, line, char)
	return strings.TrimSuffix(left, WordAt(text, line, char))
}

// lineLeft returns the part of the given line before char, counted in
// runes.
func lineLeft(text string, line, char int) string {
	if line < 0 || char < 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if line >= len(lines) {
		return ""
	}
	l := strings.TrimSuffix(lines[line], "\r")
	n := 0
	for i := range l {
		if n == char {
			return l[:i]
		}
		n++
	}
	return l
}

func isIdent(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
