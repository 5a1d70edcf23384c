package markup

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CollapseWhitespace strips leading and trailing whitespace, drops whitespace
// that follows whitespace or an opening parenthesis, and drops whitespace in
// front of '.', ',' and ')'. A run between two words keeps its first rune.
// Other bytes, invalid UTF-8 included, are copied unchanged.
func CollapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	hasPrev := false
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			b.WriteString(s[i : i+size])
			prev, hasPrev = r, true
			i += size
			continue
		}

		// Measure the whole whitespace run.
		start := i
		end := i
		for end < len(s) {
			rr, sz := utf8.DecodeRuneInString(s[end:])
			if !unicode.IsSpace(rr) {
				break
			}
			end += sz
		}
		i = end

		if !hasPrev || end == len(s) || prev == '(' {
			continue
		}
		next, _ := utf8.DecodeRuneInString(s[end:])
		if next == '.' || next == ',' || next == ')' {
			continue
		}
		_, sz := utf8.DecodeRuneInString(s[start:])
		b.WriteString(s[start : start+sz])
	}
	return b.String()
}
