package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes text for scoring: NFC fold, lowercase, map
// whitespace runs to a single space, drop every other character outside
// [a-z0-9 ], trim ends. Probe and candidate must pass through the same
// normalization or the vector spaces diverge.
//
// NFC runs first so decomposed and precomposed input normalize identically
// before the ASCII filter applies.
func Normalize(text string) string {
	text = strings.ToLower(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
