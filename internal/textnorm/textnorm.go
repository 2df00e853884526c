// Package textnorm canonicalizes raw resume text for pattern matching.
package textnorm

import (
	"strings"
	"unicode"
)

// safePunctuation lists the non-alphanumeric ASCII characters that survive
// normalization. Everything else becomes a space.
const safePunctuation = ".,;:+#/&'()-@%"

// Normalize lowercases text, maps dash-like runes to '-', replaces any rune
// outside the safe ASCII set with a space and collapses whitespace runs
// (including newlines) into single spaces. Normalize is idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range text {
		r = canonicalRune(r)
		if r == ' ' {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}

	return b.String()
}

func canonicalRune(r rune) rune {
	switch {
	case r >= 'A' && r <= 'Z':
		return r + ('a' - 'A')
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return r
	case r == '‐', r == '‑', r == '‒', r == '–', r == '—', r == '−':
		return '-'
	case r == '‘', r == '’':
		return '\''
	case r < unicode.MaxASCII && strings.ContainsRune(safePunctuation, r):
		return r
	default:
		return ' '
	}
}
