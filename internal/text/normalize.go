// Package text provides deterministic text normalization for rule matching.
package text

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Mode selects how aggressively Normalize canonicalizes its input.
type Mode int

const (
	// Loose strips diacritics, drops every rune that is not an ASCII letter
	// or digit (including all whitespace), and lowercases. Used for name and
	// text-substring matching so spacing tricks like "w h a t s a p p"
	// collapse before comparison.
	Loose Mode = iota

	// LooseWithSpace strips diacritics, collapses whitespace runs and
	// newlines to single spaces, trims, and lowercases. Used for photo text
	// and exact-text comparison where rules carry literal spaces.
	LooseWithSpace
)

// pool of diacritic-stripping transformer chains; transform chains carry
// state and are not safe for concurrent use.
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
		)
	},
}

// Normalize canonicalizes s according to mode. It is a pure function: the
// same input always yields the same output.
func Normalize(s string, mode Mode) string {
	if s == "" {
		return ""
	}

	s = stripDiacritics(s)

	switch mode {
	case LooseWithSpace:
		s = collapseWhitespace(s)
	default:
		s = stripNonAlphanumeric(s)
	}

	return strings.ToLower(s)
}

func stripDiacritics(s string) string {
	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		return s
	}
	return out
}

func stripNonAlphanumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var space bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}

	return b.String()
}
