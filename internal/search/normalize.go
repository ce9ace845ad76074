package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// stripDiacritics decomposes the string (NFD) and drops combining marks,
// so "memória" becomes "memoria".
func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Normalize turns a raw query into lowercase, accent-free tokens.
// Punctuation becomes whitespace, runs of whitespace collapse, and the
// result preserves the original token order. Normalize never fails and is
// idempotent: normalizing the joined output yields the same tokens.
func Normalize(query string) []string {
	s := stripDiacritics(strings.ToLower(query))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Fields(b.String())
}

// normalizeName lowercases a product name and strips accents. Unlike
// Normalize it keeps punctuation, because matching treats the name as one
// string ("SSD 2.5 SATA" must still contain "2.5").
func normalizeName(name string) string {
	return stripDiacritics(strings.ToLower(name))
}
