package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given product name.
// Accented characters common in Portuguese catalog names are folded to
// their ASCII equivalents.
//
// Examples:
//   - "Memória RAM DDR4 8GB" → "memoria-ram-ddr4-8gb"
//   - "Fonte Genérica 500W!" → "fonte-generica-500w"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	// Decompose and drop combining marks (é → e, ã → a, ç → c).
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	slug := slugRegexp.ReplaceAllString(b.String(), "-")
	slug = strings.Trim(slug, "-")

	return slug
}
