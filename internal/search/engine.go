package search

import (
	"sort"
	"strings"

	"github.com/ktecheletronicos/loja/internal/domain"
)

// Engine ranks catalog products against free-text queries. It is pure
// computation over an immutable synonym table and safe for concurrent use.
type Engine struct {
	synonyms map[string][]string
}

// NewEngine creates an engine with the built-in synonym table.
func NewEngine() *Engine {
	return &Engine{synonyms: defaultSynonyms}
}

// NewEngineWithSynonyms creates an engine with a custom synonym table.
// The table must not be mutated afterwards.
func NewEngineWithSynonyms(synonyms map[string][]string) *Engine {
	return &Engine{synonyms: synonyms}
}

// Search filters and ranks the catalog for the given query.
//
// An empty or whitespace-only query returns the catalog unchanged and
// unscored, in its original order. The same applies when normalization
// yields no tokens at all (a punctuation-only query): rather than letting
// every product match vacuously, the query is treated as empty.
//
// Otherwise products are filtered with Matches, scored against the raw
// query string, and sorted by descending score. The sort is stable, so
// products with equal scores keep their catalog order.
func (e *Engine) Search(query string, catalog []domain.Product) []domain.ScoredProduct {
	tokens := Normalize(query)
	if strings.TrimSpace(query) == "" || len(tokens) == 0 {
		results := make([]domain.ScoredProduct, len(catalog))
		for i, p := range catalog {
			results[i] = domain.ScoredProduct{Product: p}
		}
		return results
	}

	results := make([]domain.ScoredProduct, 0, len(catalog))
	for _, p := range catalog {
		if !e.Matches(p.Name, tokens) {
			continue
		}
		results = append(results, domain.ScoredProduct{
			Product: p,
			Score:   e.Score(p.Name, tokens, query),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// Matches reports whether every query token matches the product name.
// A single token matches when any of these holds:
//
//  1. the normalized name contains the token as a substring;
//  2. the token is a synonym key and one of its values occurs in the name;
//  3. the token is a synonym value and its key occurs in the name;
//  4. the token has at least 3 runes and shares a partial overlap with a
//     single word of the name, in either direction. This catches numeric
//     and measurement tokens like "16gb" against "16".
//
// Tokens shorter than 3 runes that fail rules 1-3 never match: rule 4
// would otherwise let 1-2 character tokens match almost everything.
func (e *Engine) Matches(productName string, tokens []string) bool {
	name := normalizeName(productName)

	for _, token := range tokens {
		if !e.tokenMatches(name, token) {
			return false
		}
	}
	return true
}

func (e *Engine) tokenMatches(name, token string) bool {
	if strings.Contains(name, token) {
		return true
	}

	for _, synonym := range e.synonyms[token] {
		if strings.Contains(name, synonym) {
			return true
		}
	}

	for key, values := range e.synonyms {
		if !strings.Contains(name, key) {
			continue
		}
		for _, v := range values {
			if v == token {
				return true
			}
		}
	}

	if len([]rune(token)) >= 3 {
		for _, word := range strings.Fields(name) {
			if strings.Contains(word, token) || strings.Contains(token, word) {
				return true
			}
		}
	}

	return false
}

// Score computes the additive relevance of a product name for a query.
// Scoring is case-insensitive on the raw name and raw query, not on the
// accent-stripped form, so accented queries reward accented names.
//
//	+100  name contains the whole query
//	 +50  name starts with the query
//	 +10  per token the name contains
//	  +5  extra per token the name starts with
//	  +N  max(0, 20 - wordCount): shorter names are more specific
func (e *Engine) Score(productName string, tokens []string, rawQuery string) int {
	score := 0
	name := strings.ToLower(productName)
	query := strings.ToLower(rawQuery)

	if strings.Contains(name, query) {
		score += 100
	}
	if strings.HasPrefix(name, query) {
		score += 50
	}

	for _, token := range tokens {
		if strings.Contains(name, token) {
			score += 10
			if strings.HasPrefix(name, token) {
				score += 5
			}
		}
	}

	if n := 20 - len(strings.Fields(productName)); n > 0 {
		score += n
	}

	return score
}
