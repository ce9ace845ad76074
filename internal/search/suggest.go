package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/ktecheletronicos/loja/internal/domain"
)

// DefaultSuggestionLimit caps how many suggestions Suggest returns when
// the caller passes a non-positive limit.
const DefaultSuggestionLimit = 8

// Suggest returns product names that fuzzily match a partial query,
// ordered from closest to farthest. It backs the search-as-you-type
// dropdown, where Search would be too strict for half-typed words.
// Matching folds case and diacritics, so "memoria" suggests "Memória".
func (e *Engine) Suggest(query string, catalog []domain.Product, limit int) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	names := make([]string, len(catalog))
	for i, p := range catalog {
		names[i] = p.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(ranks)

	if len(ranks) > limit {
		ranks = ranks[:limit]
	}

	suggestions := make([]string, len(ranks))
	for i, r := range ranks {
		suggestions[i] = r.Target
	}
	return suggestions
}
