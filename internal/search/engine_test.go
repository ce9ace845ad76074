package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktecheletronicos/loja/internal/domain"
)

func products(names ...string) []domain.Product {
	out := make([]domain.Product, len(names))
	for i, n := range names {
		out[i] = domain.Product{Slug: n, Name: n}
	}
	return out
}

func names(results []domain.ScoredProduct) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Name
	}
	return out
}

// --- Normalization ---

func TestNormalize_StripsAccentsAndPunctuation(t *testing.T) {
	assert.Equal(t, []string{"memoria", "ram", "8gb"}, Normalize("Memória RAM, 8GB!"))
}

func TestNormalize_Idempotent(t *testing.T) {
	first := Normalize("Cabo HDMI 2.0 - 1,5m")
	second := Normalize(joinTokens(first))
	assert.Equal(t, first, second)
}

func joinTokens(tokens []string) string {
	s := ""
	for i, tok := range tokens {
		if i > 0 {
			s += " "
		}
		s += tok
	}
	return s
}

func TestNormalize_PunctuationOnly(t *testing.T) {
	assert.Empty(t, Normalize("!!! ,,, ..."))
}

// --- Matching ---

func TestMatches_EveryProductMatchesItsOwnName(t *testing.T) {
	engine := NewEngine()
	catalog := []string{
		"Memória RAM DDR4 8GB Kingston",
		"SSD 2.5 SATA 480GB",
		"Cabo HDMI 2.0 1,5m",
		"Fonte ATX 500W Real",
		"Mouse Gamer RGB 6400 DPI",
	}
	for _, name := range catalog {
		assert.True(t, engine.Matches(name, Normalize(name)), name)
	}
}

func TestMatches_SynonymForward(t *testing.T) {
	engine := NewEngine()
	// "memoria" maps to "ram" among others.
	assert.True(t, engine.Matches("Modulo RAM 16GB", Normalize("memoria")))
}

func TestMatches_SynonymReverse(t *testing.T) {
	engine := NewEngine()
	// "pc4" is a value under the "ddr4" key, so it must find DDR4 products.
	assert.True(t, engine.Matches("Memoria RAM DDR4 8GB", Normalize("pc4")))
}

func TestMatches_NumericTokensSurvivePunctuationSplit(t *testing.T) {
	engine := NewEngine()
	// "2,5" normalizes to tokens "2" and "5"; both occur in "2.5".
	assert.True(t, engine.Matches("SSD 2.5 SATA 480GB", Normalize("2,5")))
}

func TestMatches_PartialWordOverlapRequiresThreeRunes(t *testing.T) {
	engine := NewEngine()
	// "480gb" contains the word "480" of the name.
	assert.True(t, engine.Matches("SSD SATA 480 GB", Normalize("480gb")))
	// A 2-rune token with no substring, synonym or overlap must not match.
	assert.False(t, engine.Matches("Fonte ATX 500W", Normalize("xy")))
}

func TestMatches_AllTokensRequired(t *testing.T) {
	engine := NewEngine()
	assert.False(t, engine.Matches("Memoria RAM DDR4 8GB", Normalize("memoria notebook")))
	assert.True(t, engine.Matches("Memoria RAM DDR4 8GB Notebook", Normalize("memoria notebook")))
}

// --- Scoring and ordering ---

func TestSearch_ExactNameRanksFirst(t *testing.T) {
	engine := NewEngine()
	catalog := products(
		"Kit Teclado e Mouse Sem Fio",
		"Mouse Gamer RGB",
		"Mouse",
	)

	results := engine.Search("mouse", catalog)

	require.Len(t, results, 3)
	assert.Equal(t, "Mouse", results[0].Name)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_WholeQuerySubstringOutranksTokenHits(t *testing.T) {
	engine := NewEngine()
	catalog := products(
		"Suporte Headset Gamer",
		"Headset Gamer P2 com Microfone",
	)

	results := engine.Search("headset gamer", catalog)

	require.Len(t, results, 2)
	// Both contain the whole query, but only one starts with it.
	assert.Equal(t, "Headset Gamer P2 com Microfone", results[0].Name)
}

func TestSearch_StableOrderOnEqualScores(t *testing.T) {
	engine := NewEngine()
	catalog := products(
		"Cabo HDMI Preto 2m",
		"Cabo HDMI Branco 2m",
	)

	results := engine.Search("cabo hdmi", catalog)

	require.Len(t, results, 2)
	require.Equal(t, results[0].Score, results[1].Score)
	assert.Equal(t, []string{"Cabo HDMI Preto 2m", "Cabo HDMI Branco 2m"}, names(results))
}

func TestSearch_EmptyQueryReturnsCatalogUnchanged(t *testing.T) {
	engine := NewEngine()
	catalog := products("B", "A", "C")

	for _, query := range []string{"", "   ", "\t"} {
		results := engine.Search(query, catalog)
		require.Len(t, results, 3, "query %q", query)
		assert.Equal(t, []string{"B", "A", "C"}, names(results))
		for _, r := range results {
			assert.Zero(t, r.Score)
		}
	}
}

func TestSearch_PunctuationOnlyQueryReturnsCatalogUnchanged(t *testing.T) {
	engine := NewEngine()
	catalog := products("B", "A", "C")

	results := engine.Search("?!...", catalog)

	require.Len(t, results, 3)
	assert.Equal(t, []string{"B", "A", "C"}, names(results))
}

func TestSearch_FiltersNonMatching(t *testing.T) {
	engine := NewEngine()
	catalog := products(
		"Memoria RAM DDR4 8GB",
		"Fonte ATX 500W",
		"Memoria RAM DDR3 4GB",
	)

	results := engine.Search("ddr4", catalog)

	require.Len(t, results, 1)
	assert.Equal(t, "Memoria RAM DDR4 8GB", results[0].Name)
}

func TestSearch_AccentInsensitive(t *testing.T) {
	engine := NewEngine()
	catalog := products("Memória RAM DDR4 8GB")

	results := engine.Search("memoria", catalog)

	require.Len(t, results, 1)
}

func TestScore_ShorterNamesScoreHigherOnTies(t *testing.T) {
	engine := NewEngine()
	tokens := Normalize("ssd")

	short := engine.Score("SSD 480GB", tokens, "ssd")
	long := engine.Score("SSD 480GB SATA III Leitura 550MB/s Gravacao 500MB/s", tokens, "ssd")

	assert.Greater(t, short, long)
}

// --- Suggestions ---

func TestSuggest_FoldsAccents(t *testing.T) {
	engine := NewEngine()
	catalog := products("Memória RAM DDR4 8GB", "Fonte ATX 500W")

	got := engine.Suggest("memoria", catalog, 5)

	require.NotEmpty(t, got)
	assert.Equal(t, "Memória RAM DDR4 8GB", got[0])
}

func TestSuggest_RespectsLimit(t *testing.T) {
	engine := NewEngine()
	catalog := products("Cabo A", "Cabo B", "Cabo C", "Cabo D")

	got := engine.Suggest("cabo", catalog, 2)

	assert.Len(t, got, 2)
}

func TestSuggest_EmptyQuery(t *testing.T) {
	engine := NewEngine()
	assert.Nil(t, engine.Suggest("  ", products("Cabo A"), 5))
}
