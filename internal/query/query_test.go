package query

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastmatch/coffee-search/internal/taxonomy"
	"github.com/roastmatch/coffee-search/internal/types"
)

func TestTokenizeGreedyPhrases(t *testing.T) {
	tax := taxonomy.New()

	tests := []struct {
		raw  string
		want []string
	}{
		{"berry bomb", []string{"berry bomb"}},
		{"a berry bomb coffee", []string{"a", "berry bomb", "coffee"}},
		{"Clean Cup, please!", []string{"clean cup", "please"}},
		{"anaerobic funk natural", []string{"anaerobic funk", "natural"}},
		{"fruity washed", []string{"fruity", "washed"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tokenize(tax, tt.raw), "query %q", tt.raw)
	}
}

func TestTokenizePriceFragmentsPassThrough(t *testing.T) {
	tax := taxonomy.New()

	tokens := Tokenize(tax, "floral under $20")
	assert.Equal(t, []string{"floral", "under", "$20"}, tokens)

	// A digit-bearing word is never merged into a phrase.
	tokens = Tokenize(tax, "berry 20 bomb")
	assert.Equal(t, []string{"berry", "20", "bomb"}, tokens)
}

func TestExtractFiltersPrice(t *testing.T) {
	f := ExtractFilters("fruity under $20")
	require.NotNil(t, f.MaxPrice)
	assert.True(t, f.MaxPrice.Equal(decimal.NewFromInt(20)))
	assert.Nil(t, f.MinPrice)

	f = ExtractFilters("over 15 but below 32.50")
	require.NotNil(t, f.MinPrice)
	require.NotNil(t, f.MaxPrice)
	assert.True(t, f.MinPrice.Equal(decimal.NewFromInt(15)))
	assert.True(t, f.MaxPrice.Equal(decimal.RequireFromString("32.50")))

	f = ExtractFilters("no price here")
	assert.Nil(t, f.MaxPrice)
	assert.Nil(t, f.MinPrice)
}

func TestExtractFiltersCountry(t *testing.T) {
	assert.Equal(t, "Ethiopia", ExtractFilters("floral Ethiopian coffee").Country)
	assert.Equal(t, "Ethiopia", ExtractFilters("something from ethiopia").Country)
	assert.Equal(t, "Costa Rica", ExtractFilters("honey costa rica").Country)

	// Word boundaries: "india" must not fire inside "indonesian".
	assert.Equal(t, "Indonesia", ExtractFilters("an indonesian coffee").Country)
	assert.Equal(t, "", ExtractFilters("nothing doing").Country)
}

func TestResolveJargonAlwaysLands(t *testing.T) {
	tax := taxonomy.New()

	for _, term := range tax.JargonTerms() {
		res := Resolve(tax, term)
		assert.NotEqual(t, types.ConfidenceNone, res.Confidence, "jargon %q did not resolve", term)

		entry, _ := tax.ExpandJargon(term)
		if len(entry.Notes) > 0 || len(entry.Categories) > 0 {
			assert.NotEmpty(t, res.Query.MappedNotes, "jargon %q produced no notes", term)
		}
	}
}

func TestResolveFunky(t *testing.T) {
	tax := taxonomy.New()

	res := Resolve(tax, "funky")
	require.Equal(t, types.ConfidenceHigh, res.Confidence)
	assert.NotEmpty(t, res.Query.MappedNotes)
	assert.Equal(t, []string{"funky"}, res.MatchedTokens)
}

func TestResolveCleanCupExcludesFermented(t *testing.T) {
	tax := taxonomy.New()

	res := Resolve(tax, "clean cup")
	require.Equal(t, types.ConfidenceHigh, res.Confidence)
	assert.Contains(t, res.Query.ExcludeCategories, "fermented")
}

func TestResolveDirectNoteIsMedium(t *testing.T) {
	tax := taxonomy.New()

	res := Resolve(tax, "peach")
	assert.Equal(t, types.ConfidenceMedium, res.Confidence)
	assert.Equal(t, []string{"peach"}, res.Query.MappedNotes)
}

func TestResolveCategoryExpandsNotes(t *testing.T) {
	tax := taxonomy.New()

	res := Resolve(tax, "chocolate")
	require.Equal(t, types.ConfidenceHigh, res.Confidence)
	assert.ElementsMatch(t, tax.NotesForCategory("chocolate"), res.Query.MappedNotes)
}

func TestResolveProcessAddsCorrelatedNotes(t *testing.T) {
	tax := taxonomy.New()

	res := Resolve(tax, "natural")
	require.Equal(t, types.ConfidenceMedium, res.Confidence)
	assert.Equal(t, []string{"natural"}, res.Query.MappedProcesses)
	assert.NotEmpty(t, res.Query.MappedNotes, "process resolution should carry correlated notes")
}

func TestResolveFiltersOnTaxonomyPath(t *testing.T) {
	tax := taxonomy.New()

	res := Resolve(tax, "under $20 Ethiopian floral")
	require.NotEqual(t, types.ConfidenceNone, res.Confidence)
	require.NotNil(t, res.Query.Filters.MaxPrice)
	assert.True(t, res.Query.Filters.MaxPrice.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "Ethiopia", res.Query.Filters.Country)
	assert.NotEmpty(t, res.Query.MappedNotes)
}

func TestResolveUnknownIsNone(t *testing.T) {
	tax := taxonomy.New()

	res := Resolve(tax, "something entirely unrelated")
	assert.Equal(t, types.ConfidenceNone, res.Confidence)
	assert.Empty(t, res.Query.MappedNotes)
	assert.Empty(t, res.MatchedTokens)
}

func TestResolveDeterministicOrder(t *testing.T) {
	tax := taxonomy.New()

	first := Resolve(tax, "funky fruity natural")
	for i := 0; i < 5; i++ {
		again := Resolve(tax, "funky fruity natural")
		assert.Equal(t, first.Query.MappedNotes, again.Query.MappedNotes)
		assert.Equal(t, first.Query.MappedProcesses, again.Query.MappedProcesses)
	}
}
