package search

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastmatch/coffee-search/internal/candidates"
	"github.com/roastmatch/coffee-search/internal/catalog"
	"github.com/roastmatch/coffee-search/internal/parser"
	"github.com/roastmatch/coffee-search/internal/taxonomy"
	"github.com/roastmatch/coffee-search/internal/types"
)

// fakeStore is an in-memory catalog.Store.
type fakeStore struct {
	coffees  []types.Coffee
	vocabErr error
}

func (s *fakeStore) ListActive(ctx context.Context) ([]types.Coffee, error) {
	var out []types.Coffee
	for _, c := range s.coffees {
		if c.Available && !c.Skip {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*types.Coffee, error) {
	for _, c := range s.coffees {
		if c.ID == id {
			coffee := c
			return &coffee, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (s *fakeStore) ListVocabulary(ctx context.Context) (types.Vocabulary, error) {
	if s.vocabErr != nil {
		return types.Vocabulary{}, s.vocabErr
	}
	noteSet := map[string]bool{}
	processSet := map[string]bool{}
	for _, c := range s.coffees {
		if !c.Available || c.Skip {
			continue
		}
		for _, n := range c.Notes {
			noteSet[n] = true
		}
		for _, p := range c.Process {
			processSet[p] = true
		}
	}
	var vocab types.Vocabulary
	for n := range noteSet {
		vocab.Notes = append(vocab.Notes, n)
	}
	for p := range processSet {
		vocab.Processes = append(vocab.Processes, p)
	}
	return vocab, nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCatalog() []types.Coffee {
	return []types.Coffee{
		{
			ID: "funky-natural", Name: "Wush Wush Anaerobic", RoasterID: "roaster-a",
			Notes: []string{"boozy", "fermented", "strawberry"}, Process: []string{"natural", "anaerobic"},
			Country: []string{"Ethiopia"}, Available: true,
			Variants:  []types.PriceVariant{{Grams: 250, PriceUSD: price("24.00")}},
			Embedding: []float32{1, 0, 0},
		},
		{
			ID: "clean-washed", Name: "Gakenke Washed", RoasterID: "roaster-a",
			Notes: []string{"tea", "bright", "lemon"}, Process: []string{"washed"},
			Country: []string{"Rwanda"}, Available: true,
			Variants:  []types.PriceVariant{{Grams: 250, PriceUSD: price("17.00")}},
			Embedding: []float32{0, 1, 0},
		},
		{
			ID: "floral-ethiopia", Name: "Gedeb Lot 4", RoasterID: "roaster-b",
			Notes: []string{"jasmine", "bergamot", "strawberry"}, Process: []string{"washed"},
			Country: []string{"Ethiopia"}, Available: true,
			Variants: []types.PriceVariant{
				{Grams: 250, PriceUSD: price("19.50")},
				{Grams: 1000, PriceUSD: price("62.00")},
			},
			Embedding: []float32{0, 0, 1},
		},
		{
			ID: "pricey-floral", Name: "Gesha Village", RoasterID: "roaster-b",
			Notes: []string{"jasmine", "honeysuckle"}, Process: []string{"washed"},
			Country: []string{"Ethiopia"}, Available: true,
			Variants: []types.PriceVariant{{Grams: 100, PriceUSD: price("45.00")}},
		},
		{
			ID: "choc-brazil", Name: "Fazenda Sertao", RoasterID: "roaster-a",
			Notes: []string{"chocolate", "hazelnut"}, Process: []string{"pulped natural"},
			Country: []string{"Brazil"}, Available: true,
			Variants:  []types.PriceVariant{{Grams: 250, PriceUSD: price("14.00")}},
			Embedding: []float32{0.5, 0.5, 0},
		},
		{
			ID: "hidden", Name: "Old Stock", RoasterID: "roaster-a",
			Notes: []string{"boozy", "fermented"}, Process: []string{"natural"},
			Country: []string{"Ethiopia"}, Available: false,
		},
	}
}

func newTestService(coffees []types.Coffee) *Service {
	return newTestServiceWithStore(&fakeStore{coffees: coffees})
}

func newTestServiceWithStore(store catalog.Store) *Service {
	logger := log.New(io.Discard)
	tax := taxonomy.New()
	finder := candidates.NewFinder(logger, nil, nil)
	p := parser.New(logger, tax, nil)
	return NewService(logger, store, tax, finder, p)
}

func TestSearchFunkyRanksFermentedFirst(t *testing.T) {
	service := newTestService(testCatalog())

	response, err := service.Search(context.Background(), "funky")
	require.NoError(t, err)
	assert.Equal(t, types.SourceTaxonomy, response.Debug.Source)
	require.NotEmpty(t, response.Results)
	assert.Equal(t, "funky-natural", response.Results[0].Coffee.ID)

	for _, result := range response.Results {
		assert.NotEqual(t, "hidden", result.Coffee.ID, "unavailable items must never appear")
	}
}

func TestSearchCleanCupExcludesFermented(t *testing.T) {
	service := newTestService(testCatalog())

	response, err := service.Search(context.Background(), "clean cup")
	require.NoError(t, err)
	assert.Equal(t, types.SourceTaxonomy, response.Debug.Source)
	require.NotEmpty(t, response.Results)
	assert.Equal(t, "clean-washed", response.Results[0].Coffee.ID)

	for _, result := range response.Results {
		assert.NotEqual(t, "funky-natural", result.Coffee.ID,
			"a coffee with fermented-category notes must be excluded")
	}
}

func TestSearchPriceAndCountryFilters(t *testing.T) {
	service := newTestService(testCatalog())

	response, err := service.Search(context.Background(), "under $20 Ethiopian floral")
	require.NoError(t, err)
	assert.Equal(t, types.SourceTaxonomy, response.Debug.Source)

	require.Len(t, response.Results, 1)
	assert.Equal(t, "floral-ethiopia", response.Results[0].Coffee.ID)

	parsed := response.Debug.ParsedQuery
	require.NotNil(t, parsed.Filters.MaxPrice)
	assert.True(t, parsed.Filters.MaxPrice.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "Ethiopia", parsed.Filters.Country)
}

func TestSearchAnyVariantSatisfiesPrice(t *testing.T) {
	service := newTestService(testCatalog())

	// floral-ethiopia's 1kg bag is $62 but its 250g bag is $19.50; the
	// cheaper variant keeps it in a sub-$20 result set.
	response, err := service.Search(context.Background(), "floral under $20")
	require.NoError(t, err)

	ids := resultIDs(response)
	assert.Contains(t, ids, "floral-ethiopia")
	assert.NotContains(t, ids, "pricey-floral")
}

func TestSearchSimilarity(t *testing.T) {
	service := newTestService(testCatalog())

	response, err := service.Search(context.Background(), "", WithCoffeeID("funky-natural"))
	require.NoError(t, err)
	assert.Equal(t, types.SourceSimilarity, response.Debug.Source)

	// floral-ethiopia shares "strawberry" and must outrank the embedded
	// items with no overlap.
	require.NotEmpty(t, response.Results)
	assert.Equal(t, "floral-ethiopia", response.Results[0].Coffee.ID)
	assert.Greater(t, response.Results[0].Score, 0.0)
	assert.NotContains(t, resultIDs(response), "funky-natural",
		"the reference item must not appear in its own results")
}

func TestSearchSimilarityKeepsZeroOverlapItems(t *testing.T) {
	service := newTestService(testCatalog())

	response, err := service.Search(context.Background(), "", WithCoffeeID("funky-natural"), WithLimit(10))
	require.NoError(t, err)

	// Every other embedded item participates; no shared notes just means a
	// zero score at the bottom of the list.
	ids := resultIDs(response)
	assert.Contains(t, ids, "clean-washed")
	assert.Contains(t, ids, "choc-brazil")
	assert.NotContains(t, ids, "pricey-floral", "items without embeddings are not comparable")

	for _, result := range response.Results {
		if result.Coffee.ID == "clean-washed" || result.Coffee.ID == "choc-brazil" {
			assert.Zero(t, result.Score)
			assert.Empty(t, result.MatchedAttributes)
		}
	}
	last := response.Results[len(response.Results)-1]
	assert.Zero(t, last.Score, "zero-overlap items sort after overlapping ones")
}

func TestSearchSimilarityMissingEmbedding(t *testing.T) {
	service := newTestService(testCatalog())

	response, err := service.Search(context.Background(), "", WithCoffeeID("pricey-floral"))
	require.NoError(t, err)
	assert.Equal(t, types.SourceSimilarity, response.Debug.Source)
	assert.Empty(t, response.Results)
}

func TestSearchSimilarityUnknownID(t *testing.T) {
	service := newTestService(testCatalog())

	_, err := service.Search(context.Background(), "", WithCoffeeID("nope"))
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestSearchFullDegradationUsesFallback(t *testing.T) {
	// No LLM, no embeddings: an out-of-taxonomy query must still answer,
	// resolved by the heuristic tier.
	service := newTestService(testCatalog())

	response, err := service.Search(context.Background(), "choclate hazlenut")
	require.NoError(t, err)
	assert.Equal(t, types.SourceFallback, response.Debug.Source)
	assert.NotEmpty(t, response.Debug.CandidateNotes)

	require.NotEmpty(t, response.Results)
	assert.Equal(t, "choc-brazil", response.Results[0].Coffee.ID)
}

func TestSearchVocabularyErrorPropagates(t *testing.T) {
	// A catalog read failure must fail the request, not degrade it into a
	// fallback-tier answer over an empty vocabulary.
	vocabErr := errors.New("catalog unavailable")
	service := newTestServiceWithStore(&fakeStore{coffees: testCatalog(), vocabErr: vocabErr})

	_, err := service.Search(context.Background(), "zzqx unknown phrase")
	assert.ErrorIs(t, err, vocabErr)
}

func TestSearchTaxonomyPathSkipsVocabulary(t *testing.T) {
	// Queries the taxonomy resolves never touch the vocabulary, so a broken
	// vocabulary read does not affect them.
	service := newTestServiceWithStore(&fakeStore{coffees: testCatalog(), vocabErr: errors.New("catalog unavailable")})

	response, err := service.Search(context.Background(), "funky")
	require.NoError(t, err)
	assert.Equal(t, types.SourceTaxonomy, response.Debug.Source)
	require.NotEmpty(t, response.Results)
}

func TestSearchEmptyQuery(t *testing.T) {
	service := newTestService(testCatalog())

	response, err := service.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, response.Results)
	assert.Equal(t, types.SourceTaxonomy, response.Debug.Source)
}

func TestSearchRoasterFilterOnly(t *testing.T) {
	service := newTestService(testCatalog())

	response, err := service.Search(context.Background(), "", WithRoaster("roaster-b"))
	require.NoError(t, err)
	assert.Equal(t, types.SourceTaxonomy, response.Debug.Source)

	require.Len(t, response.Results, 2)
	for _, result := range response.Results {
		assert.Equal(t, "roaster-b", result.Coffee.RoasterID)
		assert.Zero(t, result.Score, "filter-only results carry no semantic score")
	}
}

func TestSearchRoasterRestrictsSemanticQuery(t *testing.T) {
	service := newTestService(testCatalog())

	response, err := service.Search(context.Background(), "floral", WithRoaster("roaster-b"))
	require.NoError(t, err)
	for _, result := range response.Results {
		assert.Equal(t, "roaster-b", result.Coffee.RoasterID)
	}
	assert.Contains(t, resultIDs(response), "floral-ethiopia")
}

func TestSearchLimit(t *testing.T) {
	service := newTestService(testCatalog())

	response, err := service.Search(context.Background(), "washed", WithLimit(1))
	require.NoError(t, err)
	assert.Len(t, response.Results, 1)
}

func TestSearchDeterministic(t *testing.T) {
	service := newTestService(testCatalog())

	first, err := service.Search(context.Background(), "fruity natural")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := service.Search(context.Background(), "fruity natural")
		require.NoError(t, err)
		assert.Equal(t, resultIDs(first), resultIDs(again))
	}
}

func TestSearchScoreMonotonicity(t *testing.T) {
	service := newTestService(testCatalog())

	response, err := service.Search(context.Background(), "funky")
	require.NoError(t, err)
	for i := 1; i < len(response.Results); i++ {
		assert.GreaterOrEqual(t, response.Results[i-1].Score, response.Results[i].Score)
	}
}

func TestSearchDebugAlwaysPopulated(t *testing.T) {
	service := newTestService(testCatalog())

	for _, q := range []string{"funky", "choclate", "", "under $20 Ethiopian floral"} {
		response, err := service.Search(context.Background(), q)
		require.NoError(t, err)
		assert.NotEmpty(t, response.Debug.Source, "query %q has no debug source", q)
	}
}

func TestMatchTermContainment(t *testing.T) {
	// Note matching widens exact intersection to whole-phrase containment in
	// either direction: free-text catalog notes like "dark chocolate" satisfy
	// a canonical "chocolate" term and vice versa.
	attr, ok := matchTerm("chocolate", []string{"dark chocolate"})
	require.True(t, ok)
	assert.Equal(t, "dark chocolate", attr)

	attr, ok = matchTerm("milk chocolate", []string{"chocolate"})
	require.True(t, ok)
	assert.Equal(t, "chocolate", attr)

	_, ok = matchTerm("jasmine", []string{"chocolate", "hazelnut"})
	assert.False(t, ok)
}

func resultIDs(response types.SearchResponse) []string {
	ids := make([]string, len(response.Results))
	for i, r := range response.Results {
		ids[i] = r.Coffee.ID
	}
	return ids
}
