// Package search is the orchestration layer: it runs a query through the
// resolution tiers (taxonomy, then candidate-grounded LLM, then heuristic),
// ranks the catalog against the resolved query and reports which tier
// produced the answer.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/roastmatch/coffee-search/internal/candidates"
	"github.com/roastmatch/coffee-search/internal/catalog"
	"github.com/roastmatch/coffee-search/internal/parser"
	"github.com/roastmatch/coffee-search/internal/query"
	"github.com/roastmatch/coffee-search/internal/taxonomy"
	"github.com/roastmatch/coffee-search/internal/types"
)

const defaultLimit = 20

type searchOptions struct {
	limit     int
	roasterID string
	coffeeID  string
}

// Option modifies a search request.
type Option func(*searchOptions)

// WithLimit caps the number of results returned.
func WithLimit(limit int) Option {
	return func(opts *searchOptions) {
		opts.limit = limit
	}
}

// WithRoaster restricts results to a single roaster.
func WithRoaster(roasterID string) Option {
	return func(opts *searchOptions) {
		opts.roasterID = roasterID
	}
}

// WithCoffeeID switches the request into similarity mode: the query string is
// ignored and results are items similar to the referenced coffee.
func WithCoffeeID(coffeeID string) Option {
	return func(opts *searchOptions) {
		opts.coffeeID = coffeeID
	}
}

// Service answers search and similarity requests against the catalog.
type Service struct {
	logger *log.Logger
	store  catalog.Store
	tax    *taxonomy.Taxonomy
	finder *candidates.Finder
	parser *parser.Parser
}

// NewService wires the resolution tiers together. finder and parser degrade
// internally when their external dependencies are absent, so a Service built
// with no credentials at all still answers every query.
func NewService(logger *log.Logger, store catalog.Store, tax *taxonomy.Taxonomy, finder *candidates.Finder, p *parser.Parser) *Service {
	return &Service{
		logger: logger,
		store:  store,
		tax:    tax,
		finder: finder,
		parser: p,
	}
}

// Search resolves and ranks a query. The debug block is always populated;
// only store access can make it fail.
func (s *Service) Search(ctx context.Context, rawQuery string, opts ...Option) (types.SearchResponse, error) {
	options := searchOptions{limit: defaultLimit}
	for _, opt := range opts {
		opt(&options)
	}

	if options.coffeeID != "" {
		return s.similar(ctx, options)
	}

	rawQuery = strings.TrimSpace(rawQuery)
	start := time.Now()

	// Empty query with no filters has nothing to rank on.
	if rawQuery == "" && options.roasterID == "" {
		return types.SearchResponse{
			Results: []types.SearchResult{},
			Debug:   types.SearchDebug{Source: types.SourceTaxonomy},
		}, nil
	}

	parsed, source, debug, err := s.resolve(ctx, rawQuery)
	if err != nil {
		return types.SearchResponse{}, err
	}
	if options.roasterID != "" {
		parsed.Filters.RoasterID = options.roasterID
	}
	debug.ParsedQuery = parsed

	coffees, err := s.store.ListActive(ctx)
	if err != nil {
		return types.SearchResponse{}, err
	}

	results := rank(s.tax, coffees, parsed, options.limit)
	if results == nil {
		results = []types.SearchResult{}
	}

	s.logger.Info("Search completed",
		"query", rawQuery,
		"source", source,
		"results", len(results),
		"duration", time.Since(start))

	return types.SearchResponse{Results: results, Debug: debug}, nil
}

// resolve runs the tiered resolution chain. The taxonomy tier is free and
// tried first; candidate discovery runs once on a miss and its output feeds
// both the LLM and heuristic tiers. Only a catalog read failure errors:
// the LLM and vector stages degrade instead.
func (s *Service) resolve(ctx context.Context, rawQuery string) (types.ParsedQuery, types.ResolutionSource, types.SearchDebug, error) {
	res := query.Resolve(s.tax, rawQuery)
	if res.Confidence != types.ConfidenceNone || rawQuery == "" {
		return res.Query, types.SourceTaxonomy, types.SearchDebug{
			Source: types.SourceTaxonomy,
			TaxonomyMatch: &types.TaxonomyMatch{
				Confidence:    res.Confidence.String(),
				MatchedTokens: res.MatchedTokens,
			},
		}, nil
	}

	vocab, err := s.store.ListVocabulary(ctx)
	if err != nil {
		return types.ParsedQuery{}, "", types.SearchDebug{}, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	cands := s.finder.Find(ctx, rawQuery, vocab)
	parsed, source := s.parser.Parse(ctx, rawQuery, cands, vocab)

	return parsed, source, types.SearchDebug{
		Source:         source,
		CandidateNotes: cands,
		TaxonomyMatch: &types.TaxonomyMatch{
			Confidence: types.ConfidenceNone.String(),
		},
	}, nil
}

func (s *Service) similar(ctx context.Context, options searchOptions) (types.SearchResponse, error) {
	start := time.Now()

	ref, err := s.store.GetByID(ctx, options.coffeeID)
	if err != nil {
		return types.SearchResponse{}, err
	}

	coffees, err := s.store.ListActive(ctx)
	if err != nil {
		return types.SearchResponse{}, err
	}

	results := similarByNotes(ref, coffees, options.limit)
	if results == nil {
		results = []types.SearchResult{}
	}

	s.logger.Info("Similarity search completed",
		"coffee_id", options.coffeeID,
		"results", len(results),
		"duration", time.Since(start))

	return types.SearchResponse{
		Results: results,
		Debug:   types.SearchDebug{Source: types.SourceSimilarity},
	}, nil
}
