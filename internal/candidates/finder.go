// Package candidates proposes vocabulary terms plausibly relevant to a query
// that the static taxonomy could not resolve. It grounds any later model call
// in terms that actually exist on live catalog items: a fuzzy string stage
// recovers typos and close spellings, an optional vector stage recovers
// semantic neighbors.
package candidates

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xrash/smetrics"
	"golang.org/x/sync/errgroup"

	"github.com/roastmatch/coffee-search/internal/embeddings"
	"github.com/roastmatch/coffee-search/internal/types"
)

const (
	// maxCandidates caps both the fuzzy stage and the merged result.
	maxCandidates = 15
	// fuzzyThreshold is the minimum Jaro-Winkler similarity for a fuzzy hit.
	fuzzyThreshold = 0.84
	// vectorThreshold is the minimum cosine similarity for a vector hit;
	// scores are normalized from [threshold,1] to [0,1] before merging.
	vectorThreshold = 0.75

	fuzzyWeight  = 0.4
	vectorWeight = 0.6
)

// NoteSearcher is the nearest-neighbor view of the note-embedding index.
type NoteSearcher interface {
	Query(ctx context.Context, embedding []float32, limit int) ([]embeddings.NoteHit, error)
}

// Finder runs the hybrid fuzzy + vector candidate discovery. The embedding
// provider and note index are optional; when either is absent the vector
// stage is skipped silently.
type Finder struct {
	logger   *log.Logger
	embedder embeddings.Provider
	index    NoteSearcher
}

// NewFinder creates a Finder. embedder and index may be nil.
func NewFinder(logger *log.Logger, embedder embeddings.Provider, index NoteSearcher) *Finder {
	return &Finder{
		logger:   logger,
		embedder: embedder,
		index:    index,
	}
}

// Find returns up to 15 candidate terms for the query, scored and tagged with
// the stage that proposed them. It never returns an error: the fuzzy stage is
// pure computation and any vector-stage failure only degrades the result.
//
// The two stages run concurrently. The vector stage embeds the top fuzzy hit
// when one exists (it is a cleaner probe than a raw multi-word query), so the
// fuzzy goroutine hands its best term over a channel as soon as it has one.
func (f *Finder) Find(ctx context.Context, rawQuery string, vocab types.Vocabulary) []types.Candidate {
	start := time.Now()

	var fuzzyHits, vectorHits []types.Candidate
	seed := make(chan string, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fuzzyHits = fuzzyMatch(rawQuery, vocab)
		text := rawQuery
		if len(fuzzyHits) > 0 {
			text = fuzzyHits[0].Term
		}
		seed <- text
		return nil
	})
	g.Go(func() error {
		select {
		case text := <-seed:
			vectorHits = f.vectorMatch(gctx, text)
		case <-gctx.Done():
		}
		return nil
	})
	_ = g.Wait() // neither stage surfaces errors

	merged := merge(fuzzyHits, vectorHits)

	f.logger.Debug("Candidate discovery completed",
		"query", rawQuery,
		"fuzzy_hits", len(fuzzyHits),
		"vector_hits", len(vectorHits),
		"candidates", len(merged),
		"duration", time.Since(start))

	return merged
}

// fuzzyMatch runs approximate string matching plus substring containment for
// every query word longer than two characters against the catalog vocabulary.
// Hit strength is 1.0 for containment, otherwise the Jaro-Winkler similarity;
// the returned candidate scores are rank-based: 1 - rank/count.
func fuzzyMatch(rawQuery string, vocab types.Vocabulary) []types.Candidate {
	words := queryWords(rawQuery)
	if len(words) == 0 {
		return nil
	}

	terms := make([]string, 0, len(vocab.Notes)+len(vocab.Processes))
	terms = append(terms, vocab.Notes...)
	terms = append(terms, vocab.Processes...)

	strength := make(map[string]float64)
	for _, word := range words {
		for _, term := range terms {
			if strings.Contains(term, word) || strings.Contains(word, term) {
				if strength[term] < 1.0 {
					strength[term] = 1.0
				}
				continue
			}
			if sim := smetrics.JaroWinkler(word, term, 0.7, 4); sim >= fuzzyThreshold && sim > strength[term] {
				strength[term] = sim
			}
		}
	}

	matched := make([]string, 0, len(strength))
	for term := range strength {
		matched = append(matched, term)
	}
	sort.Slice(matched, func(i, j int) bool {
		if strength[matched[i]] != strength[matched[j]] {
			return strength[matched[i]] > strength[matched[j]]
		}
		return matched[i] < matched[j]
	})
	if len(matched) > maxCandidates {
		matched = matched[:maxCandidates]
	}

	out := make([]types.Candidate, len(matched))
	for i, term := range matched {
		out[i] = types.Candidate{
			Term:   term,
			Score:  1.0 - float64(i)/float64(len(matched)),
			Source: types.CandidateSourceFuzzy,
		}
	}
	return out
}

// vectorMatch embeds the text and searches the note index. Every failure path
// (no provider, no index, provider error, index error) returns nil without
// surfacing an error; the vector stage must never fail a request.
func (f *Finder) vectorMatch(ctx context.Context, text string) []types.Candidate {
	if f.embedder == nil || f.index == nil {
		return nil
	}

	embedding, err := f.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		f.logger.Warn("Skipping vector candidate stage, embedding failed", "error", err)
		return nil
	}

	hits, err := f.index.Query(ctx, embedding, maxCandidates)
	if err != nil {
		f.logger.Warn("Skipping vector candidate stage, index query failed", "error", err)
		return nil
	}

	var out []types.Candidate
	for _, hit := range hits {
		if hit.Similarity < vectorThreshold {
			continue
		}
		normalized := (float64(hit.Similarity) - vectorThreshold) / (1.0 - vectorThreshold)
		out = append(out, types.Candidate{
			Term:   hit.Note,
			Score:  normalized,
			Source: types.CandidateSourceVector,
		})
	}
	return out
}

// merge combines the two stages with fixed weights (fuzzy 0.4, vector 0.6),
// summing scores per term and returning the top candidates sorted by combined
// score, term ascending on ties.
func merge(fuzzy, vector []types.Candidate) []types.Candidate {
	combined := make(map[string]float64)
	source := make(map[string]types.CandidateSource)

	for _, c := range fuzzy {
		combined[c.Term] += c.Score * fuzzyWeight
		source[c.Term] = types.CandidateSourceFuzzy
	}
	for _, c := range vector {
		combined[c.Term] += c.Score * vectorWeight
		if _, ok := source[c.Term]; !ok {
			source[c.Term] = types.CandidateSourceVector
		}
	}

	out := make([]types.Candidate, 0, len(combined))
	for term, score := range combined {
		out = append(out, types.Candidate{Term: term, Score: score, Source: source[term]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out
}

func queryWords(rawQuery string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(rawQuery)) {
		w = strings.Trim(w, "(),.;:!?\"'$")
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}
