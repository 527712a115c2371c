package search

import (
	"sort"
	"strings"

	"github.com/roastmatch/coffee-search/internal/types"
)

// similarByNotes ranks active embedded items by flavor-note overlap with the
// reference item. Embedding presence gates participation on both sides: an
// item never went through the text-blob pipeline is not comparable, and a
// reference without one yields an empty result rather than an error.
func similarByNotes(ref *types.Coffee, coffees []types.Coffee, limit int) []types.SearchResult {
	if len(ref.Embedding) == 0 {
		return nil
	}

	refNotes := make(map[string]bool, len(ref.Notes))
	for _, n := range ref.Notes {
		refNotes[strings.ToLower(n)] = true
	}

	var results []types.SearchResult
	for _, coffee := range coffees {
		if coffee.ID == ref.ID || len(coffee.Embedding) == 0 {
			continue
		}

		// Zero overlap still produces a result: every embedded item is
		// comparable, it just sorts to the bottom with a zero score.
		var shared []string
		for _, n := range coffee.Notes {
			if refNotes[strings.ToLower(n)] {
				shared = append(shared, n)
			}
		}

		results = append(results, types.SearchResult{
			Coffee:            coffee,
			MatchedAttributes: shared,
			Score:             float64(len(shared)) / float64(max(len(ref.Notes), 1)),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return strings.ToLower(results[i].Coffee.Name) < strings.ToLower(results[j].Coffee.Name)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
