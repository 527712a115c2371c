package parser

import (
	"strings"

	"github.com/roastmatch/coffee-search/internal/query"
	"github.com/roastmatch/coffee-search/internal/types"
)

// safetyNet is a tiny fixed jargon table applied by the heuristic so the most
// common colloquialisms still work when both the taxonomy fast path (which
// carries the full dictionary) and the model are unavailable.
var safetyNet = map[string]struct {
	notes     []string
	processes []string
}{
	"funky":      {notes: []string{"fermented", "wild", "yeasty", "boozy"}, processes: []string{"natural", "anaerobic"}},
	"fruity":     {notes: []string{"berry", "citrus", "stone fruit", "tropical"}},
	"clean":      {notes: []string{"tea", "crisp", "bright", "fresh"}, processes: []string{"washed"}},
	"berry bomb": {notes: []string{"berry", "blueberry", "strawberry", "raspberry", "blackberry", "jammy"}, processes: []string{"natural"}},
	"jammy":      {notes: []string{"strawberry", "raspberry", "red wine", "cherry", "berry"}, processes: []string{"natural"}},
}

// heuristicParse is the deterministic last tier: regex-extracted price
// bounds, a fixed country table, the candidate terms verbatim, and the
// safety-net jargon expansions. It cannot fail.
func heuristicParse(rawQuery string, noteCandidates, processCandidates []string) types.ParsedQuery {
	parsed := types.ParsedQuery{
		Filters:       query.ExtractFilters(rawQuery),
		SemanticQuery: strings.TrimSpace(rawQuery),
	}

	notes := append([]string(nil), noteCandidates...)
	processes := append([]string(nil), processCandidates...)

	lower := strings.ToLower(rawQuery)
	for term, expansion := range safetyNet {
		if strings.Contains(lower, term) {
			notes = append(notes, expansion.notes...)
			processes = append(processes, expansion.processes...)
		}
	}

	parsed.MappedNotes = dedupe(notes)
	parsed.MappedProcesses = dedupe(processes)
	return parsed
}

func dedupe(terms []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
