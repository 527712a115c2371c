package query

import (
	"strings"

	"github.com/roastmatch/coffee-search/internal/taxonomy"
	"github.com/roastmatch/coffee-search/internal/types"
)

// Resolution is the outcome of the taxonomy fast path. A confidence of none
// means nothing matched and the fallback tiers take over.
type Resolution struct {
	Query         types.ParsedQuery
	Confidence    types.Confidence
	MatchedTokens []string
}

// Resolve matches each token against the static taxonomy in fixed priority
// order (jargon, meta-category, alias, category name, note, process), first
// match winning per token. Unmatched tokens are dropped. The result is the
// deduplicated union across all tokens.
func Resolve(tax *taxonomy.Taxonomy, raw string) Resolution {
	res := Resolution{
		Query: types.ParsedQuery{
			Filters: ExtractFilters(raw),
		},
	}

	notes := newOrderedSet()
	processes := newOrderedSet()
	excludes := newOrderedSet()

	for _, token := range Tokenize(tax, raw) {
		if isPriceFragment(token) {
			continue
		}

		conf := resolveToken(tax, token, notes, processes, excludes)
		if conf == types.ConfidenceNone {
			continue
		}
		if conf > res.Confidence {
			res.Confidence = conf
		}
		res.MatchedTokens = append(res.MatchedTokens, token)
	}

	res.Query.MappedNotes = notes.values()
	res.Query.MappedProcesses = processes.values()
	res.Query.ExcludeCategories = excludes.values()
	return res
}

func resolveToken(tax *taxonomy.Taxonomy, token string, notes, processes, excludes *orderedSet) types.Confidence {
	// 1. Jargon exact match.
	if entry, ok := tax.ExpandJargon(token); ok {
		for _, cat := range entry.Categories {
			notes.addAll(tax.NotesForCategory(cat))
		}
		notes.addAll(entry.Notes)
		processes.addAll(entry.Processes)
		excludes.addAll(entry.ExcludeCategories)
		return types.ConfidenceHigh
	}

	// 2. Meta-category: union of member categories' notes.
	if cats, ok := tax.ExpandMeta(token); ok {
		for _, cat := range cats {
			notes.addAll(tax.NotesForCategory(cat))
		}
		return types.ConfidenceHigh
	}

	// 3. Alias to a canonical category.
	if tax.HasAlias(token) {
		notes.addAll(tax.NotesForCategory(tax.ResolveAlias(token)))
		return types.ConfidenceHigh
	}

	// 4. Direct category name.
	if tax.IsCategory(token) {
		notes.addAll(tax.NotesForCategory(token))
		return types.ConfidenceHigh
	}

	// 5. Direct tasting note.
	if _, ok := tax.CategoryForNote(token); ok {
		notes.add(token)
		return types.ConfidenceMedium
	}

	// 6. Process name, plus its correlated notes as a ranking hint.
	if tax.IsProcess(token) {
		processes.add(token)
		notes.addAll(tax.CorrelatedNotes(token))
		return types.ConfidenceMedium
	}

	return types.ConfidenceNone
}

// orderedSet deduplicates while preserving first-insertion order, keeping
// resolution output deterministic.
type orderedSet struct {
	seen map[string]bool
	vals []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

func (s *orderedSet) add(v string) {
	v = strings.ToLower(v)
	if v == "" || s.seen[v] {
		return
	}
	s.seen[v] = true
	s.vals = append(s.vals, v)
}

func (s *orderedSet) addAll(vs []string) {
	for _, v := range vs {
		s.add(v)
	}
}

func (s *orderedSet) values() []string {
	return s.vals
}
