// Package taxonomy holds the static flavor domain knowledge: tasting-note
// categories, the barista jargon dictionary, meta-categories, aliases and
// process correlations. Everything is built once at startup and is immutable
// and safe for concurrent reads afterwards.
package taxonomy

import (
	"fmt"
	"sort"
	"strings"
)

// JargonEntry is the curated expansion of a colloquial phrase.
type JargonEntry struct {
	Categories        []string
	Notes             []string
	Processes         []string
	ExcludeCategories []string
}

// ProcessCorrelation lists the categories and descriptor notes a processing
// method is correlated with.
type ProcessCorrelation struct {
	Categories  []string
	Descriptors []string
}

// Taxonomy is the read-only lookup structure over the static tables.
type Taxonomy struct {
	noteToCategory map[string]string
	categories     map[string][]string
	processes      map[string]bool
	jargon         map[string]JargonEntry
	meta           map[string][]string
	aliases        map[string]string
	correlations   map[string]ProcessCorrelation
	phrases        [][]string // known multi-word phrases, longest first
}

// New builds the taxonomy and its reverse note index. It panics if a note is
// assigned to more than one category, since resolution would then depend on
// map iteration order.
func New() *Taxonomy {
	noteToCategory := make(map[string]string)
	for category, notes := range flavorCategories {
		for _, note := range notes {
			if prev, ok := noteToCategory[note]; ok {
				panic(fmt.Sprintf("taxonomy: note %q assigned to both %q and %q", note, prev, category))
			}
			noteToCategory[note] = category
		}
	}

	processes := make(map[string]bool, len(processNames))
	for _, p := range processNames {
		processes[p] = true
	}

	t := &Taxonomy{
		noteToCategory: noteToCategory,
		categories:     flavorCategories,
		processes:      processes,
		jargon:         jargonEntries,
		meta:           metaCategories,
		aliases:        categoryAliases,
		correlations:   processCorrelations,
	}
	t.phrases = buildPhraseTable(t)
	return t
}

// buildPhraseTable collects every known multi-word phrase (jargon entries,
// aliases, meta-category names) as word slices, longest first, for the greedy
// tokenizer.
func buildPhraseTable(t *Taxonomy) [][]string {
	var phrases [][]string
	add := func(term string) {
		words := strings.Fields(term)
		if len(words) > 1 {
			phrases = append(phrases, words)
		}
	}
	for term := range t.jargon {
		add(term)
	}
	for term := range t.aliases {
		add(term)
	}
	for term := range t.meta {
		add(term)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return strings.Join(phrases[i], " ") < strings.Join(phrases[j], " ")
	})
	return phrases
}

// CategoryForNote returns the category a tasting note belongs to.
func (t *Taxonomy) CategoryForNote(note string) (string, bool) {
	cat, ok := t.noteToCategory[strings.ToLower(note)]
	return cat, ok
}

// NotesForCategory returns the member notes of a category, or nil if the
// category is unknown.
func (t *Taxonomy) NotesForCategory(category string) []string {
	return t.categories[strings.ToLower(category)]
}

// IsCategory reports whether the term names a flavor category.
func (t *Taxonomy) IsCategory(term string) bool {
	_, ok := t.categories[strings.ToLower(term)]
	return ok
}

// IsProcess reports whether the term names a known processing method.
func (t *Taxonomy) IsProcess(term string) bool {
	return t.processes[strings.ToLower(term)]
}

// Processes returns all known processing methods.
func (t *Taxonomy) Processes() []string {
	out := make([]string, len(processNames))
	copy(out, processNames)
	return out
}

// AllNotes returns every note in the taxonomy, sorted.
func (t *Taxonomy) AllNotes() []string {
	out := make([]string, 0, len(t.noteToCategory))
	for note := range t.noteToCategory {
		out = append(out, note)
	}
	sort.Strings(out)
	return out
}

// ResolveAlias maps a term to its canonical category name, or returns the
// term unchanged when no alias exists.
func (t *Taxonomy) ResolveAlias(term string) string {
	if canonical, ok := t.aliases[strings.ToLower(term)]; ok {
		return canonical
	}
	return term
}

// HasAlias reports whether the term is a known alias.
func (t *Taxonomy) HasAlias(term string) bool {
	_, ok := t.aliases[strings.ToLower(term)]
	return ok
}

// ExpandJargon returns the curated expansion for a colloquial phrase.
func (t *Taxonomy) ExpandJargon(term string) (JargonEntry, bool) {
	entry, ok := t.jargon[strings.ToLower(term)]
	return entry, ok
}

// JargonTerms returns every phrase in the jargon dictionary, sorted.
func (t *Taxonomy) JargonTerms() []string {
	out := make([]string, 0, len(t.jargon))
	for term := range t.jargon {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

// ExpandMeta returns the member categories of an umbrella term.
func (t *Taxonomy) ExpandMeta(term string) ([]string, bool) {
	cats, ok := t.meta[strings.ToLower(term)]
	return cats, ok
}

// Correlation returns the heuristic category/descriptor hints for a process.
func (t *Taxonomy) Correlation(process string) (ProcessCorrelation, bool) {
	c, ok := t.correlations[strings.ToLower(process)]
	return c, ok
}

// CorrelatedNotes expands a process correlation into a flat note list:
// the descriptors plus every note of each boosted category.
func (t *Taxonomy) CorrelatedNotes(process string) []string {
	c, ok := t.correlations[strings.ToLower(process)]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var notes []string
	for _, d := range c.Descriptors {
		if !seen[d] {
			seen[d] = true
			notes = append(notes, d)
		}
	}
	for _, cat := range c.Categories {
		for _, n := range t.categories[cat] {
			if !seen[n] {
				seen[n] = true
				notes = append(notes, n)
			}
		}
	}
	return notes
}

// Phrases returns the multi-word phrase table for the tokenizer, longest
// phrases first.
func (t *Taxonomy) Phrases() [][]string {
	return t.phrases
}
