package taxonomy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteCategoryRoundTrip(t *testing.T) {
	tax := New()

	for _, note := range tax.AllNotes() {
		cat, ok := tax.CategoryForNote(note)
		require.True(t, ok, "note %q has no category", note)

		found := false
		for _, n := range tax.NotesForCategory(cat) {
			if n == note {
				found = true
				break
			}
		}
		assert.True(t, found, "note %q missing from its own category %q", note, cat)
	}
}

func TestCategoryForNoteUnknown(t *testing.T) {
	tax := New()
	_, ok := tax.CategoryForNote("motor oil")
	assert.False(t, ok)
}

func TestJargonEntriesExpandToRealTerms(t *testing.T) {
	tax := New()

	for _, term := range tax.JargonTerms() {
		entry, ok := tax.ExpandJargon(term)
		require.True(t, ok)

		hasContent := len(entry.Notes) > 0 || len(entry.Categories) > 0 ||
			len(entry.Processes) > 0 || len(entry.ExcludeCategories) > 0
		assert.True(t, hasContent, "jargon %q expands to nothing", term)

		for _, cat := range entry.Categories {
			assert.True(t, tax.IsCategory(cat), "jargon %q references unknown category %q", term, cat)
		}
		for _, cat := range entry.ExcludeCategories {
			assert.True(t, tax.IsCategory(cat), "jargon %q excludes unknown category %q", term, cat)
		}
		for _, proc := range entry.Processes {
			assert.True(t, tax.IsProcess(proc), "jargon %q references unknown process %q", term, proc)
		}
	}
}

func TestCleanCupExcludesFermented(t *testing.T) {
	tax := New()

	entry, ok := tax.ExpandJargon("clean cup")
	require.True(t, ok)
	assert.Contains(t, entry.ExcludeCategories, "fermented")
}

func TestExpandMeta(t *testing.T) {
	tax := New()

	cats, ok := tax.ExpandMeta("fruity")
	require.True(t, ok)
	assert.Contains(t, cats, "berry")
	assert.Contains(t, cats, "citrus")

	_, ok = tax.ExpandMeta("chocolate")
	assert.False(t, ok, "a plain category is not a meta-category")
}

func TestResolveAlias(t *testing.T) {
	tax := New()

	assert.Equal(t, "chocolate", tax.ResolveAlias("chocolatey"))
	assert.Equal(t, "nutty", tax.ResolveAlias("nuts"))
	assert.True(t, tax.HasAlias("tea-like"))
	assert.False(t, tax.HasAlias("chocolate"))
}

func TestCorrelatedNotes(t *testing.T) {
	tax := New()

	notes := tax.CorrelatedNotes("natural")
	if len(notes) == 0 {
		t.Fatal("expected correlated notes for the natural process")
	}

	seen := make(map[string]bool)
	for _, n := range notes {
		if seen[n] {
			t.Fatalf("duplicate correlated note %q", n)
		}
		seen[n] = true
	}

	if notes := tax.CorrelatedNotes("unknown-process"); notes != nil {
		t.Fatalf("expected nil for unknown process, got %v", notes)
	}
}

func TestPhrasesAreMultiWordAndSorted(t *testing.T) {
	tax := New()

	phrases := tax.Phrases()
	require.NotEmpty(t, phrases)

	for i, phrase := range phrases {
		assert.GreaterOrEqual(t, len(phrase), 2, "phrase %v is not multi-word", phrase)
		if i > 0 {
			assert.GreaterOrEqual(t, len(phrases[i-1]), len(phrase), "phrases not sorted longest first")
		}
	}

	// "berry bomb" must be in the table for the tokenizer to see it whole.
	found := false
	for _, phrase := range phrases {
		if strings.Join(phrase, " ") == "berry bomb" {
			found = true
		}
	}
	assert.True(t, found)
}
