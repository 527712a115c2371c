package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddingTextFieldOrder(t *testing.T) {
	c := Coffee{
		Notes:      []string{"blueberry", "jasmine"},
		Process:    []string{"natural"},
		Protocol:   []string{"espresso"},
		RoastLevel: "light",
		Country:    []string{"Ethiopia"},
		Region:     []string{"Guji"},
		Variety:    []string{"heirloom"},
	}
	assert.Equal(t, "blueberry. jasmine. natural. espresso. light. Ethiopia. Guji. heirloom", c.EmbeddingText())
}

func TestEmbeddingTextSkipsEmptyFields(t *testing.T) {
	c := Coffee{Notes: []string{"peach"}, Country: []string{"Kenya"}}
	assert.Equal(t, "peach. Kenya", c.EmbeddingText())

	empty := Coffee{}
	assert.Equal(t, "", empty.EmbeddingText())
}

func TestHasSemanticTerms(t *testing.T) {
	q := ParsedQuery{}
	assert.False(t, q.HasSemanticTerms())

	q.MappedNotes = []string{"peach"}
	assert.True(t, q.HasSemanticTerms())

	q = ParsedQuery{MappedProcesses: []string{"washed"}}
	assert.True(t, q.HasSemanticTerms())
}
