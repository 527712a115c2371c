package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PriceVariant is one purchasable size of a coffee.
type PriceVariant struct {
	Grams    int             `json:"grams"`
	PriceUSD decimal.Decimal `json:"price_usd"`
}

// Coffee represents a catalog item. The catalog is owned and mutated by the
// ingestion pipeline; the search core only ever reads it.
type Coffee struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	RoasterID  string         `json:"roaster_id"`
	Notes      []string       `json:"notes"`
	Process    []string       `json:"process,omitempty"`
	Protocol   []string       `json:"protocol,omitempty"`
	Country    []string       `json:"country,omitempty"`
	Region     []string       `json:"region,omitempty"`
	Variety    []string       `json:"variety,omitempty"`
	RoastLevel string         `json:"roast_level,omitempty"`
	Available  bool           `json:"available"`
	Skip       bool           `json:"skip,omitempty"`
	Variants   []PriceVariant `json:"variants,omitempty"`
	Embedding  []float32      `json:"embedding,omitempty"`
}

// Vocabulary is the distinct, lower-cased, sorted note and process terms
// present on active catalog items.
type Vocabulary struct {
	Notes     []string `json:"notes"`
	Processes []string `json:"processes"`
}

// EmbeddingText builds the text blob used when embedding a whole coffee.
// Notes and process come first for slight weighting priority, no field
// prefixes.
func (c *Coffee) EmbeddingText() string {
	var parts []string
	if len(c.Notes) > 0 {
		parts = append(parts, strings.Join(c.Notes, ". "))
	}
	if len(c.Process) > 0 {
		parts = append(parts, strings.Join(c.Process, ". "))
	}
	if len(c.Protocol) > 0 {
		parts = append(parts, strings.Join(c.Protocol, ". "))
	}
	if c.RoastLevel != "" {
		parts = append(parts, c.RoastLevel)
	}
	if len(c.Country) > 0 {
		parts = append(parts, strings.Join(c.Country, ". "))
	}
	if len(c.Region) > 0 {
		parts = append(parts, strings.Join(c.Region, ". "))
	}
	if len(c.Variety) > 0 {
		parts = append(parts, strings.Join(c.Variety, ". "))
	}
	return strings.Join(parts, ". ")
}
