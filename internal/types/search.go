package types

import "github.com/shopspring/decimal"

// Confidence is the qualitative strength of a taxonomy match. It gates
// whether the fallback tiers run at all.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	default:
		return "none"
	}
}

// QueryFilters are the hard filters extracted from a query.
type QueryFilters struct {
	MaxPrice  *decimal.Decimal `json:"max_price,omitempty"`
	MinPrice  *decimal.Decimal `json:"min_price,omitempty"`
	Country   string           `json:"country,omitempty"`
	RoasterID string           `json:"roaster_id,omitempty"`
}

// ParsedQuery is the fully resolved form of a search query. It is built once
// per request and discarded afterwards; nothing in the core caches it.
type ParsedQuery struct {
	Filters           QueryFilters `json:"filters"`
	MappedNotes       []string     `json:"mapped_notes"`
	MappedProcesses   []string     `json:"mapped_processes"`
	ExcludeCategories []string     `json:"exclude_categories,omitempty"`
	SemanticQuery     string       `json:"semantic_query,omitempty"`
}

// HasSemanticTerms reports whether the query asked for any note or process
// matching. When true, items with zero matched attributes are filtered out
// rather than merely ranked last.
func (q *ParsedQuery) HasSemanticTerms() bool {
	return len(q.MappedNotes) > 0 || len(q.MappedProcesses) > 0
}

// CandidateSource records which stage proposed a candidate term.
type CandidateSource string

const (
	CandidateSourceFuzzy  CandidateSource = "fuzzy"
	CandidateSourceVector CandidateSource = "vector"
	CandidateSourceLLM    CandidateSource = "llm"
)

// Candidate is a vocabulary term proposed as plausibly relevant to the query,
// tagged with the stage that found it.
type Candidate struct {
	Term   string          `json:"term"`
	Score  float64         `json:"score"`
	Source CandidateSource `json:"source"`
}

// SearchResult is a scored catalog item. Recomputed per request, never
// persisted.
type SearchResult struct {
	Coffee            Coffee   `json:"coffee"`
	MatchedAttributes []string `json:"matched_attributes"`
	Score             float64  `json:"score"`
}

// ResolutionSource identifies which tier of the fallback chain produced the
// ParsedQuery for a request.
type ResolutionSource string

const (
	SourceTaxonomy   ResolutionSource = "taxonomy"
	SourceLLM        ResolutionSource = "llm"
	SourceFallback   ResolutionSource = "fallback"
	SourceSimilarity ResolutionSource = "similarity"
)

// TaxonomyMatch captures what the static taxonomy resolved, for auditing.
type TaxonomyMatch struct {
	Confidence    string   `json:"confidence"`
	MatchedTokens []string `json:"matched_tokens,omitempty"`
}

// SearchDebug is attached to every response so operators can audit which
// tier resolved the request.
type SearchDebug struct {
	Source         ResolutionSource `json:"source"`
	ParsedQuery    ParsedQuery      `json:"parsed_query"`
	CandidateNotes []Candidate      `json:"candidate_notes,omitempty"`
	TaxonomyMatch  *TaxonomyMatch   `json:"taxonomy_match,omitempty"`
}

// SearchResponse is the full result of a search or similarity request.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Debug   SearchDebug    `json:"debug"`
}
