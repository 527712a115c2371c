// Package parser is the slow path of query resolution: a language model
// selects and expands candidate terms and extracts structured filters, and a
// deterministic heuristic takes over on any model failure. The parser always
// produces a best-effort ParsedQuery; it never returns an error.
package parser

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/roastmatch/coffee-search/internal/taxonomy"
	"github.com/roastmatch/coffee-search/internal/types"
)

// Parser resolves queries the taxonomy could not. The LLM client is
// optional; without one every query goes straight to the heuristic.
type Parser struct {
	logger *log.Logger
	tax    *taxonomy.Taxonomy
	llm    *LLMClient
}

// New creates a Parser. llm may be nil.
func New(logger *log.Logger, tax *taxonomy.Taxonomy, llm *LLMClient) *Parser {
	return &Parser{
		logger: logger,
		tax:    tax,
		llm:    llm,
	}
}

// Parse resolves the query using the candidate terms, via the model when one
// is configured and reachable, otherwise via the heuristic. The returned
// source records which tier succeeded.
func (p *Parser) Parse(ctx context.Context, rawQuery string, cands []types.Candidate, vocab types.Vocabulary) (types.ParsedQuery, types.ResolutionSource) {
	noteCandidates, processCandidates := p.splitCandidates(cands, vocab)

	if p.llm != nil {
		parsed, err := p.llm.Parse(ctx, rawQuery, noteCandidates, processCandidates)
		if err == nil {
			return parsed, types.SourceLLM
		}
		p.logger.Warn("Model-assisted parsing failed, using heuristic", "query", rawQuery, "error", err)
	}

	return heuristicParse(rawQuery, noteCandidates, processCandidates), types.SourceFallback
}

// splitCandidates partitions candidate terms into notes and processes using
// the taxonomy and the catalog's process vocabulary.
func (p *Parser) splitCandidates(cands []types.Candidate, vocab types.Vocabulary) (notes, processes []string) {
	isProcess := make(map[string]bool, len(vocab.Processes))
	for _, proc := range vocab.Processes {
		isProcess[proc] = true
	}

	for _, c := range cands {
		if isProcess[c.Term] || p.tax.IsProcess(c.Term) {
			processes = append(processes, c.Term)
		} else {
			notes = append(notes, c.Term)
		}
	}
	return notes, processes
}
