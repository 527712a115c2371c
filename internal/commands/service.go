package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/roastmatch/coffee-search/internal/candidates"
	"github.com/roastmatch/coffee-search/internal/catalog"
	"github.com/roastmatch/coffee-search/internal/embeddings"
	"github.com/roastmatch/coffee-search/internal/parser"
	"github.com/roastmatch/coffee-search/internal/search"
	"github.com/roastmatch/coffee-search/internal/taxonomy"
)

// SetupLogger creates the standard logger for a command.
func SetupLogger(config CommonConfig) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		level = log.WarnLevel
	}
	logger.SetLevel(level)
	return logger
}

// SetupNoteIndex opens the note-embedding index under the data directory.
func SetupNoteIndex(dataDir string, logger *log.Logger) (*embeddings.NoteIndex, error) {
	index, err := embeddings.NewNoteIndex(dataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open note index: %w", err)
	}
	return index, nil
}

// SetupService assembles the full search stack: SQLite catalog, static
// taxonomy, hybrid candidate finder and the tiered query parser. Embedding
// and model credentials are optional; without them the service still answers
// every query through the taxonomy and heuristic tiers.
func SetupService(
	ctx context.Context,
	common CommonConfig,
	embedding EmbeddingConfig,
	parserCfg ParserConfig,
	logger *log.Logger,
) (*search.Service, *catalog.DB, error) {
	store, err := catalog.New(common.DataDir, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	tax := taxonomy.New()

	provider := OptionalEmbeddingProvider(ctx, embedding, logger)
	var index *embeddings.NoteIndex
	if provider != nil {
		index, err = SetupNoteIndex(common.DataDir, logger)
		if err != nil {
			logger.Warn("Note index unavailable, vector candidate stage disabled", "error", err)
			index = nil
		}
	}

	var finder *candidates.Finder
	if index != nil {
		finder = candidates.NewFinder(logger, provider, index)
	} else {
		finder = candidates.NewFinder(logger, nil, nil)
	}

	var llm *parser.LLMClient
	if parserCfg.OpenRouterAPIKey != "" {
		llmConfig := parser.NewLLMConfig().
			WithAPIKey(parserCfg.OpenRouterAPIKey).
			WithLogger(logger)
		if parserCfg.Model != "" {
			llmConfig = llmConfig.WithModel(parserCfg.Model)
		}
		if parserCfg.BaseURL != "" {
			llmConfig = llmConfig.WithBaseURL(parserCfg.BaseURL)
		}
		llm, err = parser.NewLLMClient(llmConfig)
		if err != nil {
			logger.Warn("Query-parsing model unavailable, using heuristic fallback", "error", err)
			llm = nil
		}
	} else {
		logger.Info("No OpenRouter API key, query parsing uses heuristic fallback only")
	}

	service := search.NewService(logger, store, tax, finder, parser.New(logger, tax, llm))
	return service, store, nil
}
