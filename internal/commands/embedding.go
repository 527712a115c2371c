package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/roastmatch/coffee-search/internal/embeddings"
)

// SetupEmbeddingProvider initializes and returns an embedding provider based
// on the config. The search path tolerates a nil provider, so callers serving
// queries should treat a missing credential as degradation rather than fatal;
// ingestion callers should treat the error as fatal.
func SetupEmbeddingProvider(ctx context.Context, config EmbeddingConfig, logger *log.Logger) (embeddings.Provider, error) {
	attempts := config.RetryAttempts
	if attempts == 0 {
		attempts = 1
	}

	switch config.Provider {
	case "gemini":
		if config.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini api key is required when using Gemini embeddings")
		}

		geminiConfig := embeddings.NewGeminiConfig().
			WithAPIKey(config.GeminiAPIKey).
			WithLogger(logger).
			WithRetryAttempts(attempts)
		if config.GeminiModel != "" {
			geminiConfig = geminiConfig.WithModelName(config.GeminiModel)
		}

		provider, err := embeddings.NewGeminiProvider(ctx, geminiConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini embedding provider: %w", err)
		}

		logger.Info("Using Gemini API for embeddings", "model", provider.ModelName())
		return provider, nil

	case "openai":
		if config.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai api key is required when using OpenAI embeddings")
		}

		openaiConfig := embeddings.NewOpenAIConfig().
			WithAPIKey(config.OpenAIAPIKey).
			WithLogger(logger).
			WithRetryAttempts(attempts)
		if config.OpenAIModel != "" {
			openaiConfig = openaiConfig.WithModelName(config.OpenAIModel)
		}
		if config.OpenAIEndpoint != "" {
			openaiConfig = openaiConfig.WithEndpoint(config.OpenAIEndpoint)
		}

		provider, err := embeddings.NewOpenAIProvider(openaiConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI embedding provider: %w", err)
		}

		logger.Info("Using OpenAI-compatible API for embeddings", "model", provider.ModelName())
		return provider, nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", config.Provider)
	}
}

// OptionalEmbeddingProvider builds a provider if credentials allow, returning
// nil (not an error) otherwise. Used by the query-serving commands where the
// vector candidate stage is best-effort.
func OptionalEmbeddingProvider(ctx context.Context, config EmbeddingConfig, logger *log.Logger) embeddings.Provider {
	provider, err := SetupEmbeddingProvider(ctx, config, logger)
	if err != nil {
		logger.Warn("Embedding provider unavailable, vector candidate stage disabled", "error", err)
		return nil
	}
	return provider
}

// CloseEmbeddingProvider attempts to close the embedding provider if it implements Close
func CloseEmbeddingProvider(provider embeddings.Provider, logger *log.Logger) {
	if closer, ok := provider.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("Failed to close embedding provider", "error", err)
		}
	}
}
