// Package embeddings provides text embedding generation (OpenAI-compatible
// and Gemini backends) and the persistent per-note embedding index used by
// the vector candidate stage.
package embeddings

import "context"

// Provider generates embeddings from text.
type Provider interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}
