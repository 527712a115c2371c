package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupEmbeddingProviderForwardsRetryAttempts(t *testing.T) {
	// Ingestion commands set RetryAttempts; the provider must actually use
	// it, so a transiently failing endpoint still yields an embedding.
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) <= 2 {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","model":"text-embedding-3-small","data":[{"object":"embedding","index":0,"embedding":[1,0,0]}]}`)
	}))
	defer srv.Close()

	config := EmbeddingConfig{
		Provider:       "openai",
		OpenAIAPIKey:   "test-key",
		OpenAIEndpoint: srv.URL + "/v1",
		RetryAttempts:  3,
	}

	provider, err := SetupEmbeddingProvider(context.Background(), config, log.New(io.Discard))
	require.NoError(t, err)

	embedding, err := provider.GenerateEmbedding(context.Background(), "blueberry")
	require.NoError(t, err)
	assert.NotEmpty(t, embedding)
	assert.EqualValues(t, 3, requests.Load())
}

func TestSetupEmbeddingProviderDefaultsToSingleAttempt(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	config := EmbeddingConfig{
		Provider:       "openai",
		OpenAIAPIKey:   "test-key",
		OpenAIEndpoint: srv.URL + "/v1",
	}

	provider, err := SetupEmbeddingProvider(context.Background(), config, log.New(io.Discard))
	require.NoError(t, err)

	_, err = provider.GenerateEmbedding(context.Background(), "blueberry")
	require.Error(t, err)
	assert.EqualValues(t, 1, requests.Load(), "the query path must not retry")
}

func TestSetupEmbeddingProviderUnknownProvider(t *testing.T) {
	_, err := SetupEmbeddingProvider(context.Background(), EmbeddingConfig{Provider: "mystery"}, log.New(io.Discard))
	assert.Error(t, err)
}
