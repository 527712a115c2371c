package embeddings

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

// flakyEmbeddingServer fails the first failures requests with a 500 and then
// serves a fixed embedding.
func flakyEmbeddingServer(t *testing.T, failures int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		if n <= failures {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","model":"text-embedding-3-small","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestProvider(t *testing.T, endpoint string, attempts uint) *OpenAIProvider {
	t.Helper()
	provider, err := NewOpenAIProvider(NewOpenAIConfig().
		WithAPIKey("test-key").
		WithEndpoint(endpoint).
		WithRetryAttempts(attempts).
		WithLogger(log.New(io.Discard)))
	require.NoError(t, err)
	return provider
}

func TestOpenAIGenerateEmbeddingRetriesTransientFailures(t *testing.T) {
	srv, requests := flakyEmbeddingServer(t, 2)
	provider := newTestProvider(t, srv.URL+"/v1", 3)

	embedding, err := provider.GenerateEmbedding(context.Background(), "blueberry")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, embedding)
	assert.EqualValues(t, 3, requests.Load(), "two failed attempts plus the successful one")
}

func TestOpenAIGenerateEmbeddingSingleAttemptFailsFast(t *testing.T) {
	srv, requests := flakyEmbeddingServer(t, 2)
	provider := newTestProvider(t, srv.URL+"/v1", 1)

	_, err := provider.GenerateEmbedding(context.Background(), "blueberry")
	require.Error(t, err)
	assert.EqualValues(t, 1, requests.Load(), "the single-attempt configuration must not retry")
}

func TestOpenAIGenerateEmbeddingExhaustsRetries(t *testing.T) {
	srv, requests := flakyEmbeddingServer(t, 10)
	provider := newTestProvider(t, srv.URL+"/v1", 2)

	_, err := provider.GenerateEmbedding(context.Background(), "blueberry")
	require.Error(t, err)
	assert.EqualValues(t, 2, requests.Load())
}

func TestOpenAIConfigRejectsZeroRetryAttempts(t *testing.T) {
	_, err := NewOpenAIProvider(NewOpenAIConfig().
		WithAPIKey("test-key").
		WithRetryAttempts(0).
		WithLogger(log.New(io.Discard)))
	assert.Error(t, err)
}
