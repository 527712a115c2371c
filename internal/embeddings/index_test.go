package embeddings

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestIndex(t *testing.T) *NoteIndex {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "coffee-note-index-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	index, err := NewNoteIndex(tempDir, log.New(io.Discard))
	require.NoError(t, err)
	return index
}

func TestNoteIndexUpsertAndQuery(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "blueberry", "berry", []float32{1, 0, 0}))
	require.NoError(t, index.Upsert(ctx, "jasmine", "floral", []float32{0, 1, 0}))
	require.NoError(t, index.Upsert(ctx, "caramel", "sweet", []float32{0, 0, 1}))

	assert.Equal(t, 3, index.Count())
	assert.True(t, index.Has(ctx, "blueberry"))
	assert.False(t, index.Has(ctx, "motor oil"))

	hits, err := index.Query(ctx, []float32{1, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "blueberry", hits[0].Note)
	assert.Equal(t, "berry", hits[0].Category)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestNoteIndexQueryEmpty(t *testing.T) {
	index := setupTestIndex(t)

	hits, err := index.Query(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Nil(t, hits)
}

func TestNoteIndexQueryLimitClamped(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "blueberry", "berry", []float32{1, 0, 0}))

	// Limit larger than the collection must not error.
	hits, err := index.Query(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestNoteIndexUpsertReplaces(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "blueberry", "berry", []float32{1, 0, 0}))
	require.NoError(t, index.Upsert(ctx, "blueberry", "berry", []float32{0, 1, 0}))
	assert.Equal(t, 1, index.Count())
}

func TestNoteIndexRemove(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "blueberry", "berry", []float32{1, 0, 0}))
	require.NoError(t, index.Remove(ctx, "blueberry"))
	assert.False(t, index.Has(ctx, "blueberry"))
	assert.Equal(t, 0, index.Count())
}
