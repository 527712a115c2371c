package embeddings

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/philippgille/chromem-go"
)

// NoteHit is one nearest-neighbor result from the note index.
type NoteHit struct {
	Note       string
	Category   string
	Similarity float32
}

// NoteIndex is a persistent embedding index with one document per distinct
// catalog tasting note. It is built offline by the note-embeddings tool and
// read by the vector candidate stage.
type NoteIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	logger     *log.Logger
}

// NewNoteIndex opens (or creates) the note index under dataDir.
func NewNoteIndex(dataDir string, logger *log.Logger) (*NoteIndex, error) {
	dbPath := filepath.Join(dataDir, "note-index")

	db, err := chromem.NewPersistentDB(dbPath, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open note index: %w", err)
	}

	collection, err := db.GetOrCreateCollection("notes", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open notes collection: %w", err)
	}

	logger.Info("Opened note embedding index",
		"path", dbPath,
		"note_count", collection.Count())

	return &NoteIndex{
		db:         db,
		collection: collection,
		logger:     logger,
	}, nil
}

// Upsert stores the embedding for a note, replacing any previous one. The
// note's flavor category, when known, is kept as metadata.
func (x *NoteIndex) Upsert(ctx context.Context, note, category string, embedding []float32) error {
	metadata := map[string]string{}
	if category != "" {
		metadata["category"] = category
	}

	doc, err := chromem.NewDocument(ctx, note, metadata, embedding, note, nil)
	if err != nil {
		return fmt.Errorf("failed to create note document: %w", err)
	}
	if err := x.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to store note embedding: %w", err)
	}

	x.logger.Debug("Stored note embedding", "note", note, "category", category)
	return nil
}

// Has reports whether an embedding exists for the note.
func (x *NoteIndex) Has(ctx context.Context, note string) bool {
	_, err := x.collection.GetByID(ctx, note)
	return err == nil
}

// Count returns the number of embedded notes.
func (x *NoteIndex) Count() int {
	return x.collection.Count()
}

// Query returns up to limit notes nearest to the embedding, most similar
// first with note ascending on ties.
func (x *NoteIndex) Query(ctx context.Context, embedding []float32, limit int) ([]NoteHit, error) {
	count := x.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > count {
		limit = count
	}

	results, err := x.collection.QueryEmbedding(ctx, embedding, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query note index: %w", err)
	}

	hits := make([]NoteHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, NoteHit{
			Note:       r.Content,
			Category:   r.Metadata["category"],
			Similarity: r.Similarity,
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Note < hits[j].Note
	})
	return hits, nil
}

// Remove deletes a note's embedding from the index.
func (x *NoteIndex) Remove(ctx context.Context, note string) error {
	return x.collection.Delete(ctx, nil, nil, note)
}
