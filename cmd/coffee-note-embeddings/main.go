package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"

	"github.com/roastmatch/coffee-search/internal/catalog"
	"github.com/roastmatch/coffee-search/internal/commands"
	"github.com/roastmatch/coffee-search/internal/taxonomy"
	"github.com/roastmatch/coffee-search/internal/types"
)

type EmbeddingsCLI struct {
	commands.CommonConfig
	commands.EmbeddingConfig
	Update  UpdateCmd  `cmd:"" help:"Embed catalog vocabulary notes that are missing from the index."`
	Coffees CoffeesCmd `cmd:"" help:"Embed whole catalog items for similarity search."`
	Test    TestCmd    `cmd:"" help:"Test embedding generation for a given text input."`
}

type UpdateCmd struct {
	All        bool `help:"Re-embed every note, not just missing ones" default:"false"`
	NoProgress bool `help:"Disable progress bar" default:"false"`
}

type CoffeesCmd struct {
	All        bool `help:"Re-embed every coffee, not just those without an embedding" default:"false"`
	NoProgress bool `help:"Disable progress bar" default:"false"`
}

type TestCmd struct {
	Text string `help:"Text to generate embedding for" required:""`
}

// Ingestion tolerates transient provider errors; the query path does not
// retry because a failure there falls through to the next resolution tier.
const ingestRetryAttempts = 3

func ingestConfig(cli *EmbeddingsCLI) commands.EmbeddingConfig {
	cfg := cli.EmbeddingConfig
	cfg.RetryAttempts = ingestRetryAttempts
	return cfg
}

// Run embeds each vocabulary note and upserts it into the note index. Terms
// come from the live catalog first, topped up with the static taxonomy so the
// vector stage works even before any catalog import.
func (c *UpdateCmd) Run(cli *EmbeddingsCLI) error {
	logger := commands.SetupLogger(cli.CommonConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	provider, err := commands.SetupEmbeddingProvider(ctx, ingestConfig(cli), logger)
	if err != nil {
		logger.Fatal("Failed to initialize embedding provider", "error", err)
		return err
	}
	defer commands.CloseEmbeddingProvider(provider, logger)

	index, err := commands.SetupNoteIndex(cli.DataDir, logger)
	if err != nil {
		logger.Fatal("Failed to open note index", "error", err)
		return err
	}

	store, err := catalog.New(cli.DataDir, logger)
	if err != nil {
		logger.Fatal("Failed to open catalog", "error", err)
		return err
	}
	defer store.Close()

	tax := taxonomy.New()
	notes := collectNotes(ctx, store, tax, logger)

	var pending []noteEntry
	for _, n := range notes {
		if !c.All && index.Has(ctx, n.note) {
			continue
		}
		pending = append(pending, n)
	}

	if len(pending) == 0 {
		logger.Info("Note index is up to date", "indexed", index.Count())
		return nil
	}

	logger.Info("Embedding notes", "pending", len(pending), "total", len(notes))

	var bar *progressbar.ProgressBar
	if !c.NoProgress {
		bar = progressbar.Default(int64(len(pending)), "embedding notes")
	}

	start := time.Now()
	var failed int
	for _, n := range pending {
		embedding, err := provider.GenerateEmbedding(ctx, n.note)
		if err != nil {
			logger.Warn("Failed to embed note", "note", n.note, "error", err)
			failed++
			continue
		}
		if err := index.Upsert(ctx, n.note, n.category, embedding); err != nil {
			logger.Warn("Failed to index note", "note", n.note, "error", err)
			failed++
			continue
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	logger.Info("Note embedding completed",
		"embedded", len(pending)-failed,
		"failed", failed,
		"indexed", index.Count(),
		"duration", time.Since(start))

	if failed > 0 {
		return fmt.Errorf("%d of %d notes failed to embed", failed, len(pending))
	}
	return nil
}

// Run embeds the text blob of each active coffee and stores the vector on
// the catalog row. Similarity search only considers embedded items.
func (c *CoffeesCmd) Run(cli *EmbeddingsCLI) error {
	logger := commands.SetupLogger(cli.CommonConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	provider, err := commands.SetupEmbeddingProvider(ctx, ingestConfig(cli), logger)
	if err != nil {
		logger.Fatal("Failed to initialize embedding provider", "error", err)
		return err
	}
	defer commands.CloseEmbeddingProvider(provider, logger)

	store, err := catalog.New(cli.DataDir, logger)
	if err != nil {
		logger.Fatal("Failed to open catalog", "error", err)
		return err
	}
	defer store.Close()

	coffees, err := store.ListActive(ctx)
	if err != nil {
		logger.Fatal("Failed to list coffees", "error", err)
		return err
	}

	var pending []types.Coffee
	for _, coffee := range coffees {
		if !c.All && len(coffee.Embedding) > 0 {
			continue
		}
		if coffee.EmbeddingText() == "" {
			continue
		}
		pending = append(pending, coffee)
	}

	if len(pending) == 0 {
		logger.Info("All coffees are embedded", "coffees", len(coffees))
		return nil
	}

	logger.Info("Embedding coffees", "pending", len(pending), "total", len(coffees))

	var bar *progressbar.ProgressBar
	if !c.NoProgress {
		bar = progressbar.Default(int64(len(pending)), "embedding coffees")
	}

	start := time.Now()
	var failed int
	for _, coffee := range pending {
		embedding, err := provider.GenerateEmbedding(ctx, coffee.EmbeddingText())
		if err != nil {
			logger.Warn("Failed to embed coffee", "id", coffee.ID, "error", err)
			failed++
			continue
		}
		coffee.Embedding = embedding
		if err := store.Upsert(ctx, coffee); err != nil {
			logger.Warn("Failed to store coffee embedding", "id", coffee.ID, "error", err)
			failed++
			continue
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	logger.Info("Coffee embedding completed",
		"embedded", len(pending)-failed,
		"failed", failed,
		"duration", time.Since(start))

	if failed > 0 {
		return fmt.Errorf("%d of %d coffees failed to embed", failed, len(pending))
	}
	return nil
}

type noteEntry struct {
	note     string
	category string
}

func collectNotes(ctx context.Context, store *catalog.DB, tax *taxonomy.Taxonomy, logger *log.Logger) []noteEntry {
	seen := make(map[string]bool)
	var out []noteEntry

	add := func(note string) {
		if note == "" || seen[note] {
			return
		}
		seen[note] = true
		category, _ := tax.CategoryForNote(note)
		out = append(out, noteEntry{note: note, category: category})
	}

	vocab, err := store.ListVocabulary(ctx)
	if err != nil {
		logger.Warn("Failed to load catalog vocabulary, embedding taxonomy notes only", "error", err)
	}
	for _, n := range vocab.Notes {
		add(n)
	}
	for _, n := range tax.AllNotes() {
		add(n)
	}
	return out
}

func (c *TestCmd) Run(cli *EmbeddingsCLI) error {
	logger := commands.SetupLogger(cli.CommonConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	provider, err := commands.SetupEmbeddingProvider(ctx, cli.EmbeddingConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize embedding provider", "error", err)
		return err
	}
	defer commands.CloseEmbeddingProvider(provider, logger)

	embedding, err := provider.GenerateEmbedding(ctx, c.Text)
	if err != nil {
		logger.Fatal("Failed to generate embedding", "error", err)
		return err
	}

	fmt.Printf("Embedding for: %q\n", c.Text)
	fmt.Printf("dimensions: %d\n", len(embedding))
	return nil
}

func main() {
	var cli EmbeddingsCLI
	ctx := kong.Parse(&cli,
		kong.Name("coffee-note-embeddings"),
		kong.Description("Build and maintain the flavor-note embedding index"),
		kong.UsageOnError(),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
