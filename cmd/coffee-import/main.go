package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"github.com/roastmatch/coffee-search/internal/catalog"
	"github.com/roastmatch/coffee-search/internal/commands"
	"github.com/roastmatch/coffee-search/internal/types"
)

type CLI struct {
	commands.CommonConfig

	File        string `arg:"" help:"Path to a catalog JSON snapshot (array of coffee objects)" type:"existingfile"`
	Concurrency int    `help:"Number of concurrent upserts" default:"10"`
}

func (c *CLI) Run() error {
	logger := commands.SetupLogger(c.CommonConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	var coffees []types.Coffee
	if err := json.Unmarshal(data, &coffees); err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}

	store, err := catalog.New(c.DataDir, logger)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer store.Close()

	logger.Info("Importing catalog snapshot", "file", c.File, "coffees", len(coffees))
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Concurrency)
	for _, coffee := range coffees {
		g.Go(func() error {
			if coffee.ID == "" {
				return fmt.Errorf("coffee %q has no id", coffee.Name)
			}
			return store.Upsert(gctx, coffee)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	total, err := store.Count(ctx)
	if err != nil {
		return err
	}

	logger.Info("Import completed",
		"imported", len(coffees),
		"total", total,
		"duration", time.Since(start))
	fmt.Printf("Imported %d coffees (%d total in catalog)\n", len(coffees), total)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("coffee-import"),
		kong.Description("Load a catalog JSON snapshot into the local database"),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
