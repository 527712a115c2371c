package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/roastmatch/coffee-search/internal/commands"
	"github.com/roastmatch/coffee-search/internal/search"
	"github.com/roastmatch/coffee-search/internal/types"
)

type CLI struct {
	commands.CommonConfig
	commands.EmbeddingConfig
	commands.ParserConfig

	Query   string `arg:"" optional:"" help:"Search query - flavor notes, jargon, process, price and origin in plain language"`
	Similar string `help:"Find coffees similar to this coffee ID instead of searching"`
	Roaster string `help:"Restrict results to a single roaster"`
	Limit   int    `help:"Maximum number of results to return" default:"10"`
	JSONOut bool   `name:"json" help:"Print the full response as JSON, including the debug block"`
}

func (c *CLI) Run() error {
	ctx := context.Background()
	logger := commands.SetupLogger(c.CommonConfig)

	service, store, err := commands.SetupService(ctx, c.CommonConfig, c.EmbeddingConfig, c.ParserConfig, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := []search.Option{search.WithLimit(c.Limit)}
	if c.Roaster != "" {
		opts = append(opts, search.WithRoaster(c.Roaster))
	}
	if c.Similar != "" {
		opts = append(opts, search.WithCoffeeID(c.Similar))
	}

	response, err := service.Search(ctx, c.Query, opts...)
	if err != nil {
		return err
	}

	if c.JSONOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	}

	printResponse(response)
	return nil
}

func printResponse(response types.SearchResponse) {
	if len(response.Results) == 0 {
		fmt.Printf("No coffees found (resolved via %s)\n", response.Debug.Source)
		return
	}

	fmt.Printf("Found %d coffees (resolved via %s):\n\n", len(response.Results), response.Debug.Source)
	for _, result := range response.Results {
		coffee := result.Coffee
		fmt.Printf("%s [%s] score %.2f\n", coffee.Name, coffee.ID, result.Score)
		fmt.Printf("  Roaster: %s\n", coffee.RoasterID)
		if len(coffee.Notes) > 0 {
			fmt.Printf("  Notes: %s\n", strings.Join(coffee.Notes, ", "))
		}
		if len(coffee.Process) > 0 {
			fmt.Printf("  Process: %s\n", strings.Join(coffee.Process, ", "))
		}
		if len(coffee.Country) > 0 {
			fmt.Printf("  Country: %s\n", strings.Join(coffee.Country, ", "))
		}
		if len(result.MatchedAttributes) > 0 {
			fmt.Printf("  Matched: %s\n", strings.Join(result.MatchedAttributes, ", "))
		}
		for _, v := range coffee.Variants {
			fmt.Printf("  %dg: $%s\n", v.Grams, v.PriceUSD.StringFixed(2))
		}
		fmt.Println()
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("coffee-search"),
		kong.Description("Search a specialty coffee catalog with natural language"),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
