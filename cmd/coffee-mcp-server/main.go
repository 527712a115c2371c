package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/roastmatch/coffee-search/internal/commands"
	"github.com/roastmatch/coffee-search/internal/mcp"
)

type CLI struct {
	commands.CommonConfig
	commands.EmbeddingConfig
	commands.ParserConfig
}

func (c *CLI) Run() error {
	ctx := context.Background()
	logger := commands.SetupLogger(c.CommonConfig)

	service, store, err := commands.SetupService(ctx, c.CommonConfig, c.EmbeddingConfig, c.ParserConfig, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	logger.Info("Starting MCP server on stdio")
	return mcp.New(service, logger).Run()
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("coffee-mcp-server"),
		kong.Description("Expose coffee search and similarity tools over MCP stdio"),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
