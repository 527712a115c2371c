package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roastmatch/coffee-search/internal/search"
	"github.com/roastmatch/coffee-search/internal/types"
)

type Server struct {
	service *search.Service
	logger  *log.Logger
}

func New(service *search.Service, logger *log.Logger) *Server {
	return &Server{
		service: service,
		logger:  logger,
	}
}

func (s *Server) Run() error {
	mcpServer := server.NewMCPServer(
		"Coffee Search",
		"1.0.0",
	)

	mcpServer.AddTool(mcp.NewTool("search_coffees",
		mcp.WithDescription("Search the coffee catalog using natural language: flavor notes, jargon like 'funky' or 'clean cup', processes, price bounds and origin countries"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query - what you're looking for"),
		),
		mcp.WithString("roaster_id",
			mcp.Description("Restrict results to a single roaster"),
		),
		mcp.WithString("limit",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	), s.searchCoffeesHandler)

	mcpServer.AddTool(mcp.NewTool("similar_coffees",
		mcp.WithDescription("Find coffees similar to a given catalog item by flavor profile"),
		mcp.WithString("coffee_id",
			mcp.Required(),
			mcp.Description("ID of the reference coffee"),
		),
		mcp.WithString("limit",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	), s.similarCoffeesHandler)

	if err := server.ServeStdio(mcpServer); err != nil {
		return err
	}

	return nil
}

func (s *Server) searchCoffeesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, ok := request.Params.Arguments["query"].(string)
	if !ok {
		return nil, errors.New("query must be a string")
	}

	limit, err := intArgument(request, "limit", 10)
	if err != nil {
		return nil, err
	}

	opts := []search.Option{search.WithLimit(limit)}
	if roasterID, _ := request.Params.Arguments["roaster_id"].(string); roasterID != "" {
		opts = append(opts, search.WithRoaster(roasterID))
	}

	response, err := s.service.Search(ctx, query, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to search coffees: %w", err)
	}

	return mcp.NewToolResultText(formatResponse(response)), nil
}

func (s *Server) similarCoffeesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	coffeeID, ok := request.Params.Arguments["coffee_id"].(string)
	if !ok {
		return nil, errors.New("coffee_id must be a string")
	}

	limit, err := intArgument(request, "limit", 10)
	if err != nil {
		return nil, err
	}

	response, err := s.service.Search(ctx, "",
		search.WithCoffeeID(coffeeID),
		search.WithLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to find similar coffees: %w", err)
	}

	return mcp.NewToolResultText(formatResponse(response)), nil
}

func intArgument(request mcp.CallToolRequest, name string, fallback int) (int, error) {
	val, ok := request.Params.Arguments[name]
	if !ok {
		return fallback, nil
	}
	switch v := val.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", name, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number or string", name)
	}
}

func formatResponse(response types.SearchResponse) string {
	if len(response.Results) == 0 {
		return fmt.Sprintf("No coffees found (resolved via %s)\n", response.Debug.Source)
	}

	var b strings.Builder
	for _, result := range response.Results {
		c := result.Coffee
		fmt.Fprintf(&b, "%s (%s) - score %.2f\n", c.Name, c.ID, result.Score)
		fmt.Fprintf(&b, "  Roaster: %s\n", c.RoasterID)
		if len(c.Notes) > 0 {
			fmt.Fprintf(&b, "  Notes: %s\n", strings.Join(c.Notes, ", "))
		}
		if len(c.Process) > 0 {
			fmt.Fprintf(&b, "  Process: %s\n", strings.Join(c.Process, ", "))
		}
		if len(c.Country) > 0 {
			fmt.Fprintf(&b, "  Country: %s\n", strings.Join(c.Country, ", "))
		}
		if len(result.MatchedAttributes) > 0 {
			fmt.Fprintf(&b, "  Matched: %s\n", strings.Join(result.MatchedAttributes, ", "))
		}
		for _, v := range c.Variants {
			fmt.Fprintf(&b, "  %dg: $%s\n", v.Grams, v.PriceUSD.StringFixed(2))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Resolved via %s\n", response.Debug.Source)
	return b.String()
}
