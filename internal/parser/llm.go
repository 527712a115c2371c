package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"

	"github.com/roastmatch/coffee-search/internal/types"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// LLMConfig holds configuration for the model-assisted parser.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *log.Logger
}

func NewLLMConfig() LLMConfig {
	return LLMConfig{
		BaseURL: openRouterBaseURL,
		Model:   "google/gemini-2.5-flash-preview",
		Timeout: 15 * time.Second,
	}
}

func (c LLMConfig) WithAPIKey(apiKey string) LLMConfig {
	c.APIKey = apiKey
	return c
}
func (c LLMConfig) WithBaseURL(baseURL string) LLMConfig {
	c.BaseURL = baseURL
	return c
}
func (c LLMConfig) WithModel(model string) LLMConfig {
	c.Model = model
	return c
}
func (c LLMConfig) WithLogger(logger *log.Logger) LLMConfig {
	c.Logger = logger
	return c
}

// LLMClient asks a language model to select candidate terms and extract
// structured filters from a raw query. It makes exactly one attempt per
// request: any failure hands the query to the heuristic instead of retrying.
type LLMClient struct {
	config LLMConfig
	client *openai.Client
	logger *log.Logger
}

func NewLLMClient(config LLMConfig) (*LLMClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("llm api key is required")
	}
	if config.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	cfg := openai.DefaultConfig(config.APIKey)
	cfg.BaseURL = config.BaseURL
	return &LLMClient{
		config: config,
		client: openai.NewClientWithConfig(cfg),
		logger: config.Logger,
	}, nil
}

// llmResult is the JSON shape the model is asked to return.
type llmResult struct {
	MappedNotes       []string `json:"mappedNotes"`
	MappedProcesses   []string `json:"mappedProcesses"`
	ExcludeCategories []string `json:"excludeCategories"`
	Filters           struct {
		MaxPrice *float64 `json:"maxPrice"`
		MinPrice *float64 `json:"minPrice"`
		Country  string   `json:"country"`
	} `json:"filters"`
	SemanticQuery string `json:"semanticQuery"`
}

const systemPrompt = `You are a specialty coffee expert helping map barista jargon to specific tasting notes and processes.

Given a search query, select the tasting notes and coffee processes most relevant to it, and extract any explicit filters.

Be inclusive rather than exhaustive: a note that plausibly matches the query's intent should be included even if the query does not name it.

Return ONE JSON object with:
- mappedNotes: array of notes from the available list (max 8)
- mappedProcesses: array of processes from the available list (max 3)
- excludeCategories: flavor categories the query explicitly wants to avoid (usually empty)
- filters: {"maxPrice": number or null, "minPrice": number or null, "country": string or ""}
- semanticQuery: a short plain-language summary of what the searcher wants

Examples:
- "funky" -> {"mappedNotes": ["fermented", "wild", "yeasty", "boozy"], "mappedProcesses": ["natural", "anaerobic"], "excludeCategories": [], "filters": {"maxPrice": null, "minPrice": null, "country": ""}, "semanticQuery": "wild fermented coffees"}
- "berry bomb" -> {"mappedNotes": ["berry", "blueberry", "strawberry", "raspberry", "blackberry", "jammy"], "mappedProcesses": ["natural"], "excludeCategories": [], "filters": {"maxPrice": null, "minPrice": null, "country": ""}, "semanticQuery": "intensely berry-flavored coffees"}
- "clean cup under $25" -> {"mappedNotes": ["tea", "crisp", "bright", "fresh"], "mappedProcesses": ["washed"], "excludeCategories": ["fermented"], "filters": {"maxPrice": 25, "minPrice": null, "country": ""}, "semanticQuery": "clear washed coffees without ferment character"}

Return ONLY valid JSON, no explanation.`

// Parse asks the model to resolve the query against the candidate
// vocabulary. It returns an error on any failure; the caller degrades to the
// heuristic.
func (c *LLMClient) Parse(ctx context.Context, rawQuery string, noteCandidates, processCandidates []string) (types.ParsedQuery, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()

	notesJSON, _ := json.Marshal(noteCandidates)
	processesJSON, _ := json.Marshal(processCandidates)
	userPrompt := fmt.Sprintf("Available tasting notes:\n%s\n\nAvailable processes:\n%s\n\nMap this coffee search query: %q",
		notesJSON, processesJSON, rawQuery)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return types.ParsedQuery{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return types.ParsedQuery{}, fmt.Errorf("no choices in response")
	}

	text := StripFences(resp.Choices[0].Message.Content)
	var result llmResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return types.ParsedQuery{}, fmt.Errorf("invalid JSON in model response: %w", err)
	}

	parsed := types.ParsedQuery{
		MappedNotes:       normalizeTerms(result.MappedNotes, 8),
		MappedProcesses:   normalizeTerms(result.MappedProcesses, 3),
		ExcludeCategories: normalizeTerms(result.ExcludeCategories, 0),
		SemanticQuery:     strings.TrimSpace(result.SemanticQuery),
	}
	if result.Filters.MaxPrice != nil {
		d := decimal.NewFromFloat(*result.Filters.MaxPrice)
		parsed.Filters.MaxPrice = &d
	}
	if result.Filters.MinPrice != nil {
		d := decimal.NewFromFloat(*result.Filters.MinPrice)
		parsed.Filters.MinPrice = &d
	}
	parsed.Filters.Country = strings.TrimSpace(result.Filters.Country)

	c.logger.Debug("Model parsed query",
		"query", rawQuery,
		"notes", len(parsed.MappedNotes),
		"processes", len(parsed.MappedProcesses),
		"duration", time.Since(start))

	return parsed, nil
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, from model output.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 && !strings.HasPrefix(text, "{") {
		// Drop the language tag line ("json", "JSON", ...).
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func normalizeTerms(terms []string, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
