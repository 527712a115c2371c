package commands

// CommonConfig contains configuration common to all commands
type CommonConfig struct {
	// DataDir is the path to the data directory
	DataDir string `help:"Path to data directory" default:"./data"`
	// LogLevel is the logging level to use
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"warn" enum:"debug,info,warn,error"`
}

// EmbeddingConfig contains common flag definitions for embedding configuration
type EmbeddingConfig struct {
	// Provider is the embedding provider to use
	Provider string `help:"Embedding provider to use" default:"gemini" enum:"gemini,openai" env:"EMBEDDING_PROVIDER"`
	// GeminiAPIKey is the API key for Gemini
	GeminiAPIKey string `help:"Google Gemini API key" env:"GEMINI_API_KEY"`
	// GeminiModel is the specific Gemini embedding model name
	GeminiModel string `help:"Specific Gemini embedding model name" env:"GEMINI_EMBEDDING_MODEL"`
	// OpenAIAPIKey is the API key for OpenAI-compatible endpoints
	OpenAIAPIKey string `help:"OpenAI API key" env:"OPENAI_API_KEY"`
	// OpenAIModel is the specific OpenAI embedding model name
	OpenAIModel string `help:"Specific OpenAI embedding model name" env:"OPENAI_EMBEDDING_MODEL"`
	// OpenAIEndpoint overrides the OpenAI-compatible endpoint
	OpenAIEndpoint string `help:"OpenAI-compatible endpoint URL" env:"OPENAI_ENDPOINT"`
	// RetryAttempts is set programmatically by ingestion commands. The query
	// path keeps the single-attempt default so a failure falls through to
	// the next resolution tier instead of stalling the request.
	RetryAttempts uint `kong:"-"`
}

// ParserConfig contains common flag definitions for the query-parsing model
type ParserConfig struct {
	// OpenRouterAPIKey is the API key for OpenRouter
	OpenRouterAPIKey string `help:"OpenRouter API key" env:"OPENROUTER_API_KEY"`
	// Model is the model to use for query parsing
	Model string `help:"Model to use for query parsing" env:"QUERY_PARSER_MODEL"`
	// BaseURL overrides the OpenAI-compatible endpoint
	BaseURL string `help:"OpenAI-compatible endpoint URL for query parsing" env:"QUERY_PARSER_BASE_URL"`
}
