package llm

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

// Provider defines the interface for LLM providers.
// Providers MUST enforce the OutputSchema so responses parse as JSON.
type Provider interface {
	// Generate sends one structured-output request and returns the raw JSON text
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// GenerationRequest contains all parameters needed for generation
type GenerationRequest struct {
	Model         string
	InputArray    []map[string]any
	ReasoningMode string
	SystemPrompt  string
	// Structured output schema - REQUIRED for reliable JSON parsing
	OutputSchema *OutputSchema
}

// OutputSchema defines the expected JSON output structure
type OutputSchema struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
}

// Usage is the token accounting of one call
type Usage struct {
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
}

// GenerationResponse contains the result from the LLM
type GenerationResponse struct {
	RawOutput string `json:"-"` // JSON text with markdown fences stripped
	Usage     Usage  `json:"usage"`
	Model     string `json:"model"`
}
