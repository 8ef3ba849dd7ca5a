// Package llm sends generation prompts to language-model backends with
// provider fallback.
package llm

import (
	"context"
	"time"
)

// Provider names
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Service defines the interface for LLM operations
type Service interface {
	// Generate produces a completion for the prompt using the given model.
	Generate(ctx context.Context, model string, prompt string) (*GenerateResponse, error)

	// Configure updates the service configuration
	Configure(config Config) error
}

// Config represents one provider's configuration
type Config struct {
	Provider    string        `json:"provider"`
	APIKey      string        `json:"api_key,omitempty"`
	BaseURL     string        `json:"base_url,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty"`
}

// GenerateResponse is a completion from a backend
type GenerateResponse struct {
	Content    string `json:"content"`
	Model      string `json:"model"`
	TokensUsed int    `json:"tokens_used,omitempty"`
}
