// Package embedding turns request and document text into vectors for
// similarity search against the schema index.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/schemascout/schemascout/internal/config"
	scerrors "github.com/schemascout/schemascout/internal/errors"
)

// Provider defines the interface for embedding providers
type Provider interface {
	// GenerateEmbedding generates an embedding for the given text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// GetName returns the provider name for identification
	GetName() string
}

// HTTPProvider generates embeddings through an Ollama-compatible HTTP API.
type HTTPProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewHTTPProvider creates a provider from embedding configuration.
func NewHTTPProvider(cfg config.EmbeddingConfig) (*HTTPProvider, error) {
	if cfg.BaseURL == "" {
		return nil, scerrors.New(scerrors.ErrTypeConfig, "embedding base URL is required")
	}

	if cfg.Model == "" {
		return nil, scerrors.New(scerrors.ErrTypeConfig, "embedding model is required")
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		timeout = 30 * time.Second
	}

	return &HTTPProvider{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// GenerateEmbedding requests a vector for the given text.
func (p *HTTPProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{
		Model:  p.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	url := p.baseURL + "/api/embeddings"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrTypeBackend, "embedding request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrTypeBackend, "failed to read embedding response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, scerrors.Newf(scerrors.ErrTypeBackend,
			"embedding API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result embeddingResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrTypeBackend, "failed to parse embedding response")
	}

	if len(result.Embedding) == 0 {
		return nil, scerrors.New(scerrors.ErrTypeBackend, "embedding API returned an empty vector")
	}

	return result.Embedding, nil
}

// GetName returns the provider name for identification
func (p *HTTPProvider) GetName() string {
	return "ollama:" + p.model
}
