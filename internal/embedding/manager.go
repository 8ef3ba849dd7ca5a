package embedding

import (
	"context"
	"errors"
	"strings"

	"github.com/schemascout/schemascout/internal/cache"
	"github.com/schemascout/schemascout/internal/logging"
)

// VectorCache stores embedding vectors between requests.
type VectorCache interface {
	GetVector(ctx context.Context, key string) ([]float32, error)
	SetVector(ctx context.Context, key string, vector []float32) error
}

// Manager wraps a provider with an optional vector cache. A nil cache means
// every call goes to the provider.
type Manager struct {
	provider Provider
	cache    VectorCache
	model    string
}

// NewManager creates a new embedding manager
func NewManager(provider Provider, vectorCache VectorCache) (*Manager, error) {
	if provider == nil {
		return nil, errors.New("embedding provider is required")
	}

	model := provider.GetName()
	if idx := strings.Index(model, ":"); idx >= 0 {
		model = model[idx+1:]
	}

	return &Manager{
		provider: provider,
		cache:    vectorCache,
		model:    model,
	}, nil
}

// GenerateEmbedding returns the vector for text, serving from cache when the
// same text was embedded before with the same model.
func (m *Manager) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	var key string

	if m.cache != nil {
		key = cache.VectorKey(m.model, text)
		if vector, err := m.cache.GetVector(ctx, key); err == nil {
			return vector, nil
		}
	}

	vector, err := m.provider.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	if m.cache != nil {
		if err := m.cache.SetVector(ctx, key, vector); err != nil {
			logging.Warnf("failed to cache embedding vector: %v", err)
		}
	}

	return vector, nil
}

// GetName returns the underlying provider name.
func (m *Manager) GetName() string {
	return m.provider.GetName()
}
