package llm

import (
	"context"
	"errors"
	"time"

	scerrors "github.com/schemascout/schemascout/internal/errors"
	"github.com/schemascout/schemascout/internal/logging"
)

// Manager handles multiple LLM providers with retry and fallback
type Manager struct {
	providers map[string]Service
	config    ManagerConfig
}

// ManagerConfig configures the LLM manager behavior
type ManagerConfig struct {
	DefaultProvider   string        `json:"default_provider"`
	FallbackProviders []string      `json:"fallback_providers"`
	RetryAttempts     int           `json:"retry_attempts"`
	RetryDelay        time.Duration `json:"retry_delay"`
	Timeout           time.Duration `json:"timeout"`
}

// modelAliases maps backend tier names to provider model identifiers. An
// unlisted name passes through unchanged.
var modelAliases = map[string]string{
	"claude-haiku":  "claude-3-haiku-20240307",
	"claude-sonnet": "claude-3-5-sonnet-20241022",
	"claude-opus":   "claude-3-opus-20240229",
}

// NewManager creates a new LLM manager with the given configuration
func NewManager(config ManagerConfig) *Manager {
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}

	return &Manager{
		providers: make(map[string]Service),
		config:    config,
	}
}

// RegisterProvider registers a new LLM provider
func (m *Manager) RegisterProvider(name string, service Service) error {
	if name == "" {
		return errors.New("provider name cannot be empty")
	}

	if service == nil {
		return errors.New("service cannot be nil")
	}

	m.providers[name] = service

	return nil
}

// ResolveModel translates a backend tier name to the provider model ID.
func ResolveModel(backend string) string {
	if model, ok := modelAliases[backend]; ok {
		return model
	}

	return backend
}

// Generate runs the prompt through the default provider, then the fallback
// chain, retrying each provider up to the configured attempt count.
func (m *Manager) Generate(
	ctx context.Context,
	backend string,
	prompt string,
) (*GenerateResponse, error) {
	if m.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.Timeout)

		defer cancel()
	}

	model := ResolveModel(backend)

	var lastErr error

	for _, name := range m.providerChain() {
		provider, exists := m.providers[name]
		if !exists {
			continue
		}

		response, err := m.tryProvider(ctx, provider, model, prompt)
		if err == nil {
			return response, nil
		}

		logging.Warnf("provider %s failed: %v", name, err)

		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	if lastErr == nil {
		return nil, scerrors.New(scerrors.ErrTypeConfig, "no LLM providers registered")
	}

	return nil, scerrors.Wrap(lastErr, scerrors.ErrTypeBackend, "all LLM providers failed")
}

// providerChain returns the default provider followed by the fallbacks,
// without duplicates.
func (m *Manager) providerChain() []string {
	var chain []string

	seen := make(map[string]bool)

	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true

			chain = append(chain, name)
		}
	}

	add(m.config.DefaultProvider)

	for _, name := range m.config.FallbackProviders {
		add(name)
	}

	return chain
}

// tryProvider retries a single provider with a fixed delay between attempts.
func (m *Manager) tryProvider(
	ctx context.Context,
	provider Service,
	model string,
	prompt string,
) (*GenerateResponse, error) {
	var lastErr error

	for attempt := 0; attempt < m.config.RetryAttempts; attempt++ {
		if attempt > 0 && m.config.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(m.config.RetryDelay):
			}
		}

		response, err := provider.Generate(ctx, model, prompt)
		if err == nil {
			return response, nil
		}

		lastErr = err
	}

	return nil, lastErr
}
