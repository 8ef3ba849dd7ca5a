package cmd

import (
	"time"

	"github.com/schemascout/schemascout/internal/cache"
	"github.com/schemascout/schemascout/internal/candidates"
	"github.com/schemascout/schemascout/internal/embedding"
	"github.com/schemascout/schemascout/internal/errors"
	"github.com/schemascout/schemascout/internal/llm"
	"github.com/schemascout/schemascout/internal/logging"
	"github.com/schemascout/schemascout/internal/retrieval"
	"github.com/schemascout/schemascout/internal/vectorindex"
)

// initializeRetriever wires the embedding provider, optional vector cache,
// index client, and candidate extractor into a retriever.
func initializeRetriever() (*retrieval.Retriever, error) {
	provider, err := embedding.NewHTTPProvider(cfg.Embedding)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeConfig,
			"failed to initialize embedding provider")
	}

	var vectorCache embedding.VectorCache

	if cfg.Cache.Enabled {
		cleanupFreq, err := time.ParseDuration(cfg.Cache.CleanupFreq)
		if err != nil {
			cleanupFreq = time.Hour
		}

		fileCache, err := cache.NewFileCache(
			cfg.Cache.Directory,
			cfg.Cache.MaxSizeMB,
			time.Duration(cfg.Cache.TTLHours)*time.Hour,
			cleanupFreq,
		)
		if err != nil {
			logging.Warnf("failed to initialize embedding cache, continuing without: %v", err)
		} else {
			vectorCache = fileCache
		}
	}

	embedder, err := embedding.NewManager(provider, vectorCache)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeConfig,
			"failed to initialize embedding manager")
	}

	index, err := vectorindex.NewClient(cfg.Index)
	if err != nil {
		return nil, err
	}

	extractor := candidates.NewLexicalExtractor(nil, nil)

	return retrieval.NewRetriever(embedder, index, extractor, cfg.Retrieval), nil
}

// initializeLLMManager builds the provider client and wraps it in a manager
// carrying the configured retry policy.
func initializeLLMManager() (*llm.Manager, error) {
	client, err := llm.NewClient(llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLMTimeout(),
	})
	if err != nil {
		return nil, err
	}

	manager := llm.NewManager(llm.ManagerConfig{
		DefaultProvider: cfg.LLM.Provider,
		RetryAttempts:   cfg.LLM.RetryAttempts,
		RetryDelay:      cfg.LLMRetryDelay(),
		Timeout:         cfg.LLMTimeout(),
	})

	if err := manager.RegisterProvider(cfg.LLM.Provider, client); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeConfig,
			"failed to register LLM provider")
	}

	return manager, nil
}
