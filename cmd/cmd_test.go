package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemascout/schemascout/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Index: config.IndexConfig{
			BaseURL:   "http://localhost:9200",
			APIKey:    "secret-key",
			IndexName: "schema-docs",
			Timeout:   "30s",
		},
		Embedding: config.EmbeddingConfig{
			BaseURL: "http://localhost:11434",
			Model:   "nomic-embed-text",
			Timeout: "30s",
		},
		LLM: config.LLMConfig{
			Provider:      "anthropic",
			Backends:      []string{"claude-haiku", "claude-sonnet", "claude-opus"},
			RetryAttempts: 2,
			RetryDelay:    "2s",
			Timeout:       "2m",
		},
		Retrieval: config.RetrievalConfig{
			K:                10,
			GenerationK:      150,
			GroundingK:       50,
			DirectFetchBatch: 100,
		},
		Cache: config.CacheConfig{
			Directory:   "~/.cache/schemascout",
			MaxSizeMB:   100,
			TTLHours:    24,
			CleanupFreq: "1h",
		},
		Logging: config.LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w

	runErr := fn()

	w.Close()

	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)

	return buf.String(), runErr
}

func TestRunConfig(t *testing.T) {
	cfg = testConfig()
	configJSON = false

	output, err := captureStdout(t, func() error {
		return runConfig(nil, nil)
	})
	require.NoError(t, err)

	assert.Contains(t, output, "Active Configuration:")
	assert.Contains(t, output, "Index Name: schema-docs")
	assert.Contains(t, output, "Model: nomic-embed-text")
	assert.Contains(t, output, "Provider: anthropic")
	assert.Contains(t, output, "Backends: claude-haiku, claude-sonnet, claude-opus")
	assert.Contains(t, output, "Generation K: 150")
	assert.Contains(t, output, "Level: info")

	// Secrets are masked
	assert.Contains(t, output, "API Key: ****")
	assert.NotContains(t, output, "secret-key")
}

func TestRunConfigNil(t *testing.T) {
	cfg = nil

	_, err := captureStdout(t, func() error {
		return runConfig(nil, nil)
	})
	assert.Error(t, err)
}

func TestRunAnalyze(t *testing.T) {
	cfg = testConfig()
	analyzeModel = ""

	output, err := captureStdout(t, func() error {
		return runAnalyze(nil, []string{"show me all suppliers"})
	})
	require.NoError(t, err)

	assert.Contains(t, output, "Category: simple")
	assert.Contains(t, output, "Backend: claude-haiku")
	assert.Contains(t, output, "simple_keywords: 1")
}

func TestRunAnalyzePreference(t *testing.T) {
	cfg = testConfig()
	analyzeModel = "claude-opus"

	defer func() { analyzeModel = "" }()

	output, err := captureStdout(t, func() error {
		return runAnalyze(nil, []string{"show me all suppliers"})
	})
	require.NoError(t, err)

	assert.Contains(t, output, "Backend: claude-opus")
	assert.Contains(t, output, "preference overrides")
}

func TestRunAnalyzeEmptyRequest(t *testing.T) {
	cfg = testConfig()

	_, err := captureStdout(t, func() error {
		return runAnalyze(nil, []string{"   "})
	})
	assert.Error(t, err)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "(not set)", maskSecret(""))
	assert.Equal(t, "****", maskSecret("abc123"))
}

func TestStatusMark(t *testing.T) {
	assert.Equal(t, "OK", statusMark(true))
	assert.Equal(t, "FAILED", statusMark(false))
}
