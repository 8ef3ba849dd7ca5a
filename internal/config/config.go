package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents the application configuration
type Config struct {
	Index     IndexConfig     `json:"index"`
	Embedding EmbeddingConfig `json:"embedding"`
	LLM       LLMConfig       `json:"llm"`
	Retrieval RetrievalConfig `json:"retrieval"`
	Cache     CacheConfig     `json:"cache"`
	Logging   LoggingConfig   `json:"logging"`
}

// IndexConfig represents vector index connection configuration
type IndexConfig struct {
	BaseURL   string `json:"base_url"   env:"INDEX_BASE_URL"`
	APIKey    string `json:"api_key"    env:"INDEX_API_KEY"`
	IndexName string `json:"index_name" env:"INDEX_NAME"       envDefault:"schema-docs"`
	Timeout   string `json:"timeout"    env:"INDEX_TIMEOUT"    envDefault:"30s"`
}

// EmbeddingConfig represents embedding provider configuration
type EmbeddingConfig struct {
	BaseURL string `json:"base_url" env:"EMBEDDING_BASE_URL" envDefault:"http://localhost:11434"`
	Model   string `json:"model"    env:"EMBEDDING_MODEL"    envDefault:"nomic-embed-text"`
	Timeout string `json:"timeout"  env:"EMBEDDING_TIMEOUT"  envDefault:"30s"`
}

// LLMConfig represents generation backend configuration
type LLMConfig struct {
	Provider      string   `json:"provider"       env:"LLM_PROVIDER"       envDefault:"anthropic"`
	APIKey        string   `json:"api_key"        env:"LLM_API_KEY"`
	BaseURL       string   `json:"base_url"       env:"LLM_BASE_URL"`
	Backends      []string `json:"backends"       env:"LLM_BACKENDS"       envSeparator:","`
	RetryAttempts int      `json:"retry_attempts" env:"LLM_RETRY_ATTEMPTS" envDefault:"2"`
	RetryDelay    string   `json:"retry_delay"    env:"LLM_RETRY_DELAY"    envDefault:"2s"`
	Timeout       string   `json:"timeout"        env:"LLM_TIMEOUT"        envDefault:"2m"`
}

// RetrievalConfig represents retrieval engine tuning
type RetrievalConfig struct {
	K                int `json:"k"                  env:"RETRIEVAL_K"                  envDefault:"10"`
	GenerationK      int `json:"generation_k"       env:"RETRIEVAL_GENERATION_K"       envDefault:"150"`
	GroundingK       int `json:"grounding_k"        env:"RETRIEVAL_GROUNDING_K"        envDefault:"50"`
	DirectFetchBatch int `json:"direct_fetch_batch" env:"RETRIEVAL_DIRECT_FETCH_BATCH" envDefault:"100"`
}

// CacheConfig represents embedding cache configuration
type CacheConfig struct {
	Enabled     bool   `json:"enabled"           env:"CACHE_ENABLED"      envDefault:"false"`
	Directory   string `json:"directory"         env:"CACHE_DIR"          envDefault:"~/.cache/schemascout"`
	MaxSizeMB   int    `json:"max_size_mb"       env:"CACHE_MAX_SIZE_MB"  envDefault:"100"`
	TTLHours    int    `json:"ttl_hours"         env:"CACHE_TTL_HOURS"    envDefault:"24"`
	CleanupFreq string `json:"cleanup_frequency" env:"CACHE_CLEANUP_FREQ" envDefault:"1h"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"  env:"LOG_LEVEL"  envDefault:"info"`                             // debug, info, warn, error
	Format string `json:"format" env:"LOG_FORMAT" envDefault:"text"`                             // text, json
	Output string `json:"output" env:"LOG_OUTPUT" envDefault:"stderr"`                           // stdout, stderr, file
	File   string `json:"file"   env:"LOG_FILE"   envDefault:"~/.config/schemascout/logs/app.log"` // log file path when output is file
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	config := &Config{}

	// Load from config file if it exists
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		if err := loadConfigFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Apply environment variable overrides using env library (also sets defaults)
	if err := env.ParseWithOptions(config, env.Options{
		Prefix: "SCHEMASCOUT_",
	}); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadConfigFromFile loads configuration from a JSON file
func loadConfigFromFile(config *Config, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeConfigs(config, &fileConfig)

	return nil
}

// mergeConfigs merges source configuration into target configuration
func mergeConfigs(target, source *Config) {
	var mergeValues func(t, s reflect.Value)
	mergeValues = func(t, s reflect.Value) {
		if t.Kind() != s.Kind() {
			return
		}

		if t.Kind() == reflect.Struct {
			for i := range s.NumField() {
				mergeValues(t.Field(i), s.Field(i))
			}
		} else if s.Kind() == reflect.Bool {
			t.Set(s)
		} else if !s.IsZero() {
			t.Set(s)
		}
	}

	mergeValues(reflect.ValueOf(target).Elem(), reflect.ValueOf(source).Elem())
}

// validateConfig validates the configuration for common errors
func validateConfig(config *Config) error {
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf(
			"invalid log level: %s (must be debug, info, warn, or error)",
			config.Logging.Level,
		)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", config.Logging.Format)
	}

	validLogOutputs := map[string]bool{
		"stdout": true, "stderr": true, "file": true,
	}
	if !validLogOutputs[strings.ToLower(config.Logging.Output)] {
		return fmt.Errorf(
			"invalid log output: %s (must be stdout, stderr, or file)",
			config.Logging.Output,
		)
	}

	for name, value := range map[string]string{
		"index timeout":     config.Index.Timeout,
		"embedding timeout": config.Embedding.Timeout,
		"llm timeout":       config.LLM.Timeout,
		"llm retry delay":   config.LLM.RetryDelay,
		"cache cleanup":     config.Cache.CleanupFreq,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s duration: %s", name, value)
		}
	}

	if config.Retrieval.K <= 0 {
		return fmt.Errorf("retrieval k must be positive: %d", config.Retrieval.K)
	}

	if config.Retrieval.DirectFetchBatch <= 0 {
		return fmt.Errorf(
			"direct fetch batch size must be positive: %d",
			config.Retrieval.DirectFetchBatch,
		)
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config) error {
	configPath := getConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigPath returns the path to the configuration file
func getConfigPath() string {
	if configPath := os.Getenv("SCHEMASCOUT_CONFIG"); configPath != "" {
		return expandPath(configPath)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(homeDir, ".config", "schemascout", "config.json")
}

// expandPath expands ~ to home directory in file paths
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// ExpandAllPaths expands all paths in the configuration
func (c *Config) ExpandAllPaths() {
	c.Cache.Directory = expandPath(c.Cache.Directory)
	c.Logging.File = expandPath(c.Logging.File)
}

// IndexTimeout returns the parsed index call timeout
func (c *Config) IndexTimeout() time.Duration {
	d, err := time.ParseDuration(c.Index.Timeout)
	if err != nil {
		return 30 * time.Second
	}

	return d
}

// LLMTimeout returns the parsed generation call timeout
func (c *Config) LLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 2 * time.Minute
	}

	return d
}

// LLMRetryDelay returns the parsed delay between generation retries
func (c *Config) LLMRetryDelay() time.Duration {
	d, err := time.ParseDuration(c.LLM.RetryDelay)
	if err != nil {
		return 2 * time.Second
	}

	return d
}
