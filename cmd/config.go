package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemascout/schemascout/internal/errors"
)

var configJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the active configuration",
	Long: `Show the current active configuration including all settings from the
configuration file and environment variable overrides.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configJSON, "json", false, "Output configuration as JSON")

	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	if cfg == nil {
		return errors.NewConfigError("failed to load configuration", "")
	}

	if configJSON {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}

		fmt.Println(string(data))

		return nil
	}

	fmt.Println("Active Configuration:")

	fmt.Println("\nIndex:")
	fmt.Printf("  Base URL: %s\n", cfg.Index.BaseURL)
	fmt.Printf("  Index Name: %s\n", cfg.Index.IndexName)
	fmt.Printf("  API Key: %s\n", maskSecret(cfg.Index.APIKey))
	fmt.Printf("  Timeout: %s\n", cfg.Index.Timeout)

	fmt.Println("\nEmbedding:")
	fmt.Printf("  Base URL: %s\n", cfg.Embedding.BaseURL)
	fmt.Printf("  Model: %s\n", cfg.Embedding.Model)
	fmt.Printf("  Timeout: %s\n", cfg.Embedding.Timeout)

	fmt.Println("\nLLM:")
	fmt.Printf("  Provider: %s\n", cfg.LLM.Provider)
	fmt.Printf("  API Key: %s\n", maskSecret(cfg.LLM.APIKey))

	if cfg.LLM.BaseURL != "" {
		fmt.Printf("  Base URL: %s\n", cfg.LLM.BaseURL)
	}

	if len(cfg.LLM.Backends) > 0 {
		fmt.Printf("  Backends: %s\n", strings.Join(cfg.LLM.Backends, ", "))
	}

	fmt.Printf("  Retry Attempts: %d\n", cfg.LLM.RetryAttempts)
	fmt.Printf("  Retry Delay: %s\n", cfg.LLM.RetryDelay)
	fmt.Printf("  Timeout: %s\n", cfg.LLM.Timeout)

	fmt.Println("\nRetrieval:")
	fmt.Printf("  K: %d\n", cfg.Retrieval.K)
	fmt.Printf("  Generation K: %d\n", cfg.Retrieval.GenerationK)
	fmt.Printf("  Grounding K: %d\n", cfg.Retrieval.GroundingK)
	fmt.Printf("  Direct Fetch Batch: %d\n", cfg.Retrieval.DirectFetchBatch)

	fmt.Println("\nCache:")
	fmt.Printf("  Enabled: %t\n", cfg.Cache.Enabled)
	fmt.Printf("  Directory: %s\n", cfg.Cache.Directory)
	fmt.Printf("  Max Size: %d MB\n", cfg.Cache.MaxSizeMB)
	fmt.Printf("  TTL: %d hours\n", cfg.Cache.TTLHours)
	fmt.Printf("  Cleanup Frequency: %s\n", cfg.Cache.CleanupFreq)

	fmt.Println("\nLogging:")
	fmt.Printf("  Level: %s\n", cfg.Logging.Level)
	fmt.Printf("  Format: %s\n", cfg.Logging.Format)
	fmt.Printf("  Output: %s\n", cfg.Logging.Output)

	if cfg.Logging.Output == "file" {
		fmt.Printf("  File: %s\n", cfg.Logging.File)
	}

	return nil
}

func maskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}

	return "****"
}
