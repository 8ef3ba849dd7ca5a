package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemascout/schemascout/internal/config"
	"github.com/schemascout/schemascout/internal/logging"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "schemascout",
	Short: "Generate and validate Oracle SQL grounded in a live schema index",
	Long: `schemascout converts natural language requests into Oracle SQL statements
grounded in schema documents retrieved from a vector index. Generated statements
are validated against the retrieved schema before being accepted, and requests
are routed to a generation backend tier matching their complexity.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		loaded.ExpandAllPaths()
		cfg = loaded

		if err := logging.InitializeLogger(cfg.Logging); err != nil {
			logging.SetupFallbackLogger()
			logging.Warnf("failed to initialize logger, using fallback: %v", err)
		}

		return nil
	},
}

func Execute() error {
	ctx := context.Background()
	return rootCmd.ExecuteContext(ctx)
}
