package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemascout/schemascout/internal/errors"
	"github.com/schemascout/schemascout/internal/router"
)

var analyzeModel string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <request>",
	Short: "Show the complexity analysis and backend selection for a request",
	Long: `Score a natural language request's complexity and show which generation
backend tier it would be routed to, without generating anything.

Examples:
  schemascout analyze "list all suppliers"
  schemascout analyze "correlate invoice volume with payment terms over time"`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "",
		"Backend tier preference to include in the selection")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, args []string) error {
	request := strings.TrimSpace(args[0])
	if request == "" {
		return errors.New(errors.ErrTypeValidation, "request cannot be empty")
	}

	selection := router.Select(request, cfg.LLM.Backends, analyzeModel)
	analysis := selection.Analysis

	fmt.Printf("Request: %s\n\n", request)
	fmt.Printf("Complexity score: %.2f\n", analysis.Score)
	fmt.Printf("Category: %s\n", analysis.Category)
	fmt.Printf("Backend: %s\n", selection.Backend)
	fmt.Printf("Reasoning: %s\n", selection.Reasoning)

	fmt.Println("\nIndicators:")

	names := make([]string, 0, len(analysis.Indicators))
	for name := range analysis.Indicators {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("  %s: %d\n", name, analysis.Indicators[name])
	}

	return nil
}
