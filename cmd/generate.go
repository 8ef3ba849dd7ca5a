package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemascout/schemascout/internal/assistant"
	"github.com/schemascout/schemascout/internal/errors"
	"github.com/schemascout/schemascout/internal/logging"
	"github.com/schemascout/schemascout/internal/validate"
)

var (
	generateModel   string
	generateShowSQL bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <request>",
	Short: "Generate a validated Oracle SQL statement from a natural language request",
	Long: `Generate an Oracle SQL statement from a natural language request. The request
is routed to a backend tier based on its complexity, grounded in schema
documents retrieved from the vector index, and the generated statement is
validated against the retrieved schema before being accepted.

Examples:
  schemascout generate "show me all unpaid invoices"
  schemascout generate --model claude-opus "correlate supplier spend with payment terms"`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateModel, "model", "",
		"Backend tier to use (claude-haiku, claude-sonnet, claude-opus); overrides routing")
	generateCmd.Flags().BoolVar(&generateShowSQL, "sql-only", false,
		"Print only the generated SQL statement")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	request := strings.TrimSpace(args[0])
	if len(request) < 3 {
		return errors.New(errors.ErrTypeValidation,
			"request must be at least 3 characters long")
	}

	retriever, err := initializeRetriever()
	if err != nil {
		return err
	}

	manager, err := initializeLLMManager()
	if err != nil {
		return err
	}

	generator := assistant.NewGenerator(
		manager,
		retriever,
		validate.NewService(retriever),
		cfg.Retrieval.GenerationK,
	)

	var outcome assistant.Outcome

	err = logging.TimedOperation("generate", func() error {
		var genErr error

		outcome, genErr = generator.Generate(ctx, request, assistant.Options{
			ModelPreference:   generateModel,
			AvailableBackends: cfg.LLM.Backends,
		})

		return genErr
	})
	if err != nil {
		return err
	}

	if generateShowSQL {
		fmt.Println(outcome.SQL)

		if !outcome.Valid {
			return errors.New(errors.ErrTypeValidation, outcome.Message)
		}

		return nil
	}

	fmt.Printf("Backend: %s (%s)\n", outcome.Selection.Backend, outcome.Selection.Reasoning)
	fmt.Printf("Model: %s\n", outcome.Model)

	if outcome.Retried {
		fmt.Println("Note: first attempt referenced unknown schema objects; regenerated once")
	}

	fmt.Printf("\n%s\n\n", outcome.SQL)

	if outcome.Valid {
		fmt.Printf("Validation: passed (%.2fs)\n", outcome.Elapsed.Seconds())
		return nil
	}

	fmt.Printf("Validation: FAILED (%.2fs)\n%s\n", outcome.Elapsed.Seconds(), outcome.Message)

	return errors.New(errors.ErrTypeValidation, "generated statement failed schema validation")
}
