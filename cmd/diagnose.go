package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemascout/schemascout/internal/errors"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Check connectivity to the vector index and embedding provider",
	Long: `Probe the vector index connection, the embedding provider, and the metadata
format of stored schema documents. Reports each check and any issues found.`,
	Args: cobra.NoArgs,
	RunE: runDiagnose,
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	retriever, err := initializeRetriever()
	if err != nil {
		return err
	}

	diagnosis := retriever.Diagnose(ctx)

	fmt.Printf("Index connection:  %s\n", statusMark(diagnosis.ConnectionOK))

	if diagnosis.ConnectionOK {
		fmt.Printf("  Vectors: %d  Dimension: %d\n",
			diagnosis.IndexStats.TotalVectors, diagnosis.IndexStats.Dimension)
	}

	fmt.Printf("Embedding provider: %s\n", statusMark(diagnosis.EmbeddingOK))
	fmt.Printf("Metadata format:   %s (%d sample matches)\n",
		statusMark(diagnosis.MetadataFormatOK), diagnosis.SampleMatches)

	if len(diagnosis.Issues) == 0 {
		fmt.Println("\nAll checks passed.")
		return nil
	}

	fmt.Println("\nIssues:")

	for _, issue := range diagnosis.Issues {
		fmt.Printf("  - %s\n", issue)
	}

	return errors.New(errors.ErrTypeBackend, "diagnostics reported issues")
}

func statusMark(ok bool) string {
	if ok {
		return "OK"
	}

	return "FAILED"
}
