package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemascout/schemascout/internal/errors"
	"github.com/schemascout/schemascout/internal/logging"
	"github.com/schemascout/schemascout/internal/validate"
)

var validateRequest string

var validateCmd = &cobra.Command{
	Use:   "validate <sql>",
	Short: "Validate an Oracle SQL statement against the live schema",
	Long: `Validate an Oracle SQL statement against schema documents retrieved from the
vector index. Checks structure, rejects data-modifying keywords, detects
malformed identifiers, and verifies that every referenced table and column
exists in the retrieved schema.

Examples:
  schemascout validate "SELECT INVOICE_ID FROM AP_INVOICES_ALL"
  schemascout validate --request "unpaid invoices" "SELECT * FROM AP_INVOICES_ALL WHERE PAYMENT_STATUS_FLAG = 'N'"`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateRequest, "request", "",
		"Original natural language request, used to focus schema retrieval")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sqlText := strings.TrimSpace(args[0])
	if sqlText == "" {
		return errors.New(errors.ErrTypeValidation, "SQL statement cannot be empty")
	}

	request := validateRequest
	if request == "" {
		request = sqlText
	}

	retriever, err := initializeRetriever()
	if err != nil {
		return err
	}

	if logger := logging.GetLogger(); logger != nil {
		logger.Debugf("validating statement (%d chars)", len(sqlText))
	}

	service := validate.NewService(retriever)

	valid, message := service.ValidateStatement(ctx, sqlText, request)
	if valid {
		fmt.Println(message)
		return nil
	}

	fmt.Println(message)

	return errors.New(errors.ErrTypeValidation, "statement failed validation")
}
