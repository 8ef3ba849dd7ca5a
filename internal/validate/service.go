package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/schemascout/schemascout/internal/logging"
	"github.com/schemascout/schemascout/internal/retrieval"
	"github.com/schemascout/schemascout/internal/schema"
)

// Service validates candidate statements against a freshly retrieved schema.
type Service struct {
	retriever *retrieval.Retriever
}

// NewService creates a validation service over the given retriever.
func NewService(retriever *retrieval.Retriever) *Service {
	return &Service{retriever: retriever}
}

// ValidateStatement grounds the statement in the live schema and validates
// it. A schema retrieval failure fails validation outright; the engine never
// validates against a partial or unavailable schema.
func (s *Service) ValidateStatement(
	ctx context.Context,
	sqlText string,
	originalRequest string,
) (bool, string) {
	// Structural failures need no schema; report them before any retrieval.
	if msg := checkStructure(strings.ToUpper(strings.TrimSpace(sqlText))); msg != "" {
		return false, msg
	}

	docs, err := s.retriever.GroundStatement(ctx, sqlText, originalRequest)
	if err != nil {
		logging.ErrorWithErr("schema retrieval failed during validation", err)

		return false, fmt.Sprintf("Schema validation failed: %v", err)
	}

	cols := schema.Assemble(docs)
	verdict := Validate(sqlText, cols)

	if verdict.OK {
		return true, "SQL is valid"
	}

	message := strings.Join(verdict.Errors, "; ")
	if len(verdict.Suggestions) > 0 {
		message += "\n\nSUGGESTIONS:\n" + strings.Join(verdict.Suggestions, "\n")
	}

	return false, message
}

// IsHallucinationMessage reports whether a validation failure message names
// an unknown table or column, the class of failure worth one regeneration.
func IsHallucinationMessage(message string) bool {
	lower := strings.ToLower(message)

	patterns := []string{
		"not found in schema",
		"not found in table",
		"not found in referenced tables",
		"not found in available",
		"table not found",
		"column not found",
		"undefined table alias",
		"invalid table",
		"invalid column",
	}

	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}

	return false
}
