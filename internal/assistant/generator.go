// Package assistant orchestrates the full request path: route to a backend,
// retrieve schema context, generate a statement, and validate it against the
// live schema, with one bounded retry for hallucination-class failures.
package assistant

import (
	"context"
	"time"

	"github.com/google/uuid"

	scerrors "github.com/schemascout/schemascout/internal/errors"
	"github.com/schemascout/schemascout/internal/llm"
	"github.com/schemascout/schemascout/internal/logging"
	"github.com/schemascout/schemascout/internal/retrieval"
	"github.com/schemascout/schemascout/internal/router"
	"github.com/schemascout/schemascout/internal/schema"
	"github.com/schemascout/schemascout/internal/validate"
)

// TextGenerator produces completions for a backend tier.
type TextGenerator interface {
	Generate(ctx context.Context, backend string, prompt string) (*llm.GenerateResponse, error)
}

// Retriever fetches schema documents for a request.
type Retriever interface {
	Retrieve(ctx context.Context, queryText string, k int) retrieval.Result
}

// Validator checks a candidate statement against the live schema.
type Validator interface {
	ValidateStatement(ctx context.Context, sqlText, originalRequest string) (bool, string)
}

// Options tunes a single generation request.
type Options struct {
	// ModelPreference overrides the router's backend choice when set.
	ModelPreference string

	// AvailableBackends restricts selection; empty means all tiers.
	AvailableBackends []string
}

// Outcome is the result of one generation request.
type Outcome struct {
	SQL       string
	Model     string
	Selection router.Selection
	Valid     bool
	Message   string
	Retried   bool
	Elapsed   time.Duration
	RequestID string
}

// Generator wires the router, retrieval, generation, and validation stages.
type Generator struct {
	generator TextGenerator
	retriever Retriever
	validator Validator
	contextK  int
}

// NewGenerator creates a generator. contextK is the number of schema
// documents retrieved to ground the prompt.
func NewGenerator(
	generator TextGenerator,
	retriever Retriever,
	validator Validator,
	contextK int,
) *Generator {
	if contextK <= 0 {
		contextK = 150
	}

	return &Generator{
		generator: generator,
		retriever: retriever,
		validator: validator,
		contextK:  contextK,
	}
}

// Generate turns a natural-language request into a validated statement.
// Validation failures are reported in the Outcome, not as errors; an error
// return means generation itself was impossible.
func (g *Generator) Generate(ctx context.Context, request string, opts Options) (Outcome, error) {
	start := time.Now()
	requestID := uuid.New().String()

	selection := router.Select(request, opts.AvailableBackends, opts.ModelPreference)

	logging.Infof("[%s] backend %s selected: %s",
		requestID, selection.Backend, selection.Reasoning)

	result := g.retriever.Retrieve(ctx, request, g.contextK)

	var prompt string

	if result.Success && len(result.Docs) > 0 {
		prompt = llm.BuildGroundedPrompt(request, schema.Summarize(result.Docs))

		logging.Debugf("[%s] prompt grounded in %d schema documents", requestID, len(result.Docs))
	} else {
		prompt = llm.BuildBasicPrompt(request)

		logging.Warnf("[%s] schema retrieval produced no documents, using basic prompt", requestID)
	}

	outcome := Outcome{
		Selection: selection,
		RequestID: requestID,
	}

	response, err := g.generator.Generate(ctx, selection.Backend, prompt)
	if err != nil {
		outcome.Elapsed = time.Since(start)

		return outcome, scerrors.Wrap(err, scerrors.ErrTypeBackend, "generation failed")
	}

	outcome.Model = response.Model
	outcome.SQL = llm.ExtractSQL(response.Content)
	outcome.Valid, outcome.Message = g.validator.ValidateStatement(ctx, outcome.SQL, request)

	if !outcome.Valid && validate.IsHallucinationMessage(outcome.Message) {
		logging.Infof("[%s] hallucination-class failure, regenerating once", requestID)

		outcome.Retried = true

		retryPrompt := prompt +
			"\n\nThe previous attempt failed schema validation:\n" + outcome.Message +
			"\n\nGenerate a corrected query using only the listed tables and columns:"

		retryResponse, retryErr := g.generator.Generate(ctx, selection.Backend, retryPrompt)
		if retryErr != nil {
			logging.ErrorWithErr("regeneration failed", retryErr)
		} else {
			outcome.Model = retryResponse.Model
			outcome.SQL = llm.ExtractSQL(retryResponse.Content)
			outcome.Valid, outcome.Message = g.validator.ValidateStatement(
				ctx, outcome.SQL, request)
		}
	}

	outcome.Elapsed = time.Since(start)

	return outcome, nil
}
