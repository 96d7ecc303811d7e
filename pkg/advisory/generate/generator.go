package generate

import (
	"context"
	"log"
	"time"

	"content-advisor-be/pkg/advisory"
	"content-advisor-be/pkg/advisory/analysis"
	"content-advisor-be/pkg/llm"
	"content-advisor-be/pkg/store"
)

// Config encapsulates generation parameters.
type Config struct {
	RetryDelay time.Duration
}

// DefaultConfig returns default generation configuration
func DefaultConfig() Config {
	return Config{
		RetryDelay: 500 * time.Millisecond,
	}
}

// Result is the generator's output for one turn.
type Result struct {
	Answer             string
	Citations          []store.EvidenceRef // cited evidence refs, in first-mention order
	SuggestedQuestions []string
	Confidence         string
}

// Generator produces the grounded advisory answer. Prompt assembly is fully
// deterministic for a given AssembledContext.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

// NewGenerator creates a new advisory generator
func NewGenerator(llmProvider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Execute calls the model with the assembled context. Transport failures get
// exactly one retry; a second failure is advisory.GenerationError. An answer
// that comes back empty falls back to a canned reply instead of erroring.
func (g *Generator) Execute(
	ctx context.Context,
	rawQuery string,
	assembled *store.AssembledContext,
	distributions []analysis.DistributionSummary,
	config Config,
) (*Result, error) {

	messages := buildMessages(rawQuery, assembled, distributions)
	persona := personaFor(assembled.Intent.Operation)

	response, err := g.callWithRetry(ctx, messages, persona, config)
	if err != nil {
		return nil, err
	}

	citations := extractCitations(response, assembled.Evidence)
	answer := stripDanglingMarkers(response, len(assembled.Evidence))

	confidence := assembled.Intent.Confidence
	if assembled.InsufficientEvidence {
		confidence = store.ConfidenceLow
	}

	if answer == "" {
		g.logger.Printf("[WARN] Model returned empty answer, using fallback reply")
		answer = fallbackAnswer(assembled)
		citations = nil
		confidence = store.ConfidenceMedium
	}

	return &Result{
		Answer:             answer,
		Citations:          citations,
		SuggestedQuestions: suggestionsFor(assembled),
		Confidence:         confidence,
	}, nil
}

func (g *Generator) callWithRetry(ctx context.Context, messages []llm.Message, persona persona, config Config) (string, error) {
	opts := []llm.Option{
		llm.WithTemperature(persona.temperature),
		llm.WithMaxTokens(persona.maxTokens),
	}

	response, err := g.llmProvider.Chat(ctx, messages, opts...)
	if err == nil {
		return response, nil
	}

	// Provider errors are timeouts or transport-level failures; the contract
	// allows exactly one retry. A cancelled parent context is not retried.
	if ctx.Err() != nil {
		return "", &advisory.GenerationError{Attempts: 1, Err: err}
	}

	g.logger.Printf("[WARN] Generation attempt 1 failed, retrying once: %v", err)
	if config.RetryDelay > 0 {
		select {
		case <-time.After(config.RetryDelay):
		case <-ctx.Done():
			return "", &advisory.GenerationError{Attempts: 1, Err: err}
		}
	}

	response, retryErr := g.llmProvider.Chat(ctx, messages, opts...)
	if retryErr != nil {
		return "", &advisory.GenerationError{Attempts: 2, Err: retryErr}
	}
	return response, nil
}
