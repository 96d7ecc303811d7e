// Package advisory holds the error taxonomy shared by the pipeline stages.
// The stage implementations live in the subpackages (intent, retrieval,
// assemble, generate, session).
package advisory

import "fmt"

// IntentParseError means the raw query could not be turned into a structured
// intent at all. Only an empty or whitespace query produces this; interpreter
// model failures degrade to a semantic intent instead.
type IntentParseError struct {
	Reason string
}

func (e *IntentParseError) Error() string {
	return fmt.Sprintf("intent parse failed: %s", e.Reason)
}

// RetrievalError means both retrieval channels failed and no evidence could
// be gathered.
type RetrievalError struct {
	StructuredErr error
	VectorErr     error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed on both channels: structured: %v; vector: %v", e.StructuredErr, e.VectorErr)
}

func (e *RetrievalError) Unwrap() error {
	// Prefer the structured error for the chain; both are carried as fields.
	if e.StructuredErr != nil {
		return e.StructuredErr
	}
	return e.VectorErr
}

// GenerationError means the advisory model call failed after the single
// retry allowed on timeout or transport failure.
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
