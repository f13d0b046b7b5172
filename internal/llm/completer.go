// Package llm provides the text-completion abstraction the reasoning stages
// call into, implemented against the Anthropic API with bounded retries.
package llm

import (
	"context"
	"fmt"
)

// GenerateRequest describes one completion call.
type GenerateRequest struct {
	// Prompt is the user-role prompt text. Must be non-empty.
	Prompt string
	// System is the optional system prompt.
	System string
	// MaxTokens caps the generated output. Must be positive.
	MaxTokens int64
	// Temperature controls sampling randomness.
	Temperature float64
}

// Validate checks the request constraints shared by all completer backends.
func (r GenerateRequest) Validate() error {
	if r.Prompt == "" {
		return &FatalError{Cause: fmt.Errorf("empty prompt")}
	}
	if r.MaxTokens <= 0 {
		return &FatalError{Cause: fmt.Errorf("max_tokens must be positive, got %d", r.MaxTokens)}
	}
	return nil
}

// Chunk is one element of a streamed completion. Text carries a delta;
// a non-nil Err terminates the stream. Chunks arrive in order and the
// channel is closed when the stream ends.
type Chunk struct {
	Text string
	Err  error
}

// Completer is the abstract text-generation capability consumed by every
// stage. Implementations own their retry and timeout policy.
type Completer interface {
	// Complete returns the full model output for the request.
	Complete(ctx context.Context, req GenerateRequest) (string, error)

	// Stream returns a lazy, finite, single-consumption sequence of chunks.
	// The channel is closed after the final chunk; a chunk with a non-nil
	// Err is always the last one delivered.
	Stream(ctx context.Context, req GenerateRequest) (<-chan Chunk, error)
}
