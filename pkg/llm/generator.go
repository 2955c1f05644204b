// Package llm defines the text generation interface the oracle synthesizes
// answers through.
package llm

import (
	"context"
	"errors"
)

// ErrGeneration is returned when the model fails to produce a completion.
// Timeouts and transport failures are wrapped in it so callers can treat
// every synthesis failure uniformly.
var ErrGeneration = errors.New("generation failed")

// Generator produces a completion for a fully compiled prompt.
type Generator interface {
	// Generate returns the model's completion for the prompt. The prompt
	// carries all grounding context; generators hold no conversation state.
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the configured model identifier.
	Model() string

	// Close releases resources held by the generator.
	Close() error
}
