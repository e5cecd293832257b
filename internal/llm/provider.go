// Package llm provides text-generation providers used for insights.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when a provider answers with no text.
var ErrEmptyCompletion = errors.New("empty completion")

// Request is a provider-agnostic single-prompt completion request.
type Request struct {
	Prompt      string
	Temperature float32
	MaxTokens   int
	// JSONOnly asks for a JSON-object reply where the provider supports
	// it. Providers without such a mode ignore it.
	JSONOnly bool
}

// Provider generates text from a single user-role prompt.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// Complete returns the raw content of the model's reply.
	Complete(ctx context.Context, req Request) (string, error)
}
