// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// ModelClient sends one request to a tool-calling language model.
//
// Implementations translate domain.ModelRequest into the provider's wire
// format and map the reply back into provider-neutral content blocks.
// Sampling parameters (max tokens, temperature) are adapter configuration.
//
// Implementations include:
//   - Anthropic (Claude)
//   - OpenAI (GPT-4o)
//   - Ollama (local models with tool support)
type ModelClient interface {
	// Call performs a single model invocation.
	// Tools are offered only when req.Tools is non-empty.
	Call(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
