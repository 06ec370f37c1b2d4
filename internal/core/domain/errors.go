package domain

import "errors"

// Sentinels shared by services and adapters. Adapters wrap them with %w so
// callers can branch with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnsupportedType = errors.New("unsupported type")
	ErrRateLimited     = errors.New("rate limited")

	// ErrToolNameRequired is returned when registering an unnamed tool.
	ErrToolNameRequired = errors.New("tool name required")

	// No model client: questions cannot be answered.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
	// No embedding service: retrieval falls back to keyword search.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
	// The catalog store behind the semantic index failed.
	ErrIndexUnavailable = errors.New("semantic index unavailable")
	// The vector backend (Qdrant) failed or is unreachable.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)

// Unavailable reports whether err means a backing service is down or not
// configured, as opposed to a bad request.
func Unavailable(err error) bool {
	for _, target := range []error{
		ErrLLMUnavailable,
		ErrEmbeddingUnavailable,
		ErrIndexUnavailable,
		ErrVectorIndexUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
