package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Distinct(t *testing.T) {
	all := []error{
		ErrNotFound, ErrInvalidInput, ErrUnsupportedType, ErrRateLimited, ErrToolNameRequired,
		ErrLLMUnavailable, ErrEmbeddingUnavailable, ErrIndexUnavailable, ErrVectorIndexUnavailable,
	}
	seen := map[string]bool{}
	for _, err := range all {
		assert.False(t, seen[err.Error()], err.Error())
		seen[err.Error()] = true
	}
}

func TestUnavailable(t *testing.T) {
	assert.True(t, Unavailable(fmt.Errorf("%w: dial tcp", ErrVectorIndexUnavailable)))
	assert.True(t, Unavailable(errors.Join(errors.New("boom"), ErrLLMUnavailable)))
	assert.False(t, Unavailable(fmt.Errorf("%w: empty query", ErrInvalidInput)))
	assert.False(t, Unavailable(nil))
}

func TestErrors_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("get course %q: %w", "MCP", ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrInvalidInput))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Tool: "search_course_content", Reason: "query is required"}
	assert.Equal(t, "Invalid arguments for tool 'search_course_content': query is required", err.Error())

	var target *ValidationError
	assert.True(t, errors.As(fmt.Errorf("decode: %w", err), &target))
	assert.Equal(t, "search_course_content", target.Tool)
}
