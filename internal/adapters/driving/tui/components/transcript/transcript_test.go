package transcript

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

func TestNew_EmptyPrompt(t *testing.T) {
	tr := New(nil)

	require.NotNil(t, tr)
	assert.Empty(t, tr.Turns())
	assert.Contains(t, tr.View(), "Ask a question")
}

func TestTranscript_AskShowsPending(t *testing.T) {
	tr := New(nil)
	tr.SetDimensions(80, 20)

	tr.Ask("What is MCP?")

	require.Len(t, tr.Turns(), 1)
	assert.True(t, tr.Turns()[0].Pending)
	assert.Contains(t, tr.View(), "What is MCP?")
	assert.Contains(t, tr.View(), "Thinking...")
}

func TestTranscript_ResolveWithSources(t *testing.T) {
	tr := New(nil)
	tr.SetDimensions(100, 20)
	tr.Ask("What does lesson 1 cover?")

	tr.Resolve(&domain.Answer{
		Text: "Variables and types.",
		Citations: []domain.Citation{
			{Text: "Introduction to Programming - Lesson 1", Link: "https://example.com/l1"},
		},
	}, nil)

	turn := tr.Turns()[0]
	assert.False(t, turn.Pending)
	assert.Equal(t, "Variables and types.", turn.Answer)

	view := tr.View()
	assert.Contains(t, view, "Variables and types.")
	assert.Contains(t, view, "Sources")
	assert.Contains(t, view, "Introduction to Programming - Lesson 1")
	assert.Contains(t, view, "https://example.com/l1")
	assert.NotContains(t, view, "Thinking...")
}

func TestTranscript_ResolveWithError(t *testing.T) {
	tr := New(nil)
	tr.SetDimensions(80, 20)
	tr.Ask("hello")

	tr.Resolve(nil, errors.New("model unavailable"))

	assert.Contains(t, tr.View(), "Error: model unavailable")
}

func TestTranscript_ResolveWithoutTurnsIsNoop(t *testing.T) {
	tr := New(nil)

	tr.Resolve(&domain.Answer{Text: "x"}, nil)

	assert.Empty(t, tr.Turns())
}

func TestTranscript_Clear(t *testing.T) {
	tr := New(nil)
	tr.Ask("one")
	tr.Resolve(&domain.Answer{Text: "1"}, nil)

	tr.Clear()

	assert.Empty(t, tr.Turns())
	assert.Contains(t, tr.View(), "Ask a question")
}
