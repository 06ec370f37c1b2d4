package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns formatted results and sources", func(t *testing.T) {
		mockCatalog := &mockCatalogService{
			output: domain.ToolOutput{
				Text: "[Introduction to Programming - Lesson 1]\nVariables hold values.",
				Citations: []domain.Citation{
					{Text: "Introduction to Programming - Lesson 1", Link: "https://example.com/l1"},
				},
			},
		}

		server, err := NewServer(&Ports{Catalog: mockCatalog})
		require.NoError(t, err)

		lesson := 1
		input := SearchInput{Query: "variables", CourseName: "Programming", LessonNumber: &lesson}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Contains(t, output.Text, "Variables hold values.")
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "https://example.com/l1", output.Sources[0].Link)
		assert.Equal(t, map[string]any{
			"query":         "variables",
			"course_name":   "Programming",
			"lesson_number": 1,
		}, mockCatalog.lastArgs)
	})

	t.Run("omits unset filters", func(t *testing.T) {
		mockCatalog := &mockCatalogService{}
		server, err := NewServer(&Ports{Catalog: mockCatalog})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "servers"})

		require.NoError(t, err)
		assert.Empty(t, output.Sources)
		assert.Equal(t, map[string]any{"query": "servers"}, mockCatalog.lastArgs)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		mockCatalog := &mockCatalogService{err: errors.New("search failed")}
		server, err := NewServer(&Ports{Catalog: mockCatalog})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleOutline(t *testing.T) {
	ctx := context.Background()

	mockCatalog := &mockCatalogService{outline: "Course Title: MCP\nLessons:\n  Lesson 0: Introduction"}
	server, err := NewServer(&Ports{Catalog: mockCatalog})
	require.NoError(t, err)

	_, output, err := server.handleOutline(ctx, nil, OutlineInput{CourseTitle: "MCP"})

	require.NoError(t, err)
	assert.Contains(t, output.Outline, "Lesson 0: Introduction")
	assert.Equal(t, "MCP", mockCatalog.lastName)
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with session", func(t *testing.T) {
		mockQuery := &mockQueryService{answer: &domain.Answer{
			Text:      "Lesson 1 covers variables.",
			Citations: []domain.Citation{{Text: "Introduction to Programming - Lesson 1"}},
			SessionID: "session_1",
		}}
		server, err := NewServer(&Ports{Catalog: &mockCatalogService{}, Query: mockQuery})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "What is lesson 1?", SessionID: "session_1"})

		require.NoError(t, err)
		assert.Equal(t, "Lesson 1 covers variables.", output.Answer)
		assert.Equal(t, "session_1", output.SessionID)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "What is lesson 1?", mockQuery.lastReq.Query)
	})

	t.Run("propagates query errors", func(t *testing.T) {
		mockQuery := &mockQueryService{err: domain.ErrLLMUnavailable}
		server, err := NewServer(&Ports{Catalog: &mockCatalogService{}, Query: mockQuery})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "hi"})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}
