package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

func TestExtractCourseTitle(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid outline URI",
			uri:      "coursemate://courses/Introduction%20to%20Programming/outline",
			expected: "Introduction to Programming",
		},
		{
			name:     "title with colon",
			uri:      OutlineURI("MCP: Build Rich-Context AI Apps"),
			expected: "MCP: Build Rich-Context AI Apps",
		},
		{
			name:     "invalid prefix",
			uri:      "file://courses/MCP/outline",
			expected: "",
		},
		{
			name:     "missing outline suffix",
			uri:      "coursemate://courses/MCP",
			expected: "",
		},
		{
			name:     "bad escape",
			uri:      "coursemate://courses/%zz/outline",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractCourseTitle(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleCoursesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns analytics", func(t *testing.T) {
		mockCatalog := &mockCatalogService{stats: &domain.CourseAnalytics{
			TotalCourses: 1,
			CourseTitles: []string{"Introduction to Programming"},
		}}
		server, err := NewServer(&Ports{Catalog: mockCatalog})
		require.NoError(t, err)

		result, err := server.handleCoursesResource(ctx, makeReadResourceRequest("coursemate://courses"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.JSONEq(t,
			`{"total_courses":1,"course_titles":["Introduction to Programming"]}`,
			result.Contents[0].Text)
	})

	t.Run("empty catalog renders empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Catalog: &mockCatalogService{stats: &domain.CourseAnalytics{}}})
		require.NoError(t, err)

		result, err := server.handleCoursesResource(ctx, makeReadResourceRequest("coursemate://courses"))

		require.NoError(t, err)
		assert.JSONEq(t, `{"total_courses":0,"course_titles":[]}`, result.Contents[0].Text)
	})

	t.Run("returns error on catalog failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Catalog: &mockCatalogService{err: errors.New("store closed")}})
		require.NoError(t, err)

		_, err = server.handleCoursesResource(ctx, makeReadResourceRequest("coursemate://courses"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading catalog")
	})
}

func TestServer_handleOutlineResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns outline", func(t *testing.T) {
		mockCatalog := &mockCatalogService{outline: "Course Title: MCP: Build Rich-Context AI Apps"}
		server, err := NewServer(&Ports{Catalog: mockCatalog})
		require.NoError(t, err)

		uri := OutlineURI("MCP: Build Rich-Context AI Apps")
		result, err := server.handleOutlineResource(ctx, makeReadResourceRequest(uri))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
		assert.Equal(t, "MCP: Build Rich-Context AI Apps", mockCatalog.lastName)
	})

	t.Run("malformed URI is not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Catalog: &mockCatalogService{}})
		require.NoError(t, err)

		_, err = server.handleOutlineResource(ctx, makeReadResourceRequest("coursemate://courses/x"))
		require.Error(t, err)
	})

	t.Run("returns error on outline failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Catalog: &mockCatalogService{err: errors.New("boom")}})
		require.NoError(t, err)

		_, err = server.handleOutlineResource(ctx, makeReadResourceRequest(OutlineURI("MCP")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting course outline")
	})
}
