package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for coursemate resources.
	uriScheme = "coursemate://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the catalog summary.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "courses",
		Name:        "courses",
		Description: "Number of courses and their titles",
		MIMEType:    "application/json",
	}, s.handleCoursesResource)

	// Template for course outlines. Titles are path-escaped.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "courses/{title}/outline",
		Name:        "course-outline",
		Description: "Outline of a specific course",
		MIMEType:    "text/plain",
	}, s.handleOutlineResource)
}

// handleCoursesResource returns the catalog analytics.
func (s *Server) handleCoursesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Catalog.Analytics(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	if stats.CourseTitles == nil {
		stats.CourseTitles = []string{}
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling courses: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleOutlineResource returns the outline of one course.
func (s *Server) handleOutlineResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	title := extractCourseTitle(req.Params.URI)
	if title == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	outline, err := s.ports.Catalog.Outline(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("getting course outline: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     outline,
		}},
	}, nil
}

// extractCourseTitle extracts the course title from a URI like coursemate://courses/{title}/outline.
func extractCourseTitle(uri string) string {
	const prefix = uriScheme + "courses/"
	const suffix = "/outline"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	title, err := url.PathUnescape(strings.TrimSuffix(uri, suffix))
	if err != nil {
		return ""
	}
	return title
}

// OutlineURI returns the resource URI for a course outline.
func OutlineURI(title string) string {
	return uriScheme + "courses/" + url.PathEscape(title) + "/outline"
}
