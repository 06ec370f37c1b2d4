package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService exposes catalog analytics and direct tool access.
type CatalogService struct {
	index driven.SemanticIndex
}

// NewCatalogService creates a catalog service.
func NewCatalogService(index driven.SemanticIndex) *CatalogService {
	return &CatalogService{index: index}
}

// Analytics returns the number of courses and their titles.
func (s *CatalogService) Analytics(ctx context.Context) (*domain.CourseAnalytics, error) {
	count, err := s.index.CourseCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count courses: %w", err)
	}
	titles, err := s.index.CourseTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	sort.Strings(titles)
	if titles == nil {
		titles = []string{}
	}
	return &domain.CourseAnalytics{
		TotalCourses: count,
		CourseTitles: titles,
	}, nil
}

// Outline renders a course outline through the outline tool.
func (s *CatalogService) Outline(ctx context.Context, title string) (string, error) {
	out, err := NewCourseOutlineTool(s.index).Execute(ctx, map[string]any{"course_title": title})
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

// SearchContent runs a fresh content search tool with the given arguments.
func (s *CatalogService) SearchContent(ctx context.Context, args map[string]any) (domain.ToolOutput, error) {
	return NewCourseSearchTool(s.index).Execute(ctx, args)
}
