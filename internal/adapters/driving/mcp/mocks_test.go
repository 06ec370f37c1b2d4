package mcp

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	stats    *domain.CourseAnalytics
	outline  string
	output   domain.ToolOutput
	err      error
	lastArgs map[string]any
	lastName string
}

func (m *mockCatalogService) Analytics(_ context.Context) (*domain.CourseAnalytics, error) {
	return m.stats, m.err
}

func (m *mockCatalogService) Outline(_ context.Context, title string) (string, error) {
	m.lastName = title
	return m.outline, m.err
}

func (m *mockCatalogService) SearchContent(_ context.Context, args map[string]any) (domain.ToolOutput, error) {
	m.lastArgs = args
	return m.output, m.err
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer  *domain.Answer
	err     error
	lastReq domain.QueryRequest
}

func (m *mockQueryService) Query(_ context.Context, req domain.QueryRequest) (*domain.Answer, error) {
	m.lastReq = req
	return m.answer, m.err
}
