package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// --- Mock implementations ---

type searchCall struct {
	query  string
	filter domain.SearchFilter
}

// mockIndex implements driven.SemanticIndex for testing.
type mockIndex struct {
	mu sync.Mutex

	results   []domain.SearchResults
	searchErr error
	calls     []searchCall

	entries     map[string]*domain.CatalogEntry
	entryErr    error
	lessonLinks map[string]string
	courseLinks map[string]string
}

func newMockIndex() *mockIndex {
	return &mockIndex{
		entries:     make(map[string]*domain.CatalogEntry),
		lessonLinks: make(map[string]string),
		courseLinks: make(map[string]string),
	}
}

// queue adds a result set returned by the next Search call.
// The last queued set is repeated once the queue is exhausted.
func (m *mockIndex) queue(r domain.SearchResults) *mockIndex {
	m.results = append(m.results, r)
	return m
}

func (m *mockIndex) Search(_ context.Context, query string, filter domain.SearchFilter) (domain.SearchResults, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, searchCall{query: query, filter: filter})
	if m.searchErr != nil {
		return domain.SearchResults{}, m.searchErr
	}
	if len(m.results) == 0 {
		return domain.SearchResults{}, nil
	}
	r := m.results[0]
	if len(m.results) > 1 {
		m.results = m.results[1:]
	}
	return r, nil
}

func (m *mockIndex) CatalogEntry(_ context.Context, title string) (*domain.CatalogEntry, error) {
	if m.entryErr != nil {
		return nil, m.entryErr
	}
	e, ok := m.entries[title]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (m *mockIndex) LessonLink(_ context.Context, title string, n int) (string, bool) {
	link, ok := m.lessonLinks[fmt.Sprintf("%s|%d", title, n)]
	return link, ok
}

func (m *mockIndex) CourseLink(_ context.Context, title string) (string, bool) {
	link, ok := m.courseLinks[title]
	return link, ok
}

func (m *mockIndex) CourseCount(_ context.Context) (int, error) {
	return len(m.entries), nil
}

func (m *mockIndex) CourseTitles(_ context.Context) ([]string, error) {
	titles := make([]string, 0, len(m.entries))
	for t := range m.entries {
		titles = append(titles, t)
	}
	return titles, nil
}

func (m *mockIndex) searchCalls() []searchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]searchCall(nil), m.calls...)
}

// mockModel implements driven.ModelClient by replaying scripted responses.
type mockModel struct {
	mu        sync.Mutex
	responses []*domain.ModelResponse
	errs      []error
	requests  []domain.ModelRequest
}

func (m *mockModel) Call(_ context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.requests)
	m.requests = append(m.requests, req)
	if n < len(m.errs) && m.errs[n] != nil {
		return nil, m.errs[n]
	}
	if n >= len(m.responses) {
		return nil, fmt.Errorf("unexpected model call %d", n+1)
	}
	return m.responses[n], nil
}

func (m *mockModel) ModelName() string            { return "mock-model" }
func (m *mockModel) Ping(_ context.Context) error { return nil }
func (m *mockModel) Close() error                 { return nil }

func (m *mockModel) calls() []domain.ModelRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ModelRequest(nil), m.requests...)
}

// textResponse is a direct answer.
func textResponse(text string) *domain.ModelResponse {
	return &domain.ModelResponse{
		StopReason: domain.StopComplete,
		Content:    []domain.ContentBlock{domain.TextBlock(text)},
	}
}

// toolResponse requests the given tool invocations.
func toolResponse(invs ...domain.ToolInvocation) *domain.ModelResponse {
	blocks := make([]domain.ContentBlock, 0, len(invs))
	for _, inv := range invs {
		blocks = append(blocks, domain.ToolUseBlock(inv))
	}
	return &domain.ModelResponse{StopReason: domain.StopToolUse, Content: blocks}
}

// stubTool is a Tool with a fixed definition and scripted output.
type stubTool struct {
	name      string
	output    domain.ToolOutput
	err       error
	citations []domain.Citation
	calls     []map[string]any
}

func (t *stubTool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        t.name,
		InputSchema: domain.ToolSchema{Type: "object"},
	}
}

func (t *stubTool) Execute(_ context.Context, args map[string]any) (domain.ToolOutput, error) {
	t.calls = append(t.calls, args)
	if t.err != nil {
		return domain.ToolOutput{}, t.err
	}
	t.citations = t.output.Citations
	return t.output, nil
}

func (t *stubTool) LastCitations() []domain.Citation { return t.citations }
func (t *stubTool) ResetCitations()                  { t.citations = nil }

// mockPrompts implements driven.PromptStore.
type mockPrompts struct {
	prompt string
	err    error
}

func (m *mockPrompts) Load(_ string) (string, error) { return m.prompt, m.err }
func (m *mockPrompts) Reload()                       {}

var (
	_ driven.SemanticIndex = (*mockIndex)(nil)
	_ driven.ModelClient   = (*mockModel)(nil)
	_ driven.PromptStore   = (*mockPrompts)(nil)
	_ Tool                 = (*stubTool)(nil)
	_ CitationSource       = (*stubTool)(nil)
)

func intPtr(n int) *int { return &n }
