package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
)

type mockQueryService struct {
	mu       sync.Mutex
	requests []domain.QueryRequest
	answer   *domain.Answer
	err      error
}

func (m *mockQueryService) Query(_ context.Context, req domain.QueryRequest) (*domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		a := *m.answer
		if a.SessionID == "" {
			a.SessionID = "session-1"
		}
		return &a, nil
	}
	return &domain.Answer{Text: "answer to " + req.Query, SessionID: "session-1"}, nil
}

type mockSessionService struct {
	cleared []string
}

func (m *mockSessionService) Create(context.Context) (string, error) { return "session-new", nil }

func (m *mockSessionService) History(context.Context, string) (string, error) { return "", nil }

func (m *mockSessionService) Record(context.Context, string, domain.Exchange) error { return nil }

func (m *mockSessionService) Clear(_ context.Context, id string) error {
	m.cleared = append(m.cleared, id)
	return nil
}

type mockCatalogService struct {
	analytics  *domain.CourseAnalytics
	outline    string
	err        error
	lastTitle  string
	searchArgs map[string]any
}

func (m *mockCatalogService) Analytics(context.Context) (*domain.CourseAnalytics, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.analytics == nil {
		return &domain.CourseAnalytics{}, nil
	}
	a := *m.analytics
	return &a, nil
}

func (m *mockCatalogService) Outline(_ context.Context, title string) (string, error) {
	m.lastTitle = title
	if m.err != nil {
		return "", m.err
	}
	return m.outline, nil
}

func (m *mockCatalogService) SearchContent(_ context.Context, args map[string]any) (domain.ToolOutput, error) {
	m.searchArgs = args
	return domain.ToolOutput{}, m.err
}

type mockIngestService struct {
	dir      string
	clear    bool
	result   *driving.IngestResult
	err      error
	watched  string
	events   []driving.IngestEvent
	watchErr error
}

func (m *mockIngestService) IngestDirectory(_ context.Context, dir string, clear bool) (*driving.IngestResult, error) {
	m.dir = dir
	m.clear = clear
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &driving.IngestResult{}, nil
	}
	return m.result, nil
}

func (m *mockIngestService) Watch(_ context.Context, dir string, onEvent func(driving.IngestEvent)) error {
	m.watched = dir
	for _, ev := range m.events {
		onEvent(ev)
	}
	return m.watchErr
}

type mockSettingsService struct {
	settings    domain.AppSettings
	setKey      string
	setValue    string
	setErr      error
	resetKeys   []string
	validateErr error
	embedding   domain.EmbeddingSettings
	llm         domain.LLMSettings
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setKey, m.setValue = key, value
	return nil
}

func (m *mockSettingsService) Reset(key string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.resetKeys = append(m.resetKeys, key)
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.llm = domain.LLMSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

// setupTestServices installs s for the duration of the test.
func setupTestServices(t *testing.T, s *Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() { SetServices(nil) })
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(t *testing.T) {
	t.Helper()
	askSession, askJSON = "", false
	chatPlain = false
	ingestClear, ingestWatch = false, false
	coursesJSON = false
	settingsResetAll = false
	verbose = false
	if err := serveCmd.Flags().Set("port", "0"); err != nil {
		t.Fatal(err)
	}
	if err := mcpServeCmd.Flags().Set("port", "0"); err != nil {
		t.Fatal(err)
	}
}
