package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

type fakeQuery struct {
	answer *domain.Answer
	err    error
	got    domain.QueryRequest
}

func (f *fakeQuery) Query(_ context.Context, req domain.QueryRequest) (*domain.Answer, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

type fakeCatalog struct {
	stats *domain.CourseAnalytics
	err   error
}

func (f *fakeCatalog) Analytics(context.Context) (*domain.CourseAnalytics, error) {
	return f.stats, f.err
}

func (f *fakeCatalog) Outline(context.Context, string) (string, error) {
	return "", nil
}

func (f *fakeCatalog) SearchContent(context.Context, map[string]any) (domain.ToolOutput, error) {
	return domain.ToolOutput{}, nil
}

func newTestServer(t *testing.T, q *fakeQuery, c *fakeCatalog, cfg Config) http.Handler {
	t.Helper()
	ports := &Ports{Catalog: c}
	if q != nil {
		ports.Query = q
	}
	srv, err := NewServer(ports, cfg)
	require.NoError(t, err)
	return srv.Handler()
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServer_RequiresCatalog(t *testing.T) {
	_, err := NewServer(&Ports{}, Config{})
	assert.Error(t, err)

	srv, err := NewServer(&Ports{Catalog: &fakeCatalog{}}, Config{})
	require.NoError(t, err)
	assert.Equal(t, ":8000", srv.Addr())
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil, &fakeCatalog{}, Config{})
	rec := doRequest(h, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestQuery_Success(t *testing.T) {
	q := &fakeQuery{answer: &domain.Answer{
		Text: "Lesson 1 covers variables.",
		Citations: []domain.Citation{
			{Text: "Introduction to Programming - Lesson 1", Link: "https://example.com/l1"},
			{Text: "Introduction to Programming"},
		},
		SessionID: "session_1",
	}}
	h := newTestServer(t, q, &fakeCatalog{}, Config{})

	rec := doRequest(h, http.MethodPost, "/api/query", `{"query":"What is in lesson 1?","session_id":"session_1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Lesson 1 covers variables.", resp["answer"])
	assert.Equal(t, "session_1", resp["session_id"])

	sources := resp["sources"].([]any)
	require.Len(t, sources, 2)
	first := sources[0].(map[string]any)
	assert.Equal(t, "https://example.com/l1", first["link"])
	second := sources[1].(map[string]any)
	link, hasLink := second["link"]
	assert.True(t, hasLink, "link key is always present")
	assert.Nil(t, link)
	assert.Contains(t, rec.Body.String(), `{"text":"Introduction to Programming","link":null}`)

	assert.Equal(t, "What is in lesson 1?", q.got.Query)
	assert.Equal(t, "session_1", q.got.SessionID)
}

func TestQuery_NoSourcesEncodesEmptyList(t *testing.T) {
	q := &fakeQuery{answer: &domain.Answer{Text: "Hello", SessionID: "session_2"}}
	h := newTestServer(t, q, &fakeCatalog{}, Config{})

	rec := doRequest(h, http.MethodPost, "/api/query", `{"query":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sources":[]`)
}

func TestQuery_InvalidPayloads(t *testing.T) {
	h := newTestServer(t, &fakeQuery{}, &fakeCatalog{}, Config{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"query":`},
		{"missing query", `{"session_id":"x"}`},
		{"empty query", `{"query":""}`},
		{"blank query", `{"query":"   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, http.MethodPost, "/api/query", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), "detail")
		})
	}
}

func TestQuery_MethodNotAllowed(t *testing.T) {
	h := newTestServer(t, &fakeQuery{}, &fakeCatalog{}, Config{})
	rec := doRequest(h, http.MethodGet, "/api/query", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestQuery_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"fault", errors.New("boom"), http.StatusInternalServerError},
		{"model unavailable", domain.ErrLLMUnavailable, http.StatusServiceUnavailable},
		{"vector store down", fmt.Errorf("%w: dial", domain.ErrVectorIndexUnavailable), http.StatusServiceUnavailable},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests},
		{"invalid", domain.ErrInvalidInput, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &fakeQuery{err: tt.err}, &fakeCatalog{}, Config{})
			rec := doRequest(h, http.MethodPost, "/api/query", `{"query":"hello"}`)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestQuery_NoModelConfigured(t *testing.T) {
	h := newTestServer(t, nil, &fakeCatalog{}, Config{})
	rec := doRequest(h, http.MethodPost, "/api/query", `{"query":"hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCourses(t *testing.T) {
	c := &fakeCatalog{stats: &domain.CourseAnalytics{
		TotalCourses: 2,
		CourseTitles: []string{"Introduction to Programming", "MCP: Build Rich-Context AI Apps"},
	}}
	h := newTestServer(t, nil, c, Config{})

	rec := doRequest(h, http.MethodGet, "/api/courses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"total_courses":2,"course_titles":["Introduction to Programming","MCP: Build Rich-Context AI Apps"]}`,
		rec.Body.String())
}

func TestCourses_EmptyCatalog(t *testing.T) {
	h := newTestServer(t, nil, &fakeCatalog{stats: &domain.CourseAnalytics{}}, Config{})
	rec := doRequest(h, http.MethodGet, "/api/courses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_courses":0,"course_titles":[]}`, rec.Body.String())
}

func TestCourses_Error(t *testing.T) {
	h := newTestServer(t, nil, &fakeCatalog{err: errors.New("store closed")}, Config{})
	rec := doRequest(h, http.MethodGet, "/api/courses", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, nil, &fakeCatalog{stats: &domain.CourseAnalytics{}}, Config{CORSOrigin: "*"})

	rec := doRequest(h, http.MethodOptions, "/api/query", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = doRequest(h, http.MethodGet, "/api/courses", "")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DisabledByDefault(t *testing.T) {
	h := newTestServer(t, nil, &fakeCatalog{stats: &domain.CourseAnalytics{}}, Config{})
	rec := doRequest(h, http.MethodGet, "/api/courses", "")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, nil, &fakeCatalog{stats: &domain.CourseAnalytics{}}, Config{RequestsPerSecond: 1})

	first := doRequest(h, http.MethodGet, "/api/health", "")
	second := doRequest(h, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}), Recover())

	rec := doRequest(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("a"), mark("b"))

	doRequest(h, http.MethodGet, "/", "")
	assert.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestStaticDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Course Materials</h1>"), 0o600))

	h := newTestServer(t, nil, &fakeCatalog{}, Config{StaticDir: dir})
	rec := doRequest(h, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Course Materials")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	srv, err := NewServer(&Ports{Catalog: &fakeCatalog{}}, Config{})
	require.NoError(t, err)

	ln := httptest.NewUnstartedServer(nil).Listener
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	assert.NoError(t, <-done)
}
