// Package httpapi serves the course assistant over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
	"github.com/custodia-labs/coursemate/internal/logger"
)

const serviceName = "coursemate"

// Ports holds the services the API drives.
type Ports struct {
	Query   driving.QueryService
	Catalog driving.CatalogService
}

// Config configures the server.
type Config struct {
	// Port is the listen port.
	Port int

	// CORSOrigin is the allowed origin. Empty disables CORS headers.
	CORSOrigin string

	// StaticDir is served at "/" when set.
	StaticDir string

	// RequestsPerSecond throttles requests. Zero disables throttling.
	RequestsPerSecond float64
}

// Server is the HTTP API.
type Server struct {
	ports *Ports
	cfg   Config
}

// NewServer creates a server. Catalog is required; Query may be nil when no
// model is configured, in which case /api/query answers 503.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if ports == nil || ports.Catalog == nil {
		return nil, errors.New("catalog service is required")
	}
	if cfg.Port == 0 {
		cfg.Port = domain.DefaultServerPort
	}
	return &Server{ports: ports, cfg: cfg}, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("GET /api/courses", s.handleCourses)
	if s.cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}

	return Chain(mux,
		Recover(),
		OTel(serviceName),
		Logging(),
		CORS(s.cfg.CORSOrigin),
		RateLimit(s.cfg.RequestsPerSecond),
	)
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf(":%d", s.cfg.Port)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("Shutting down API server")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// QueryRequest is the JSON body for POST /api/query.
type QueryRequest struct {
	Query     *string `json:"query"`
	SessionID string  `json:"session_id,omitempty"`
}

// QueryResponse is the JSON response for POST /api/query.
type QueryResponse struct {
	Answer    string           `json:"answer"`
	Sources   []SourceResponse `json:"sources"`
	SessionID string           `json:"session_id"`
}

// SourceResponse is one citation. Link is null, never absent, when the row
// has neither a lesson nor a course link.
type SourceResponse struct {
	Text string  `json:"text"`
	Link *string `json:"link"`
}

func toSources(citations []domain.Citation) []SourceResponse {
	out := make([]SourceResponse, len(citations))
	for i, c := range citations {
		out[i] = SourceResponse{Text: c.Text}
		if c.HasLink() {
			link := c.Link
			out[i].Link = &link
		}
	}
	return out
}

// errorResponse is the JSON body of every error.
type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if req.Query == nil {
		writeError(w, http.StatusUnprocessableEntity, "query is required")
		return
	}
	if strings.TrimSpace(*req.Query) == "" {
		writeError(w, http.StatusUnprocessableEntity, "query must not be empty")
		return
	}
	if s.ports.Query == nil {
		writeError(w, http.StatusServiceUnavailable, "no language model configured")
		return
	}

	answer, err := s.ports.Query.Query(r.Context(), domain.QueryRequest{
		Query:     *req.Query,
		SessionID: req.SessionID,
	})
	if err != nil {
		logger.Error("query failed: %v", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		Answer:    answer.Text,
		Sources:   toSources(answer.Citations),
		SessionID: answer.SessionID,
	})
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ports.Catalog.Analytics(r.Context())
	if err != nil {
		logger.Error("course analytics failed: %v", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	if stats.CourseTitles == nil {
		stats.CourseTitles = []string{}
	}
	writeJSON(w, http.StatusOK, stats)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.Unavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
