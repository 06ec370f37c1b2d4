// Package ollama embeds course text with a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultModel     = "nomic-embed-text"
	DefaultTimeout   = 30 * time.Second
	DefaultBatchSize = 64

	// DefaultDimensions is reported until the first response shows the real size.
	DefaultDimensions = 768
)

type Config struct {
	// BaseURL overrides OLLAMA_HOST (itself defaulting to http://127.0.0.1:11434).
	BaseURL string
	Model   string
	Timeout time.Duration

	// BatchSize caps the inputs sent in one /api/embed request.
	BatchSize int

	// Dimensions is the expected vector size. Zero learns it from the first
	// response.
	Dimensions int
}

// EmbeddingService calls /api/embed. Inputs longer than the model's context
// are truncated by the server rather than rejected.
type EmbeddingService struct {
	client    *api.Client
	model     string
	batchSize int
	dims      atomic.Int64
}

func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	host := envconfig.Host()
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("ollama: invalid base URL %q: %w", cfg.BaseURL, err)
		}
		host = u
	}

	s := &EmbeddingService{
		client:    api.NewClient(host, &http.Client{Timeout: cfg.Timeout}),
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
	}
	s.dims.Store(int64(cfg.Dimensions))
	return s, nil
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("ollama: embed: %w", err)
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in groups of BatchSize and returns the vectors in
// input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := min(start+s.batchSize, len(texts))
		vecs, err := s.embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("ollama: embed batch %d-%d: %w", start, end-1, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (s *EmbeddingService) embed(ctx context.Context, input []string) ([][]float32, error) {
	truncate := true
	resp, err := s.client.Embed(ctx, &api.EmbedRequest{
		Model:    s.model,
		Input:    input,
		Truncate: &truncate,
	})
	if err != nil {
		var status api.StatusError
		if errors.As(err, &status) && status.StatusCode == http.StatusTooManyRequests {
			return nil, errors.Join(domain.ErrRateLimited, err)
		}
		return nil, err
	}
	if len(resp.Embeddings) != len(input) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(resp.Embeddings), len(input))
	}
	if len(resp.Embeddings[0]) > 0 {
		s.dims.CompareAndSwap(0, int64(len(resp.Embeddings[0])))
	}
	return resp.Embeddings, nil
}

// Dimensions is the configured size, the size seen in the first response, or
// DefaultDimensions before any response.
func (s *EmbeddingService) Dimensions() int {
	if d := s.dims.Load(); d > 0 {
		return int(d)
	}
	return DefaultDimensions
}

func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks the server is up without loading the model.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	return nil
}

func (s *EmbeddingService) Close() error {
	return nil
}
