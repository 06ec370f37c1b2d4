// Package postprocessors builds the chunking stage of course ingestion.
package postprocessors

import (
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// ChunkOptions sizes a chunker. Non-positive Size and negative Overlap keep
// the chunker's defaults.
type ChunkOptions struct {
	Size    int
	Overlap int
}

// Builder creates a chunker for one strategy.
type Builder func(opts ChunkOptions) (driven.Chunker, error)

// Registry maps chunk strategies to builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[domain.ChunkStrategy]Builder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[domain.ChunkStrategy]Builder)}
}

// Register adds or replaces the builder for strategy.
func (r *Registry) Register(strategy domain.ChunkStrategy, b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[strategy] = b
}

// Build creates the chunker for strategy.
func (r *Registry) Build(strategy domain.ChunkStrategy, opts ChunkOptions) (driven.Chunker, error) {
	r.mu.RLock()
	b, ok := r.builders[strategy]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown chunk strategy %q", domain.ErrInvalidInput, strategy)
	}
	return b(opts)
}

// Strategies lists the registered strategies, sorted.
func (r *Registry) Strategies() []domain.ChunkStrategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ChunkStrategy, 0, len(r.builders))
	for s := range r.builders {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}
