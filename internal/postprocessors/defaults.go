package postprocessors

import (
	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/postprocessors/chunker"
)

// RegisterDefaults registers the built-in chunk strategies.
func RegisterDefaults(r *Registry) {
	r.Register(domain.ChunkStrategyFixed, func(opts ChunkOptions) (driven.Chunker, error) {
		return chunker.New(sizing(opts)...), nil
	})
	r.Register(domain.ChunkStrategySentence, func(opts ChunkOptions) (driven.Chunker, error) {
		return chunker.New(append(sizing(opts), chunker.WithSentences())...), nil
	})
}

// NewChunker builds the chunker for strategy from the built-in set. An empty
// strategy means fixed windows.
func NewChunker(strategy domain.ChunkStrategy, size, overlap int) (driven.Chunker, error) {
	if strategy == "" {
		strategy = domain.ChunkStrategyFixed
	}
	r := NewRegistry()
	RegisterDefaults(r)
	return r.Build(strategy, ChunkOptions{Size: size, Overlap: overlap})
}

func sizing(opts ChunkOptions) []chunker.Option {
	return []chunker.Option{chunker.WithChunkSize(opts.Size), chunker.WithOverlap(opts.Overlap)}
}
