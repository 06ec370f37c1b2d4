package driven

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// Chunker splits a course document into retrievable chunks.
type Chunker interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Chunk returns the chunks of every lesson section in document order.
	// ChunkIndex is assigned sequentially across the whole course.
	Chunk(ctx context.Context, doc *domain.CourseDocument) ([]domain.CourseChunk, error)
}
