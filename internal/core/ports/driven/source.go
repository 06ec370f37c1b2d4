package driven

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// CourseSource reads course files from a location.
type CourseSource interface {
	// List returns every supported course file in a stable order.
	List(ctx context.Context) ([]domain.RawDocument, error)

	// Watch streams changes until ctx is cancelled. The channel closes on cancellation.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	// Close releases resources.
	Close() error
}

// CourseSourceFactory opens a course source rooted at a directory.
type CourseSourceFactory interface {
	// Open returns a source for dir.
	Open(dir string) (CourseSource, error)
}
