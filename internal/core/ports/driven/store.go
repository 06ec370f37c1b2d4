package driven

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// CourseStore persists the course catalog and its chunks.
// Backed by SQLite for durable storage.
type CourseStore interface {
	// SaveCourse stores or replaces a catalog entry.
	SaveCourse(ctx context.Context, entry *domain.CatalogEntry) error

	// GetCourse retrieves a catalog entry by exact title.
	// Returns domain.ErrNotFound when absent.
	GetCourse(ctx context.Context, title string) (*domain.CatalogEntry, error)

	// ListCourses returns every catalog entry ordered by title.
	ListCourses(ctx context.Context) ([]*domain.CatalogEntry, error)

	// CountCourses returns the number of catalog entries.
	CountCourses(ctx context.Context) (int, error)

	// SaveChunks stores or replaces chunks.
	SaveChunks(ctx context.Context, chunks []domain.CourseChunk) error

	// GetChunks retrieves chunks by ID, preserving the order of ids.
	// Unknown IDs are skipped.
	GetChunks(ctx context.Context, ids []string) ([]domain.CourseChunk, error)

	// ListChunks returns every chunk ordered by course and chunk index.
	ListChunks(ctx context.Context) ([]domain.CourseChunk, error)

	// DeleteCourse removes a course and its chunks.
	DeleteCourse(ctx context.Context, title string) error

	// Clear removes every course and chunk.
	Clear(ctx context.Context) error
}

// SessionStore persists conversation history.
type SessionStore interface {
	// GetSession retrieves a session by ID.
	// Returns domain.ErrNotFound when absent.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// SaveSession stores or replaces a session.
	SaveSession(ctx context.Context, session *domain.Session) error

	// DeleteSession removes a session.
	DeleteSession(ctx context.Context, id string) error
}
