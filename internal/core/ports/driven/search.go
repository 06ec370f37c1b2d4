package driven

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// KeywordIndex provides full-text search over chunks and fuzzy matching over titles.
// Backed by bleve.
type KeywordIndex interface {
	// IndexCourse adds or replaces a course title for name resolution.
	IndexCourse(ctx context.Context, course domain.Course) error

	// IndexChunks adds or replaces chunks.
	IndexChunks(ctx context.Context, chunks []domain.CourseChunk) error

	// MatchCourse resolves a free-text course name to the best matching title.
	// Returns false when nothing matches.
	MatchCourse(ctx context.Context, name string) (string, bool, error)

	// Search performs a keyword search and returns matching chunk IDs in rank order.
	Search(ctx context.Context, query string, filter KeywordFilter, limit int) ([]SearchHit, error)

	// DeleteCourse removes a course title and all of its chunks.
	DeleteCourse(ctx context.Context, title string) error

	// Clear removes every document.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// KeywordFilter restricts a keyword search. Zero values match everything.
type KeywordFilter struct {
	CourseTitle  string
	LessonNumber *int
}

// SearchHit represents a search result from the engine.
type SearchHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the relevance score.
	Score float64
}

// SemanticIndex is the retrieval collaborator used by the course tools.
//
// Search returns a Go error only for dependency faults (embedding or vector
// backend failures). Resolution misses, such as an unknown course name, are
// reported through SearchResults.Error so the caller can explain them in text.
type SemanticIndex interface {
	// Search runs one filtered content query bounded by the configured max results.
	Search(ctx context.Context, query string, filter domain.SearchFilter) (domain.SearchResults, error)

	// CatalogEntry returns the catalog record for an exact title.
	// Returns domain.ErrNotFound on a miss.
	CatalogEntry(ctx context.Context, title string) (*domain.CatalogEntry, error)

	// LessonLink returns the link of a lesson, if recorded.
	LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, bool)

	// CourseLink returns the link of a course, if recorded.
	CourseLink(ctx context.Context, courseTitle string) (string, bool)

	// CourseCount returns the number of courses in the catalog.
	CourseCount(ctx context.Context) (int, error)

	// CourseTitles returns every catalog title.
	CourseTitles(ctx context.Context) ([]string, error)
}
