package driven

import "context"

// Vector collections.
const (
	// CollectionCatalog holds one vector per course title, used to resolve course names.
	CollectionCatalog = "course_catalog"

	// CollectionContent holds one vector per chunk.
	CollectionContent = "course_content"
)

// VectorIndex stores embeddings with a small payload and answers filtered k-NN queries.
type VectorIndex interface {
	// EnsureCollection creates the collection if it does not exist.
	EnsureCollection(ctx context.Context, collection string, dimensions int) error

	// Upsert inserts or replaces records.
	Upsert(ctx context.Context, collection string, records []VectorRecord) error

	// Search finds the k nearest neighbours to the query vector that match filter.
	// Hits are ordered by descending similarity; ties keep insertion order.
	Search(ctx context.Context, collection string, query []float32, k int, filter VectorFilter) ([]VectorHit, error)

	// Delete removes every record of a collection that matches filter.
	Delete(ctx context.Context, collection string, filter VectorFilter) error

	// DeleteCollection drops a collection and all its records.
	DeleteCollection(ctx context.Context, collection string) error

	// Close releases resources.
	Close() error
}

// VectorPayload is the filterable metadata stored with a vector.
type VectorPayload struct {
	CourseTitle  string
	LessonNumber *int
}

// VectorRecord is one stored vector.
type VectorRecord struct {
	ID      string
	Vector  []float32
	Payload VectorPayload
}

// VectorFilter restricts a search. Zero values match everything.
type VectorFilter struct {
	CourseTitle  string
	LessonNumber *int
}

// Matches reports whether a payload satisfies the filter.
func (f VectorFilter) Matches(p VectorPayload) bool {
	if f.CourseTitle != "" && p.CourseTitle != f.CourseTitle {
		return false
	}
	if f.LessonNumber != nil {
		if p.LessonNumber == nil || *p.LessonNumber != *f.LessonNumber {
			return false
		}
	}
	return true
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched record.
	ID string

	// Similarity is the cosine similarity score.
	Similarity float64

	// Payload is the record's metadata.
	Payload VectorPayload
}
