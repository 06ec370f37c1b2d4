package domain

import "fmt"

// SearchFilter narrows a content search.
type SearchFilter struct {
	// CourseName is a free-text hint resolved by the index, not an exact key.
	CourseName string

	// LessonNumber restricts results to a single lesson when set.
	LessonNumber *int
}

// HasCourse reports whether a course hint was supplied.
func (f SearchFilter) HasCourse() bool {
	return f.CourseName != ""
}

// HasLesson reports whether a lesson filter was supplied.
func (f SearchFilter) HasLesson() bool {
	return f.LessonNumber != nil
}

// ChunkMetadata is the provenance of one search row.
type ChunkMetadata struct {
	CourseTitle  string
	LessonNumber *int
	ChunkIndex   int
}

// SearchResults is a ranked result set. When Error is set, Documents and
// Metadata are empty and must not be interpreted.
type SearchResults struct {
	// Documents holds the chunk texts in rank order.
	Documents []string

	// Metadata is parallel to Documents.
	Metadata []ChunkMetadata

	// Scores is parallel to Documents; higher is more similar.
	Scores []float64

	// Error carries a resolution miss the caller can explain in text.
	Error string
}

// IsEmpty reports whether there are no rows.
func (r SearchResults) IsEmpty() bool {
	return len(r.Documents) == 0
}

// Len returns the number of rows.
func (r SearchResults) Len() int {
	return len(r.Documents)
}

// EmptyResults returns a result set carrying only an error signal.
func EmptyResults(format string, args ...any) SearchResults {
	return SearchResults{Error: fmt.Sprintf(format, args...)}
}

// Citation is a display-ready source for one retrieved row.
type Citation struct {
	// Text is "<course title>" optionally suffixed with " - Lesson <n>".
	Text string `json:"text"`

	// Link is the lesson link, else the course link, else empty.
	Link string `json:"link,omitempty"`
}

// HasLink reports whether the citation carries a deep link.
func (c Citation) HasLink() bool {
	return c.Link != ""
}
