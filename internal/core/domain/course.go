package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Course is an ingested course. Title is the unique catalog key.
type Course struct {
	// Title is the human-readable primary key.
	Title string

	// Instructor is the course instructor, if known.
	Instructor string

	// Link is the course-level URL, if known.
	Link string

	// Lessons are ordered by lesson number.
	Lessons []Lesson
}

// Lesson is a numbered unit within a course.
type Lesson struct {
	// Number is unique within the owning course.
	Number int

	// Title is the lesson title.
	Title string

	// Link is the lesson-level URL, if known.
	Link string
}

// LessonByNumber returns the lesson with the given number.
func (c *Course) LessonByNumber(n int) (Lesson, bool) {
	for _, l := range c.Lessons {
		if l.Number == n {
			return l, true
		}
	}
	return Lesson{}, false
}

// CourseChunk is a retrievable slice of course text.
type CourseChunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Content is the chunk text.
	Content string

	// CourseTitle links the chunk to its owning course.
	CourseTitle string

	// LessonNumber is nil for text outside any lesson.
	LessonNumber *int

	// ChunkIndex is the ordinal position within the course.
	ChunkIndex int

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}

// CatalogEntry is the stored catalog record of a course.
// LessonsJSON is kept in its stored form; callers decode it with DecodeLessons.
type CatalogEntry struct {
	Title       string
	Instructor  string
	CourseLink  string
	LessonsJSON string
	SourceURI   string
	Embedding   []float32
	CreatedAt   time.Time
}

// LessonRecord is the serialised form of a lesson inside CatalogEntry.LessonsJSON.
type LessonRecord struct {
	LessonNumber int    `json:"lesson_number"`
	LessonTitle  string `json:"lesson_title"`
	LessonLink   string `json:"lesson_link,omitempty"`
}

// EncodeLessons serialises lessons for storage in a catalog entry.
func EncodeLessons(lessons []Lesson) string {
	records := make([]LessonRecord, len(lessons))
	for i, l := range lessons {
		records[i] = LessonRecord{
			LessonNumber: l.Number,
			LessonTitle:  l.Title,
			LessonLink:   l.Link,
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// DecodeLessons parses a stored lesson list.
// Malformed input yields an empty list rather than an error.
func DecodeLessons(raw string) []LessonRecord {
	if raw == "" {
		return nil
	}
	var records []LessonRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil
	}
	return records
}

// NewCatalogEntry builds the catalog record for a course.
func NewCatalogEntry(c Course) CatalogEntry {
	return CatalogEntry{
		Title:       c.Title,
		Instructor:  c.Instructor,
		CourseLink:  c.Link,
		LessonsJSON: EncodeLessons(c.Lessons),
	}
}

// LessonLink returns the link of lesson n from the stored lesson list.
func (e *CatalogEntry) LessonLink(n int) (string, bool) {
	for _, r := range DecodeLessons(e.LessonsJSON) {
		if r.LessonNumber == n && r.LessonLink != "" {
			return r.LessonLink, true
		}
	}
	return "", false
}

// CourseAnalytics summarises the catalog.
type CourseAnalytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// CatalogVectorID derives a stable vector ID from a course title.
func CatalogVectorID(title string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("coursemate:"+title)).String()
}
