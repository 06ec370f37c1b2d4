package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

func seedCourse(t *testing.T, s *CourseStore, title string, chunks int) {
	t.Helper()
	ctx := context.Background()
	entry := domain.NewCatalogEntry(domain.Course{Title: title})
	require.NoError(t, s.SaveCourse(ctx, &entry))

	cs := make([]domain.CourseChunk, chunks)
	for i := range cs {
		cs[i] = domain.CourseChunk{
			ID:          title + "-" + string(rune('a'+i)),
			CourseTitle: title,
			ChunkIndex:  i,
			Content:     "text",
		}
	}
	require.NoError(t, s.SaveChunks(ctx, cs))
}

func TestCourseStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewCourseStore()

	entry := domain.NewCatalogEntry(domain.Course{
		Title:      "Intro to Programming",
		Instructor: "Ada",
		Lessons:    []domain.Lesson{{Number: 1, Title: "Basics", Link: "https://example.com/1"}},
	})
	require.NoError(t, s.SaveCourse(ctx, &entry))

	got, err := s.GetCourse(ctx, "Intro to Programming")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Instructor)
	link, ok := got.LessonLink(1)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/1", link)

	_, err = s.GetCourse(ctx, "Missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCourseStore_SaveRejectsUntitled(t *testing.T) {
	s := NewCourseStore()
	assert.ErrorIs(t, s.SaveCourse(context.Background(), &domain.CatalogEntry{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.SaveChunks(context.Background(), []domain.CourseChunk{{Content: "x"}}), domain.ErrInvalidInput)
}

func TestCourseStore_ListAndCount(t *testing.T) {
	ctx := context.Background()
	s := NewCourseStore()
	seedCourse(t, s, "Beta", 1)
	seedCourse(t, s, "Alpha", 1)

	entries, err := s.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Alpha", entries[0].Title)
	assert.Equal(t, "Beta", entries[1].Title)

	n, err := s.CountCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCourseStore_GetChunksPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := NewCourseStore()
	seedCourse(t, s, "C", 3)

	chunks, err := s.GetChunks(ctx, []string{"C-c", "unknown", "C-a"})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "C-c", chunks[0].ID)
	assert.Equal(t, "C-a", chunks[1].ID)
}

func TestCourseStore_ListChunksInSaveOrder(t *testing.T) {
	ctx := context.Background()
	s := NewCourseStore()
	seedCourse(t, s, "B", 2)
	seedCourse(t, s, "A", 2)

	// Re-saving keeps the original position.
	require.NoError(t, s.SaveChunks(ctx, []domain.CourseChunk{{ID: "B-a", CourseTitle: "B", Content: "edited"}}))

	chunks, err := s.ListChunks(ctx)
	require.NoError(t, err)
	var ids []string
	for _, c := range chunks {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"B-a", "B-b", "A-a", "A-b"}, ids)
	assert.Equal(t, "edited", chunks[0].Content)
}

func TestCourseStore_DeleteCourse(t *testing.T) {
	ctx := context.Background()
	s := NewCourseStore()
	seedCourse(t, s, "Keep", 2)
	seedCourse(t, s, "Drop", 2)

	require.NoError(t, s.DeleteCourse(ctx, "Drop"))
	assert.ErrorIs(t, s.DeleteCourse(ctx, "Drop"), domain.ErrNotFound)

	chunks, err := s.ListChunks(ctx)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.Equal(t, "Keep", c.CourseTitle)
	}
}

func TestCourseStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := NewCourseStore()
	seedCourse(t, s, "A", 2)

	require.NoError(t, s.Clear(ctx))

	n, _ := s.CountCourses(ctx)
	assert.Zero(t, n)
	chunks, _ := s.ListChunks(ctx)
	assert.Empty(t, chunks)
}
