package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// Ensure CourseStore implements the interface.
var _ driven.CourseStore = (*CourseStore)(nil)

// CourseStore is an in-memory implementation of driven.CourseStore.
type CourseStore struct {
	mu      sync.RWMutex
	courses map[string]domain.CatalogEntry
	chunks  map[string]domain.CourseChunk

	// saved records when each chunk ID was first stored.
	saved map[string]uint64
	next  uint64
}

// NewCourseStore creates a new in-memory course store.
func NewCourseStore() *CourseStore {
	return &CourseStore{
		courses: make(map[string]domain.CatalogEntry),
		chunks:  make(map[string]domain.CourseChunk),
		saved:   make(map[string]uint64),
	}
}

// SaveCourse stores or replaces a catalog entry.
func (s *CourseStore) SaveCourse(_ context.Context, entry *domain.CatalogEntry) error {
	if entry == nil || entry.Title == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[entry.Title] = *entry
	return nil
}

// GetCourse retrieves a catalog entry by title.
func (s *CourseStore) GetCourse(_ context.Context, title string) (*domain.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.courses[title]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// ListCourses returns every catalog entry ordered by title.
func (s *CourseStore) ListCourses(_ context.Context) ([]*domain.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*domain.CatalogEntry, 0, len(s.courses))
	for _, entry := range s.courses {
		e := entry
		result = append(result, &e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Title < result[j].Title })
	return result, nil
}

// CountCourses returns the number of catalog entries.
func (s *CourseStore) CountCourses(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses), nil
}

// SaveChunks stores or replaces chunks.
func (s *CourseStore) SaveChunks(_ context.Context, chunks []domain.CourseChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		if c.ID == "" {
			return domain.ErrInvalidInput
		}
		if _, ok := s.saved[c.ID]; !ok {
			s.saved[c.ID] = s.next
			s.next++
		}
		s.chunks[c.ID] = c
	}
	return nil
}

// GetChunks retrieves chunks by ID in the order requested. Unknown IDs are skipped.
func (s *CourseStore) GetChunks(_ context.Context, ids []string) ([]domain.CourseChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.CourseChunk, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.chunks[id]; ok {
			result = append(result, c)
		}
	}
	return result, nil
}

// ListChunks returns every chunk in the order it was first saved.
func (s *CourseStore) ListChunks(_ context.Context) ([]domain.CourseChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.CourseChunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return s.saved[result[i].ID] < s.saved[result[j].ID]
	})
	return result, nil
}

// DeleteCourse removes a course and its chunks.
func (s *CourseStore) DeleteCourse(_ context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[title]; !ok {
		return domain.ErrNotFound
	}
	delete(s.courses, title)
	for id, c := range s.chunks {
		if c.CourseTitle == title {
			delete(s.chunks, id)
			delete(s.saved, id)
		}
	}
	return nil
}

// Clear removes every course and chunk.
func (s *CourseStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses = make(map[string]domain.CatalogEntry)
	s.chunks = make(map[string]domain.CourseChunk)
	s.saved = make(map[string]uint64)
	return nil
}
