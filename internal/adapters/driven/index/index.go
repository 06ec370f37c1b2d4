// Package index composes the course store, keyword index, vector index and
// embedding service into the semantic index used by the course tools.
package index

import (
	"context"
	"fmt"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.SemanticIndex = (*Index)(nil)

// Options configures an Index.
type Options struct {
	// MaxResults bounds every content search (default: domain.DefaultMaxResults).
	MaxResults int
}

// Index answers content searches and catalog lookups.
// Embeddings are used when both an embedding service and a vector index are
// configured; keyword search is used otherwise.
type Index struct {
	store      driven.CourseStore
	keyword    driven.KeywordIndex
	vectors    driven.VectorIndex
	embedder   driven.EmbeddingService
	maxResults int
}

// New creates an Index. vectors and embedder may be nil.
func New(
	store driven.CourseStore,
	keyword driven.KeywordIndex,
	vectors driven.VectorIndex,
	embedder driven.EmbeddingService,
	opts Options,
) *Index {
	if opts.MaxResults <= 0 {
		opts.MaxResults = domain.DefaultMaxResults
	}
	return &Index{
		store:      store,
		keyword:    keyword,
		vectors:    vectors,
		embedder:   embedder,
		maxResults: opts.MaxResults,
	}
}

// Semantic reports whether searches use embeddings.
func (i *Index) Semantic() bool {
	return i.embedder != nil && i.vectors != nil
}

// MaxResults returns the per-search row bound.
func (i *Index) MaxResults() int {
	return i.maxResults
}

// Search runs one filtered content query.
func (i *Index) Search(ctx context.Context, query string, filter domain.SearchFilter) (domain.SearchResults, error) {
	// Lessons are numbered from 1.
	if filter.HasLesson() && *filter.LessonNumber < 1 {
		return domain.EmptyResults("Invalid lesson number: %d", *filter.LessonNumber), nil
	}

	var title string
	if filter.HasCourse() {
		resolved, ok, err := i.resolveCourse(ctx, filter.CourseName)
		if err != nil {
			return domain.SearchResults{}, err
		}
		if !ok {
			return domain.EmptyResults("No course found matching '%s'", filter.CourseName), nil
		}
		logger.Debug("Resolved course %q to %q", filter.CourseName, resolved)
		title = resolved
	}

	ids, scores, err := i.rank(ctx, query, title, filter.LessonNumber)
	if err != nil {
		return domain.SearchResults{}, err
	}
	return i.hydrate(ctx, ids, scores)
}

// resolveCourse maps a free-text course name to a catalog title.
func (i *Index) resolveCourse(ctx context.Context, name string) (string, bool, error) {
	if !i.Semantic() {
		title, ok, err := i.keyword.MatchCourse(ctx, name)
		if err != nil {
			return "", false, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
		}
		return title, ok, nil
	}

	vec, err := i.embedder.Embed(ctx, name)
	if err != nil {
		return "", false, fmt.Errorf("%w: embed course name: %w", domain.ErrEmbeddingUnavailable, err)
	}
	hits, err := i.vectors.Search(ctx, driven.CollectionCatalog, vec, 1, driven.VectorFilter{})
	if err != nil {
		return "", false, fmt.Errorf("%w: resolve course: %w", domain.ErrVectorIndexUnavailable, err)
	}
	if len(hits) == 0 || hits[0].Payload.CourseTitle == "" {
		return "", false, nil
	}
	return hits[0].Payload.CourseTitle, true, nil
}

// rank returns chunk IDs and scores in rank order.
func (i *Index) rank(ctx context.Context, query, title string, lesson *int) ([]string, []float64, error) {
	if !i.Semantic() {
		hits, err := i.keyword.Search(ctx, query, driven.KeywordFilter{CourseTitle: title, LessonNumber: lesson}, i.maxResults)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
		}
		ids := make([]string, len(hits))
		scores := make([]float64, len(hits))
		for n, h := range hits {
			ids[n], scores[n] = h.ChunkID, h.Score
		}
		return ids, scores, nil
	}

	vec, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbeddingUnavailable, err)
	}
	hits, err := i.vectors.Search(ctx, driven.CollectionContent, vec, i.maxResults,
		driven.VectorFilter{CourseTitle: title, LessonNumber: lesson})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: search content: %w", domain.ErrVectorIndexUnavailable, err)
	}
	ids := make([]string, len(hits))
	scores := make([]float64, len(hits))
	for n, h := range hits {
		ids[n], scores[n] = h.ID, h.Similarity
	}
	return ids, scores, nil
}

// hydrate loads chunk rows in rank order. IDs missing from the store are skipped.
func (i *Index) hydrate(ctx context.Context, ids []string, scores []float64) (domain.SearchResults, error) {
	if len(ids) == 0 {
		return domain.SearchResults{}, nil
	}
	chunks, err := i.store.GetChunks(ctx, ids)
	if err != nil {
		return domain.SearchResults{}, fmt.Errorf("%w: load chunks: %w", domain.ErrIndexUnavailable, err)
	}
	byID := make(map[string]domain.CourseChunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}

	var out domain.SearchResults
	for n, id := range ids {
		c, ok := byID[id]
		if !ok {
			logger.Debug("Skipping chunk %s: not in store", id)
			continue
		}
		out.Documents = append(out.Documents, c.Content)
		out.Metadata = append(out.Metadata, domain.ChunkMetadata{
			CourseTitle:  c.CourseTitle,
			LessonNumber: c.LessonNumber,
			ChunkIndex:   c.ChunkIndex,
		})
		out.Scores = append(out.Scores, scores[n])
	}
	return out, nil
}

// CatalogEntry returns the catalog record for an exact title.
func (i *Index) CatalogEntry(ctx context.Context, title string) (*domain.CatalogEntry, error) {
	return i.store.GetCourse(ctx, title)
}

// LessonLink returns the recorded link of a lesson.
func (i *Index) LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, bool) {
	entry, err := i.store.GetCourse(ctx, courseTitle)
	if err != nil {
		return "", false
	}
	return entry.LessonLink(lessonNumber)
}

// CourseLink returns the recorded link of a course.
func (i *Index) CourseLink(ctx context.Context, courseTitle string) (string, bool) {
	entry, err := i.store.GetCourse(ctx, courseTitle)
	if err != nil || entry.CourseLink == "" {
		return "", false
	}
	return entry.CourseLink, true
}

// CourseCount returns the number of catalog entries.
func (i *Index) CourseCount(ctx context.Context) (int, error) {
	return i.store.CountCourses(ctx)
}

// CourseTitles returns every catalog title ordered by title.
func (i *Index) CourseTitles(ctx context.Context) ([]string, error) {
	entries, err := i.store.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(entries))
	for n, e := range entries {
		titles[n] = e.Title
	}
	return titles, nil
}

// RebuildOptions selects which derived indexes Rebuild repopulates.
type RebuildOptions struct {
	// Vectors reloads stored embeddings into the vector index.
	// Persistent vector backends do not need this.
	Vectors bool
}

// Rebuild repopulates the derived indexes from the course store.
func (i *Index) Rebuild(ctx context.Context, opts RebuildOptions) error {
	entries, err := i.store.ListCourses(ctx)
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}
	chunks, err := i.store.ListChunks(ctx)
	if err != nil {
		return fmt.Errorf("list chunks: %w", err)
	}

	for _, e := range entries {
		if err := i.keyword.IndexCourse(ctx, domain.Course{Title: e.Title}); err != nil {
			return err
		}
	}
	if err := i.keyword.IndexChunks(ctx, chunks); err != nil {
		return err
	}
	logger.Debug("Rebuilt keyword index: %d courses, %d chunks", len(entries), len(chunks))

	if !opts.Vectors || i.vectors == nil {
		return nil
	}
	return i.rebuildVectors(ctx, entries, chunks)
}

func (i *Index) rebuildVectors(ctx context.Context, entries []*domain.CatalogEntry, chunks []domain.CourseChunk) error {
	var catalog, content []driven.VectorRecord
	for _, e := range entries {
		if len(e.Embedding) == 0 {
			continue
		}
		catalog = append(catalog, driven.VectorRecord{
			ID:      domain.CatalogVectorID(e.Title),
			Vector:  e.Embedding,
			Payload: driven.VectorPayload{CourseTitle: e.Title},
		})
	}
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		content = append(content, driven.VectorRecord{
			ID:      c.ID,
			Vector:  c.Embedding,
			Payload: driven.VectorPayload{CourseTitle: c.CourseTitle, LessonNumber: c.LessonNumber},
		})
	}

	for name, records := range map[string][]driven.VectorRecord{
		driven.CollectionCatalog: catalog,
		driven.CollectionContent: content,
	} {
		if len(records) == 0 {
			continue
		}
		if err := i.vectors.EnsureCollection(ctx, name, len(records[0].Vector)); err != nil {
			return fmt.Errorf("ensure collection %s: %w", name, err)
		}
		if err := i.vectors.Upsert(ctx, name, records); err != nil {
			return fmt.Errorf("upsert %s: %w", name, err)
		}
	}
	logger.Debug("Rebuilt vector index: %d catalog, %d content vectors", len(catalog), len(content))
	return nil
}
