// Package bleve provides keyword search over course chunks and fuzzy
// course-name resolution using an in-memory bleve index.
package bleve

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.KeywordIndex = (*Index)(nil)

// Document kinds and ID prefixes.
const (
	kindCourse = "course"
	kindChunk  = "chunk"

	coursePrefix = "course:"
	chunkPrefix  = "chunk:"

	// deleteBatch bounds each lookup when removing a course.
	deleteBatch = 500
)

// Field names.
const (
	fieldKind        = "kind"
	fieldTitle       = "title"
	fieldContent     = "content"
	fieldCourseTitle = "course_title"
	fieldLesson      = "lesson"
	fieldSeq         = "seq"
)

// Index is a mem-only bleve index. It is rebuilt from the course store on start.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
	seq   int
}

// New creates an empty index.
func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("bleve: create index: %w", err)
	}
	return &Index{index: idx}, nil
}

// buildIndexMapping maps course titles and chunk text as analysed text, and
// filter fields as exact keywords.
func buildIndexMapping() mapping.IndexMapping {
	doc := bleve.NewDocumentMapping()

	doc.AddFieldMappingsAt(fieldKind, bleve.NewKeywordFieldMapping())
	doc.AddFieldMappingsAt(fieldTitle, bleve.NewTextFieldMapping())
	doc.AddFieldMappingsAt(fieldContent, bleve.NewTextFieldMapping())
	doc.AddFieldMappingsAt(fieldCourseTitle, bleve.NewKeywordFieldMapping())
	doc.AddFieldMappingsAt(fieldLesson, bleve.NewKeywordFieldMapping())
	doc.AddFieldMappingsAt(fieldSeq, bleve.NewNumericFieldMapping())

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// IndexCourse adds or replaces a course title.
func (i *Index) IndexCourse(_ context.Context, course domain.Course) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	err := i.index.Index(coursePrefix+course.Title, map[string]any{
		fieldKind:        kindCourse,
		fieldTitle:       course.Title,
		fieldCourseTitle: course.Title,
	})
	if err != nil {
		return fmt.Errorf("bleve: index course %q: %w", course.Title, err)
	}
	return nil
}

// IndexChunks adds or replaces chunks in one batch.
func (i *Index) IndexChunks(_ context.Context, chunks []domain.CourseChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.index.NewBatch()
	for _, c := range chunks {
		doc := map[string]any{
			fieldKind:        kindChunk,
			fieldContent:     c.Content,
			fieldCourseTitle: c.CourseTitle,
			fieldSeq:         float64(i.seq),
		}
		if c.LessonNumber != nil {
			doc[fieldLesson] = strconv.Itoa(*c.LessonNumber)
		}
		i.seq++
		if err := batch.Index(chunkPrefix+c.ID, doc); err != nil {
			return fmt.Errorf("bleve: index chunk %s: %w", c.ID, err)
		}
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("bleve: batch index %d chunks: %w", len(chunks), err)
	}
	return nil
}

// MatchCourse resolves a free-text name to the best matching course title.
// Exact title matches win, then fuzzy term matches, then word prefixes, so a
// truncated word like "Intro" still resolves.
func (i *Index) MatchCourse(ctx context.Context, name string) (string, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false, nil
	}
	i.mu.RLock()
	defer i.mu.RUnlock()

	exact := bleve.NewTermQuery(name)
	exact.SetField(fieldCourseTitle)
	exact.SetBoost(10)

	fuzzy := bleve.NewMatchQuery(name)
	fuzzy.SetField(fieldTitle)
	fuzzy.SetFuzziness(1)

	anyOf := []query.Query{exact, fuzzy}
	for _, word := range strings.Fields(strings.ToLower(name)) {
		// One-letter prefixes match nearly every title.
		if len([]rune(word)) < 2 {
			continue
		}
		prefix := bleve.NewPrefixQuery(word)
		prefix.SetField(fieldTitle)
		prefix.SetBoost(0.5)
		anyOf = append(anyOf, prefix)
	}

	q := bleve.NewConjunctionQuery(
		kindQuery(kindCourse),
		bleve.NewDisjunctionQuery(anyOf...),
	)
	req := bleve.NewSearchRequestOptions(q, 1, 0, false)
	res, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return "", false, fmt.Errorf("bleve: match course: %w", err)
	}
	if len(res.Hits) == 0 {
		return "", false, nil
	}
	return strings.TrimPrefix(res.Hits[0].ID, coursePrefix), true, nil
}

// Search runs a match query over chunk content with exact filters.
// Equal scores keep insertion order.
func (i *Index) Search(
	ctx context.Context, text string, filter driven.KeywordFilter, limit int,
) ([]driven.SearchHit, error) {
	if limit <= 0 || strings.TrimSpace(text) == "" {
		return nil, nil
	}
	i.mu.RLock()
	defer i.mu.RUnlock()

	content := bleve.NewMatchQuery(text)
	content.SetField(fieldContent)

	conjuncts := []query.Query{kindQuery(kindChunk), content}
	if filter.CourseTitle != "" {
		conjuncts = append(conjuncts, termQuery(fieldCourseTitle, filter.CourseTitle))
	}
	if filter.LessonNumber != nil {
		conjuncts = append(conjuncts, termQuery(fieldLesson, strconv.Itoa(*filter.LessonNumber)))
	}

	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(conjuncts...), limit, 0, false)
	req.SortBy([]string{"-_score", fieldSeq})
	res, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve: search: %w", err)
	}

	hits := make([]driven.SearchHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, driven.SearchHit{
			ChunkID: strings.TrimPrefix(h.ID, chunkPrefix),
			Score:   h.Score,
		})
	}
	return hits, nil
}

// DeleteCourse removes a course title and all of its chunks.
func (i *Index) DeleteCourse(ctx context.Context, title string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	for {
		req := bleve.NewSearchRequestOptions(termQuery(fieldCourseTitle, title), deleteBatch, 0, false)
		res, err := i.index.SearchInContext(ctx, req)
		if err != nil {
			return fmt.Errorf("bleve: find course %q: %w", title, err)
		}
		if len(res.Hits) == 0 {
			return nil
		}
		batch := i.index.NewBatch()
		for _, h := range res.Hits {
			batch.Delete(h.ID)
		}
		if err := i.index.Batch(batch); err != nil {
			return fmt.Errorf("bleve: delete course %q: %w", title, err)
		}
	}
}

// Clear replaces the index with an empty one.
func (i *Index) Clear(_ context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("bleve: create index: %w", err)
	}
	old := i.index
	i.index = fresh
	i.seq = 0
	return old.Close()
}

// Count returns the number of indexed documents.
func (i *Index) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.index.DocCount()
}

// Close closes the index and releases resources.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.index.Close()
}

func kindQuery(kind string) query.Query {
	return termQuery(fieldKind, kind)
}

func termQuery(field, value string) query.Query {
	q := bleve.NewTermQuery(value)
	q.SetField(field)
	return q
}
