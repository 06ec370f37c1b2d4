package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// embedBatchSize bounds the texts sent per embedding request.
const embedBatchSize = 64

// IngestService loads course files into the store and both indexes.
type IngestService struct {
	sources     driven.CourseSourceFactory
	normalisers driven.NormaliserRegistry
	chunker     driven.Chunker
	store       driven.CourseStore
	keyword     driven.KeywordIndex
	vectors     driven.VectorIndex
	embedder    driven.EmbeddingService
}

// NewIngestService creates an ingest service.
// vectors and embedder are optional; without them only keyword indexing is performed.
func NewIngestService(
	sources driven.CourseSourceFactory,
	normalisers driven.NormaliserRegistry,
	chunker driven.Chunker,
	store driven.CourseStore,
	keyword driven.KeywordIndex,
	vectors driven.VectorIndex,
	embedder driven.EmbeddingService,
) *IngestService {
	return &IngestService{
		sources:     sources,
		normalisers: normalisers,
		chunker:     chunker,
		store:       store,
		keyword:     keyword,
		vectors:     vectors,
		embedder:    embedder,
	}
}

func (s *IngestService) semantic() bool {
	return s.vectors != nil && s.embedder != nil
}

// IngestDirectory ingests every supported file in dir.
// Courses already in the catalog are skipped unless clear is set.
// Files that fail to parse are logged and skipped.
func (s *IngestService) IngestDirectory(ctx context.Context, dir string, clear bool) (*driving.IngestResult, error) {
	logger.Section("Ingest")
	logger.Info("Directory: %s (clear=%t)", dir, clear)

	src, err := s.sources.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	defer src.Close()

	if clear {
		if err := s.clear(ctx); err != nil {
			return nil, err
		}
	}

	existing, err := s.existingTitles(ctx)
	if err != nil {
		return nil, err
	}

	docs, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	result := &driving.IngestResult{}
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		doc, err := s.normalise(ctx, &docs[i])
		if err != nil {
			logger.Warn("Skipping %s: %v", docs[i].URI, err)
			result.Skipped++
			continue
		}
		if existing[doc.Course.Title] {
			logger.Debug("Course already exists: %s", doc.Course.Title)
			result.Skipped++
			continue
		}

		chunks, err := s.index(ctx, doc)
		if err != nil {
			return result, fmt.Errorf("ingest %s: %w", docs[i].URI, err)
		}
		existing[doc.Course.Title] = true
		result.Courses++
		result.Chunks += chunks
		logger.Info("Added course %q: %d chunks", doc.Course.Title, chunks)
	}

	return result, nil
}

// Watch re-ingests changed files in dir until ctx is cancelled.
// Created and updated files replace their course; deleted files remove it.
func (s *IngestService) Watch(ctx context.Context, dir string, onEvent func(driving.IngestEvent)) error {
	src, err := s.sources.Open(dir)
	if err != nil {
		return fmt.Errorf("open %s: %w", dir, err)
	}
	defer src.Close()

	changes, err := src.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			result, err := s.apply(ctx, change)
			if err != nil {
				logger.Error("%s %s: %v", change.Type, change.Document.URI, err)
			}
			if onEvent != nil {
				onEvent(driving.IngestEvent{Change: change, Result: result, Err: err})
			}
		}
	}
}

func (s *IngestService) apply(ctx context.Context, change domain.RawDocumentChange) (*driving.IngestResult, error) {
	result := &driving.IngestResult{}

	switch change.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		doc, err := s.normalise(ctx, &change.Document)
		if err != nil {
			result.Skipped++
			return result, err
		}
		// A renamed course leaves its old title behind under the same file.
		if err := s.removeByURI(ctx, change.Document.URI, doc.Course.Title); err != nil {
			return result, err
		}
		if err := s.remove(ctx, doc.Course.Title); err != nil {
			return result, err
		}
		chunks, err := s.index(ctx, doc)
		if err != nil {
			return result, err
		}
		result.Courses = 1
		result.Chunks = chunks

	case domain.ChangeDeleted:
		if err := s.removeByURI(ctx, change.Document.URI, ""); err != nil {
			return result, err
		}
		result.Removed = 1
	}

	return result, nil
}

func (s *IngestService) normalise(ctx context.Context, raw *domain.RawDocument) (*domain.CourseDocument, error) {
	n, err := s.normalisers.Get(raw.MIMEType)
	if err != nil {
		return nil, err
	}
	doc, err := n.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise: %w", err)
	}
	if doc.URI == "" {
		doc.URI = raw.URI
	}
	if strings.TrimSpace(doc.Course.Title) == "" {
		base := filepath.Base(raw.URI)
		doc.Course.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return doc, nil
}

// index chunks, embeds and stores one course. Returns the number of chunks.
func (s *IngestService) index(ctx context.Context, doc *domain.CourseDocument) (int, error) {
	// 1. CHUNK
	chunks, err := s.chunker.Chunk(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}

	entry := domain.NewCatalogEntry(doc.Course)
	entry.SourceURI = doc.URI

	// 2. EMBED (if available)
	if s.semantic() {
		if err := s.embed(ctx, &entry, chunks); err != nil {
			return 0, err
		}
	}

	// 3. SAVE TO COURSE STORE
	if err := s.store.SaveCourse(ctx, &entry); err != nil {
		return 0, fmt.Errorf("save course: %w", err)
	}
	if err := s.store.SaveChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("save chunks: %w", err)
	}

	// 4. INDEX FOR KEYWORD SEARCH
	if err := s.keyword.IndexCourse(ctx, doc.Course); err != nil {
		return 0, fmt.Errorf("index course: %w", err)
	}
	if err := s.keyword.IndexChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("index chunks: %w", err)
	}

	// 5. INDEX FOR VECTOR SEARCH (if available)
	if s.semantic() {
		if err := s.upsertVectors(ctx, &entry, chunks); err != nil {
			return 0, err
		}
	}

	return len(chunks), nil
}

func (s *IngestService) embed(ctx context.Context, entry *domain.CatalogEntry, chunks []domain.CourseChunk) error {
	titleVec, err := s.embedder.Embed(ctx, entry.Title)
	if err != nil {
		return fmt.Errorf("embed title: %w", err)
	}
	entry.Embedding = titleVec

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}
		vecs, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if len(vecs) != len(texts) {
			return fmt.Errorf("embed chunks: got %d vectors for %d texts", len(vecs), len(texts))
		}
		for i := range vecs {
			chunks[start+i].Embedding = vecs[i]
		}
	}
	return nil
}

func (s *IngestService) upsertVectors(ctx context.Context, entry *domain.CatalogEntry, chunks []domain.CourseChunk) error {
	dims := s.embedder.Dimensions()
	for _, c := range []string{driven.CollectionCatalog, driven.CollectionContent} {
		if err := s.vectors.EnsureCollection(ctx, c, dims); err != nil {
			return fmt.Errorf("ensure collection %s: %w", c, err)
		}
	}

	catalog := driven.VectorRecord{
		ID:      domain.CatalogVectorID(entry.Title),
		Vector:  entry.Embedding,
		Payload: driven.VectorPayload{CourseTitle: entry.Title},
	}
	if err := s.vectors.Upsert(ctx, driven.CollectionCatalog, []driven.VectorRecord{catalog}); err != nil {
		return fmt.Errorf("upsert catalog vector: %w", err)
	}

	records := make([]driven.VectorRecord, 0, len(chunks))
	for _, c := range chunks {
		if c.Embedding == nil {
			continue
		}
		records = append(records, driven.VectorRecord{
			ID:     c.ID,
			Vector: c.Embedding,
			Payload: driven.VectorPayload{
				CourseTitle:  c.CourseTitle,
				LessonNumber: c.LessonNumber,
			},
		})
	}
	if err := s.vectors.Upsert(ctx, driven.CollectionContent, records); err != nil {
		return fmt.Errorf("upsert content vectors: %w", err)
	}
	return nil
}

func (s *IngestService) existingTitles(ctx context.Context) (map[string]bool, error) {
	entries, err := s.store.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	titles := make(map[string]bool, len(entries))
	for _, e := range entries {
		titles[e.Title] = true
	}
	return titles, nil
}

// remove deletes a course from the store and both indexes.
func (s *IngestService) remove(ctx context.Context, title string) error {
	if err := s.store.DeleteCourse(ctx, title); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete course: %w", err)
	}
	if err := s.keyword.DeleteCourse(ctx, title); err != nil {
		logger.Debug("Failed to delete keyword entries for %s: %v", title, err)
	}
	if s.vectors != nil {
		filter := driven.VectorFilter{CourseTitle: title}
		for _, c := range []string{driven.CollectionCatalog, driven.CollectionContent} {
			if err := s.vectors.Delete(ctx, c, filter); err != nil {
				logger.Debug("Failed to delete vectors for %s in %s: %v", title, c, err)
			}
		}
	}
	return nil
}

// removeByURI deletes every course read from uri except keep.
func (s *IngestService) removeByURI(ctx context.Context, uri, keep string) error {
	entries, err := s.store.ListCourses(ctx)
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}
	for _, e := range entries {
		if e.SourceURI == uri && e.Title != keep {
			logger.Debug("Removing %q (from %s)", e.Title, uri)
			if err := s.remove(ctx, e.Title); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *IngestService) clear(ctx context.Context) error {
	logger.Info("Clearing catalog and indexes")
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	if err := s.keyword.Clear(ctx); err != nil {
		return fmt.Errorf("clear keyword index: %w", err)
	}
	if s.vectors != nil {
		for _, c := range []string{driven.CollectionCatalog, driven.CollectionContent} {
			if err := s.vectors.DeleteCollection(ctx, c); err != nil {
				return fmt.Errorf("clear %s: %w", c, err)
			}
		}
	}
	return nil
}
