package driving

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// CatalogService exposes the course catalog and the retrieval tools to
// external actors that drive the tools directly (MCP, CLI).
type CatalogService interface {
	// Analytics returns the course count and titles.
	Analytics(ctx context.Context) (*domain.CourseAnalytics, error)

	// Outline renders the outline of a course by exact title.
	Outline(ctx context.Context, title string) (string, error)

	// SearchContent runs the content search tool with the given arguments.
	SearchContent(ctx context.Context, args map[string]any) (domain.ToolOutput, error)
}

// IngestResult summarises an ingestion run.
type IngestResult struct {
	Courses int
	Chunks  int
	Skipped int
	Removed int
}

// IngestEvent reports the outcome of one watched change.
type IngestEvent struct {
	Change domain.RawDocumentChange
	Result *IngestResult
	Err    error
}

// IngestService loads course documents into the catalog and index.
type IngestService interface {
	// IngestDirectory ingests every supported file in dir.
	// Existing courses are skipped unless clear is set, in which case everything is removed first.
	IngestDirectory(ctx context.Context, dir string, clear bool) (*IngestResult, error)

	// Watch re-ingests files in dir as they change until ctx is cancelled.
	// onEvent is called after each change is applied.
	Watch(ctx context.Context, dir string, onEvent func(IngestEvent)) error
}
