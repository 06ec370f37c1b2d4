package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// SearchToolName is the dispatch key of the content search tool.
const SearchToolName = "search_course_content"

const unknownCourse = "unknown"

// Ensure CourseSearchTool implements the interfaces.
var (
	_ Tool           = (*CourseSearchTool)(nil)
	_ CitationSource = (*CourseSearchTool)(nil)
)

type searchArgs struct {
	Query        *string `json:"query"`
	CourseName   *string `json:"course_name"`
	LessonNumber *int    `json:"lesson_number"`
}

// CourseSearchTool searches course content with optional course and lesson filters.
type CourseSearchTool struct {
	index driven.SemanticIndex

	mu        sync.Mutex
	citations []domain.Citation
}

// NewCourseSearchTool creates a content search tool over the given index.
func NewCourseSearchTool(index driven.SemanticIndex) *CourseSearchTool {
	return &CourseSearchTool{index: index}
}

// Definition returns the model-facing schema.
func (t *CourseSearchTool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        SearchToolName,
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: domain.ToolSchema{
			Type: "object",
			Properties: map[string]domain.SchemaProperty{
				"query": {
					Type:        "string",
					Description: "What to search for in the course content",
				},
				"course_name": {
					Type:        "string",
					Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": {
					Type:        "integer",
					Description: "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			Required: []string{"query"},
		},
	}
}

// Execute runs one index query and formats the rows with their provenance.
// The tool's citations are replaced on every call.
func (t *CourseSearchTool) Execute(ctx context.Context, args map[string]any) (domain.ToolOutput, error) {
	var in searchArgs
	if err := decodeArgs(SearchToolName, args, &in); err != nil {
		t.setCitations(nil)
		return validationOutput(err)
	}
	if err := requireString(SearchToolName, "query", in.Query); err != nil {
		t.setCitations(nil)
		return validationOutput(err)
	}

	filter := domain.SearchFilter{LessonNumber: in.LessonNumber}
	if in.CourseName != nil {
		filter.CourseName = strings.TrimSpace(*in.CourseName)
	}

	logger.Debug("search_course_content: query=%q course=%q lesson=%v",
		*in.Query, filter.CourseName, lessonLabel(filter.LessonNumber))

	results, err := t.index.Search(ctx, *in.Query, filter)
	if err != nil {
		t.setCitations(nil)
		return domain.ToolOutput{}, fmt.Errorf("search course content: %w", err)
	}

	if results.Error != "" {
		logger.Debug("search_course_content: resolution miss: %s", results.Error)
		t.setCitations(nil)
		return domain.TextOutput(results.Error), nil
	}

	if results.IsEmpty() {
		t.setCitations(nil)
		return domain.TextOutput(noContentMessage(filter)), nil
	}

	out := t.format(ctx, results)
	t.setCitations(out.Citations)
	logger.Debug("search_course_content: %d rows", len(out.Citations))
	return out, nil
}

// LastCitations returns the citations of the most recent call.
func (t *CourseSearchTool) LastCitations() []domain.Citation {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.citations) == 0 {
		return nil
	}
	out := make([]domain.Citation, len(t.citations))
	copy(out, t.citations)
	return out
}

// ResetCitations clears the remembered citations.
func (t *CourseSearchTool) ResetCitations() {
	t.setCitations(nil)
}

func (t *CourseSearchTool) setCitations(c []domain.Citation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.citations = c
}

func (t *CourseSearchTool) format(ctx context.Context, results domain.SearchResults) domain.ToolOutput {
	blocks := make([]string, 0, results.Len())
	citations := make([]domain.Citation, 0, results.Len())

	for i, doc := range results.Documents {
		var meta domain.ChunkMetadata
		if i < len(results.Metadata) {
			meta = results.Metadata[i]
		}

		title := meta.CourseTitle
		if title == "" {
			title = unknownCourse
		}

		label := title
		if meta.LessonNumber != nil {
			label += fmt.Sprintf(" - Lesson %d", *meta.LessonNumber)
		}

		blocks = append(blocks, "["+label+"]\n"+doc)
		citations = append(citations, domain.Citation{
			Text: label,
			Link: t.resolveLink(ctx, title, meta.LessonNumber),
		})
	}

	return domain.ToolOutput{
		Text:      strings.Join(blocks, "\n\n"),
		Citations: citations,
	}
}

// resolveLink returns the lesson link for lesson rows and the course link otherwise.
func (t *CourseSearchTool) resolveLink(ctx context.Context, title string, lesson *int) string {
	if title == unknownCourse {
		return ""
	}
	if lesson != nil {
		link, _ := t.index.LessonLink(ctx, title, *lesson)
		return link
	}
	link, _ := t.index.CourseLink(ctx, title)
	return link
}

func noContentMessage(f domain.SearchFilter) string {
	var b strings.Builder
	b.WriteString("No relevant content found")
	if f.HasCourse() {
		fmt.Fprintf(&b, " in course '%s'", f.CourseName)
	}
	if f.HasLesson() {
		fmt.Fprintf(&b, " in lesson %d", *f.LessonNumber)
	}
	b.WriteString(".")
	return b.String()
}

func lessonLabel(n *int) any {
	if n == nil {
		return "none"
	}
	return *n
}
