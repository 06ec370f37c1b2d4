package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// OutlineToolName is the dispatch key of the outline lookup tool.
const OutlineToolName = "get_course_outline"

// Ensure CourseOutlineTool implements the interface.
var _ Tool = (*CourseOutlineTool)(nil)

type outlineArgs struct {
	CourseTitle *string `json:"course_title"`
}

// CourseOutlineTool renders a course's lesson list by exact title.
type CourseOutlineTool struct {
	index driven.SemanticIndex
}

// NewCourseOutlineTool creates an outline lookup tool over the given index.
func NewCourseOutlineTool(index driven.SemanticIndex) *CourseOutlineTool {
	return &CourseOutlineTool{index: index}
}

// Definition returns the model-facing schema.
func (t *CourseOutlineTool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        OutlineToolName,
		Description: "Get the complete course outline including title, course link, and every lesson with its number and title",
		InputSchema: domain.ToolSchema{
			Type: "object",
			Properties: map[string]domain.SchemaProperty{
				"course_title": {
					Type:        "string",
					Description: "The exact course title to get the outline for",
				},
			},
			Required: []string{"course_title"},
		},
	}
}

// Execute looks up one catalog entry. Every outcome, including lookup
// failures, is returned as text.
func (t *CourseOutlineTool) Execute(ctx context.Context, args map[string]any) (domain.ToolOutput, error) {
	var in outlineArgs
	if err := decodeArgs(OutlineToolName, args, &in); err != nil {
		return validationOutput(err)
	}
	if err := requireString(OutlineToolName, "course_title", in.CourseTitle); err != nil {
		return validationOutput(err)
	}

	title := *in.CourseTitle
	entry, err := t.index.CatalogEntry(ctx, title)
	switch {
	case errors.Is(err, domain.ErrNotFound), err == nil && entry == nil:
		return domain.TextOutput(fmt.Sprintf("Course '%s' not found.", title)), nil
	case err != nil:
		logger.Warn("get_course_outline: %v", err)
		return domain.TextOutput(fmt.Sprintf("Error retrieving course outline: %v", err)), nil
	}

	return domain.TextOutput(RenderOutline(entry)), nil
}

// RenderOutline formats a catalog entry as a plain-text outline.
func RenderOutline(entry *domain.CatalogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", entry.Title)
	if entry.Instructor != "" {
		fmt.Fprintf(&b, "Instructor: %s\n", entry.Instructor)
	}
	link := entry.CourseLink
	if link == "" {
		link = "No course link available"
	}
	fmt.Fprintf(&b, "Course Link: %s\n\n", link)
	b.WriteString("Lessons:\n")

	lessons := domain.DecodeLessons(entry.LessonsJSON)
	if len(lessons) == 0 {
		b.WriteString("  No lessons are available for this course.")
		return b.String()
	}
	for _, l := range lessons {
		title := l.LessonTitle
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&b, "  Lesson %d: %s\n", l.LessonNumber, title)
	}
	return b.String()
}
