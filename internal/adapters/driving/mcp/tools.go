package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/services"
)

// SearchInput is the input schema for the course search tool.
type SearchInput struct {
	Query        string `json:"query" jsonschema:"what to search for in the course content"`
	CourseName   string `json:"course_name,omitempty" jsonschema:"course title, partial matches work"`
	LessonNumber *int   `json:"lesson_number,omitempty" jsonschema:"specific lesson number to search within"`
}

// SearchOutput is the output schema for the course search tool.
type SearchOutput struct {
	Text    string         `json:"text"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is one citation backing a result.
type SourceOutput struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

// OutlineInput is the input schema for the outline tool.
type OutlineInput struct {
	CourseTitle string `json:"course_title" jsonschema:"course title, partial matches work"`
}

// OutlineOutput is the output schema for the outline tool.
type OutlineOutput struct {
	Outline string `json:"outline"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the question about the course materials"`
	SessionID string `json:"session_id,omitempty" jsonschema:"session to continue, empty starts a new one"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string         `json:"answer"`
	Sources   []SourceOutput `json:"sources"`
	SessionID string         `json:"session_id"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        services.SearchToolName,
		Description: "Search course materials with smart course name matching and lesson filtering",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        services.OutlineToolName,
		Description: "Get a course outline: title, link, instructor and the numbered lesson list",
	}, s.handleOutline)

	if s.ports.Query != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question about the course materials, citing sources",
		}, s.handleAsk)
	}
}

// handleSearch handles the course search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	args := map[string]any{"query": input.Query}
	if input.CourseName != "" {
		args["course_name"] = input.CourseName
	}
	if input.LessonNumber != nil {
		args["lesson_number"] = *input.LessonNumber
	}

	out, err := s.ports.Catalog.SearchContent(ctx, args)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{
		Text:    out.Text,
		Sources: toSourceOutputs(out.Citations),
	}, nil
}

// handleOutline handles the outline tool invocation.
func (s *Server) handleOutline(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OutlineInput,
) (*mcp.CallToolResult, OutlineOutput, error) {
	text, err := s.ports.Catalog.Outline(ctx, input.CourseTitle)
	if err != nil {
		return nil, OutlineOutput{}, err
	}
	return nil, OutlineOutput{Outline: text}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Query.Query(ctx, domain.QueryRequest{
		Query:     input.Question,
		SessionID: input.SessionID,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{
		Answer:    answer.Text,
		Sources:   toSourceOutputs(answer.Citations),
		SessionID: answer.SessionID,
	}, nil
}

func toSourceOutputs(citations []domain.Citation) []SourceOutput {
	out := make([]SourceOutput, len(citations))
	for i, c := range citations {
		out[i] = SourceOutput{Text: c.Text, Link: c.Link}
	}
	return out
}
