package services

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// Tool is a retrieval capability the model may invoke by name.
type Tool interface {
	// Definition returns the model-facing schema. Its Name is the dispatch key.
	Definition() domain.ToolDefinition

	// Execute runs the tool. Resolution misses and invalid arguments are
	// returned as output text; the error is reserved for dependency faults.
	Execute(ctx context.Context, args map[string]any) (domain.ToolOutput, error)
}

// CitationSource is implemented by tools that remember the citations of their last call.
type CitationSource interface {
	// LastCitations returns the citations produced by the most recent call.
	LastCitations() []domain.Citation

	// ResetCitations clears the remembered citations.
	ResetCitations()
}
