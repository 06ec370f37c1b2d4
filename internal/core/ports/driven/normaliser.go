package driven

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// Normaliser transforms a raw course file into a course document.
// Each normaliser handles specific MIME types (e.g., PDF, plain text).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	Priority() int

	// Normalise parses a raw document into course metadata and lesson bodies.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.CourseDocument, error)
}

// NormaliserRegistry selects a normaliser for a MIME type.
type NormaliserRegistry interface {
	// Register adds a normaliser.
	Register(n Normaliser)

	// Get returns the highest-priority normaliser for a MIME type.
	Get(mimeType string) (Normaliser, error)
}
