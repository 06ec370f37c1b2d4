package driving

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// QueryService answers course questions.
type QueryService interface {
	// Query answers a question within a session, creating one when SessionID is empty.
	// Returns domain.ErrInvalidInput for an empty question.
	Query(ctx context.Context, req domain.QueryRequest) (*domain.Answer, error)
}

// SessionService manages conversation sessions.
type SessionService interface {
	// Create starts a new empty session and returns its ID.
	Create(ctx context.Context) (string, error)

	// History returns the rendered history of a session, or "" for unknown sessions.
	History(ctx context.Context, id string) (string, error)

	// Record appends an exchange to a session, creating the session if needed.
	Record(ctx context.Context, id string, exchange domain.Exchange) error

	// Clear deletes a session.
	Clear(ctx context.Context, id string) error
}
