package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// SessionService keeps a bounded exchange history per conversation.
type SessionService struct {
	store      driven.SessionStore
	maxHistory int
}

// NewSessionService creates a session service.
// maxHistory <= 0 uses domain.DefaultMaxHistory.
func NewSessionService(store driven.SessionStore, maxHistory int) *SessionService {
	if maxHistory <= 0 {
		maxHistory = domain.DefaultMaxHistory
	}
	return &SessionService{
		store:      store,
		maxHistory: maxHistory,
	}
}

// Create starts a new empty session.
func (s *SessionService) Create(ctx context.Context) (string, error) {
	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return session.ID, nil
}

// History returns the rendered history, or "" when the session is unknown.
func (s *SessionService) History(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	session, err := s.store.GetSession(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	return session.History(), nil
}

// Record appends an exchange, creating the session when it does not exist.
func (s *SessionService) Record(ctx context.Context, id string, exchange domain.Exchange) error {
	if id == "" {
		return fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}

	session, err := s.store.GetSession(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		session = &domain.Session{ID: id, CreatedAt: time.Now()}
	case err != nil:
		return fmt.Errorf("get session: %w", err)
	}

	session.Append(exchange, s.maxHistory)
	if err := s.store.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear deletes a session. Unknown sessions are ignored.
func (s *SessionService) Clear(ctx context.Context, id string) error {
	if err := s.store.DeleteSession(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
