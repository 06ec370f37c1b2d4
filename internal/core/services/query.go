package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService answers questions about the course catalog.
type QueryService struct {
	orchestrator *Orchestrator
	index        driven.SemanticIndex
	sessions     driving.SessionService
	prompts      driven.PromptStore
}

// NewQueryService creates a query service.
// prompts may be nil, in which case the built-in system directive is used.
func NewQueryService(
	orchestrator *Orchestrator,
	index driven.SemanticIndex,
	sessions driving.SessionService,
	prompts driven.PromptStore,
) *QueryService {
	return &QueryService{
		orchestrator: orchestrator,
		index:        index,
		sessions:     sessions,
		prompts:      prompts,
	}
}

// Query answers one question within a session.
func (s *QueryService) Query(ctx context.Context, req domain.QueryRequest) (*domain.Answer, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		id, err := s.sessions.Create(ctx)
		if err != nil {
			return nil, err
		}
		sessionID = id
		logger.Debug("Created session %s", sessionID)
	}

	history, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	system := BuildSystemDirective(s.systemPrompt(), history)

	// Fresh tools per query keep citation state request-scoped.
	tools := NewCourseTools(s.index)

	turn, err := s.orchestrator.Run(ctx, tools, system, query)
	if err != nil {
		return nil, fmt.Errorf("answer query: %w", err)
	}

	if err := s.sessions.Record(ctx, sessionID, domain.Exchange{Query: query, Answer: turn.Text}); err != nil {
		logger.Warn("Failed to record exchange: %v", err)
	}

	citations := turn.Citations
	if citations == nil {
		citations = []domain.Citation{}
	}

	return &domain.Answer{
		Text:      turn.Text,
		Citations: citations,
		SessionID: sessionID,
	}, nil
}

func (s *QueryService) systemPrompt() string {
	if s.prompts == nil {
		return driven.DefaultCourseSystemPrompt
	}
	prompt, err := s.prompts.Load(driven.PromptCourseSystem)
	if err != nil || strings.TrimSpace(prompt) == "" {
		logger.Warn("Using built-in system prompt: %v", err)
		return driven.DefaultCourseSystemPrompt
	}
	return prompt
}
