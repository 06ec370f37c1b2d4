package chat

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coursemate/internal/core/domain"
)

type mockQueryService struct {
	answer *domain.Answer
	err    error
	reqs   []domain.QueryRequest
}

func (m *mockQueryService) Query(_ context.Context, req domain.QueryRequest) (*domain.Answer, error) {
	m.reqs = append(m.reqs, req)
	return m.answer, m.err
}

type mockSessionService struct {
	cleared []string
}

func (m *mockSessionService) Create(context.Context) (string, error) { return "session_1", nil }
func (m *mockSessionService) History(context.Context, string) (string, error) {
	return "", nil
}
func (m *mockSessionService) Record(context.Context, string, domain.Exchange) error { return nil }
func (m *mockSessionService) Clear(_ context.Context, id string) error {
	m.cleared = append(m.cleared, id)
	return nil
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func newReadyView(q *mockQueryService, s *mockSessionService) *View {
	var v *View
	if s == nil {
		v = NewView(nil, nil, q, nil)
	} else {
		v = NewView(nil, nil, q, s)
	}
	v.SetDimensions(100, 30)
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, &mockQueryService{}, nil)

	require.NotNil(t, v)
	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
	assert.NotNil(t, v.Init())
}

func TestView_AskAndAnswer(t *testing.T) {
	q := &mockQueryService{answer: &domain.Answer{
		Text:      "Lesson 1 covers variables.",
		Citations: []domain.Citation{{Text: "Introduction to Programming - Lesson 1"}},
		SessionID: "session_1",
	}}
	v := newReadyView(q, nil)
	v.SetInput("What is lesson 1 about?")

	v, cmd := v.Update(enter())
	require.NotNil(t, cmd)
	assert.True(t, v.Thinking())
	assert.Empty(t, v.Input())
	require.Len(t, v.Turns(), 1)
	assert.True(t, v.Turns()[0].Pending)

	msg := cmd()
	answer, ok := msg.(messages.AnswerReceived)
	require.True(t, ok)
	assert.Equal(t, "", q.reqs[0].SessionID)

	v, _ = v.Update(answer)
	assert.False(t, v.Thinking())
	assert.Equal(t, "session_1", v.SessionID())
	assert.Equal(t, "Lesson 1 covers variables.", v.Turns()[0].Answer)
	assert.Equal(t, status.StateAnswered, v.statusbar.State())
	assert.Equal(t, 1, v.statusbar.SourceCount())
	assert.Contains(t, v.View(), "Lesson 1 covers variables.")
}

func TestView_FollowUpReusesSession(t *testing.T) {
	q := &mockQueryService{answer: &domain.Answer{Text: "ok", SessionID: "session_7"}}
	v := newReadyView(q, nil)

	v.SetInput("first")
	_, cmd := v.Update(enter())
	v.Update(cmd())

	v.SetInput("second")
	_, cmd = v.Update(enter())
	cmd()

	require.Len(t, q.reqs, 2)
	assert.Equal(t, "session_7", q.reqs[1].SessionID)
}

func TestView_EmptyQuestionIgnored(t *testing.T) {
	v := newReadyView(&mockQueryService{}, nil)
	v.SetInput("   ")

	_, cmd := v.Update(enter())

	assert.Nil(t, cmd)
	assert.Empty(t, v.Turns())
}

func TestView_NoSecondQuestionWhileThinking(t *testing.T) {
	v := newReadyView(&mockQueryService{}, nil)
	v.SetInput("first")
	v.Update(enter())

	v.SetInput("second")
	_, cmd := v.Update(enter())

	assert.Nil(t, cmd)
	assert.Len(t, v.Turns(), 1)
}

func TestView_AnswerError(t *testing.T) {
	q := &mockQueryService{err: domain.ErrLLMUnavailable}
	v := newReadyView(q, nil)
	v.SetInput("hello")

	_, cmd := v.Update(enter())
	v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrLLMUnavailable)
	assert.Equal(t, status.StateError, v.statusbar.State())
	assert.Empty(t, v.SessionID())
	assert.Error(t, v.Turns()[0].Err)
}

func TestView_NoQueryService(t *testing.T) {
	v := NewView(nil, nil, nil, nil)
	v.SetDimensions(80, 24)
	v.SetInput("hello")

	_, cmd := v.Update(enter())
	msg := cmd().(messages.AnswerReceived)

	assert.ErrorIs(t, msg.Err, ErrNoQueryService)
}

func TestView_NewSessionClearsHistory(t *testing.T) {
	q := &mockQueryService{answer: &domain.Answer{Text: "ok", SessionID: "session_3"}}
	sessions := &mockSessionService{}
	v := newReadyView(q, sessions)

	v.SetInput("hello")
	_, cmd := v.Update(enter())
	v.Update(cmd())
	require.Equal(t, "session_3", v.SessionID())

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlN})

	assert.Empty(t, v.SessionID())
	assert.Empty(t, v.Turns())
	assert.Equal(t, []string{"session_3"}, sessions.cleared)
	assert.Equal(t, "New conversation", v.statusbar.Message())
}

func TestView_EscGoesToMenu(t *testing.T) {
	v := newReadyView(&mockQueryService{}, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_TypingGoesToInput(t *testing.T) {
	v := newReadyView(&mockQueryService{}, nil)

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("mcp")})

	assert.Equal(t, "mcp", v.Input())
}

func TestView_ErrorOccurred(t *testing.T) {
	v := newReadyView(&mockQueryService{}, nil)

	v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
	assert.Equal(t, status.StateError, v.statusbar.State())
}
