// Package chat provides the conversational question and answer view for the TUI.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
)

// View is the chat view with a transcript, question input, and status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript *transcript.Transcript
	statusbar  *status.Bar

	queryService   driving.QueryService
	sessionService driving.SessionService
	ctx            context.Context

	sessionID string
	thinking  bool
	width     int
	height    int
	ready     bool
	err       error
}

// NewView creates a new chat view. sessions may be nil, in which case
// starting a new conversation only forgets the session ID.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	queryService driving.QueryService,
	sessions driving.SessionService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:         s,
		keymap:         km,
		input:          input.NewQuestionInput(s),
		transcript:     transcript.New(s),
		statusbar:      status.NewBar(s, km),
		queryService:   queryService,
		sessionService: sessions,
		ctx:            context.Background(),
		width:          80,
		height:         24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.Fail(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case key.Matches(msg, v.keymap.NewSession):
		v.newSession()
		return v, nil

	case key.Matches(msg, v.keymap.PageUp, v.keymap.PageDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case key.Matches(msg, v.keymap.Send):
		question := strings.TrimSpace(v.input.Value())
		if question == "" || v.thinking {
			return v, nil
		}
		v.thinking = true
		v.err = nil
		v.input.SetValue("")
		v.transcript.Ask(question)
		v.statusbar.Start()
		return v, v.ask(question)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask runs a query in the current session.
func (v *View) ask(question string) tea.Cmd {
	sessionID := v.sessionID
	return func() tea.Msg {
		if v.queryService == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoQueryService}
		}
		answer, err := v.queryService.Query(v.ctx, domain.QueryRequest{
			Query:     question,
			SessionID: sessionID,
		})
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

// handleAnswer records an answer in the transcript.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.thinking = false
	v.transcript.Resolve(msg.Answer, msg.Err)

	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.Fail(msg.Err)
		return
	}

	v.err = nil
	sources := 0
	if msg.Answer != nil {
		v.sessionID = msg.Answer.SessionID
		sources = len(msg.Answer.Citations)
	}
	v.statusbar.Answered(sources)
}

// newSession forgets the conversation and clears its server-side history.
func (v *View) newSession() {
	if v.sessionService != nil && v.sessionID != "" {
		// A failed clear only leaves an orphaned session behind.
		_ = v.sessionService.Clear(v.ctx, v.sessionID)
	}
	v.sessionID = ""
	v.thinking = false
	v.err = nil
	v.transcript.Clear()
	v.input.SetValue("")
	v.statusbar.Clear()
	v.statusbar.Notify("New conversation")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("Coursemate"),
		"",
		v.transcript.View(),
		"",
		v.input.View(),
		"",
		v.statusbar.View(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// Reserve space for header, input, and status bar
	v.transcript.SetDimensions(width, height-9)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Reset focuses the input without dropping the conversation.
func (v *View) Reset() {
	v.input.Focus()
	v.input.SetValue("")
}

// SessionID returns the active session ID, or "" before the first answer.
func (v *View) SessionID() string {
	return v.sessionID
}

// Thinking reports whether a question is awaiting its answer.
func (v *View) Thinking() bool {
	return v.thinking
}

// Turns returns the conversation so far.
func (v *View) Turns() []transcript.Turn {
	return v.transcript.Turns()
}

// Input returns the current input value.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput sets the input value.
func (v *View) SetInput(s string) {
	v.input.SetValue(s)
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
