// Package status renders the chat status line: what the assistant is doing
// on the left and the key hints that apply on the right.
package status

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/styles"
)

// State is what the status line is reporting.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateAnswered State = "answered"
	StateError    State = "error"
)

// Bar is a passive component; the chat view drives it through Start,
// Answered, Fail and Notify.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	now    func() time.Time

	state   State
	message string
	sources int
	started time.Time
	elapsed time.Duration
	width   int
}

func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keymap: km,
		now:    time.Now,
		state:  StateReady,
		width:  80,
	}
}

func (b *Bar) Init() tea.Cmd {
	return nil
}

func (b *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	return b, nil
}

// Start marks a question as in flight and starts timing it.
func (b *Bar) Start() {
	b.state = StateThinking
	b.message = ""
	b.started = b.now()
	b.elapsed = 0
}

// Answered records how many sources backed the answer and how long it took.
func (b *Bar) Answered(sources int) {
	b.state = StateAnswered
	b.message = ""
	b.sources = sources
	if !b.started.IsZero() {
		b.elapsed = b.now().Sub(b.started)
	}
}

// Fail shows err until the next question.
func (b *Bar) Fail(err error) {
	b.state = StateError
	b.message = ""
	if err != nil {
		b.message = err.Error()
	}
}

// Notify shows a one-off message in the ready state.
func (b *Bar) Notify(message string) {
	b.state = StateReady
	b.message = message
}

// Clear returns to the initial ready state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.sources = 0
	b.started = time.Time{}
	b.elapsed = 0
}

func (b *Bar) View() string {
	left := b.describe()
	right := b.hints()
	gap := max(b.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) describe() string {
	switch b.state {
	case StateThinking:
		return b.styles.Muted.Render("Thinking...")
	case StateError:
		if b.message == "" {
			return b.styles.Error.Render("Error")
		}
		return b.styles.Error.Render("Error: " + b.message)
	case StateAnswered:
		text := "Answered"
		switch {
		case b.sources == 1:
			text = "1 source"
		case b.sources > 1:
			text = fmt.Sprintf("%d sources", b.sources)
		}
		if b.elapsed > 0 {
			text += " in " + b.elapsed.Round(100*time.Millisecond).String()
		}
		return b.styles.Normal.Render(text)
	}
	if b.message != "" {
		return b.styles.Muted.Render(b.message)
	}
	return b.styles.Muted.Render("Ready")
}

// hints lists the chat bindings once there is a conversation to continue.
func (b *Bar) hints() string {
	bindings := b.keymap.ShortHelp()
	if b.state == StateAnswered {
		bindings = b.keymap.ChatHelp()
	}
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return b.styles.Muted.Render(strings.Join(parts, " | "))
}

func (b *Bar) State() State { return b.state }

func (b *Bar) Message() string { return b.message }

func (b *Bar) SourceCount() int { return b.sources }

// Elapsed is how long the last answered question took.
func (b *Bar) Elapsed() time.Duration { return b.elapsed }

func (b *Bar) Width() int { return b.width }

func (b *Bar) SetWidth(width int) { b.width = width }
