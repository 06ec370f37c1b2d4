// Package transcript renders the scrolling conversation history.
package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// Turn is one question with its answer or failure.
type Turn struct {
	Question string
	Answer   string
	Sources  []domain.Citation
	Err      error
	Pending  bool
}

// Transcript displays turns in a scrollable viewport.
type Transcript struct {
	styles   *styles.Styles
	viewport viewport.Model
	turns    []Turn
}

// New creates an empty transcript.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}
	t := &Transcript{
		styles:   s,
		viewport: viewport.New(80, 10),
	}
	t.refresh()
	return t
}

// Update forwards scroll keys to the viewport.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	return t.viewport.View()
}

// Ask appends a pending turn for question.
func (t *Transcript) Ask(question string) {
	t.turns = append(t.turns, Turn{Question: question, Pending: true})
	t.refresh()
}

// Resolve completes the most recent pending turn.
func (t *Transcript) Resolve(answer *domain.Answer, err error) {
	if len(t.turns) == 0 {
		return
	}
	last := &t.turns[len(t.turns)-1]
	last.Pending = false
	last.Err = err
	if answer != nil {
		last.Answer = answer.Text
		last.Sources = answer.Citations
	}
	t.refresh()
}

// Clear removes all turns.
func (t *Transcript) Clear() {
	t.turns = nil
	t.refresh()
}

// Turns returns the recorded turns.
func (t *Transcript) Turns() []Turn {
	return t.turns
}

// SetDimensions resizes the viewport.
func (t *Transcript) SetDimensions(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = max(height, 1)
	t.refresh()
}

func (t *Transcript) refresh() {
	t.viewport.SetContent(t.render())
	t.viewport.GotoBottom()
}

func (t *Transcript) render() string {
	if len(t.turns) == 0 {
		return t.styles.Muted.Render("Ask a question about the course materials to get started.")
	}

	width := max(t.viewport.Width-2, 20)
	var b strings.Builder
	for i, turn := range t.turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t.styles.UserLabel.Render("You: "))
		b.WriteString(t.styles.Normal.Width(width).Render(turn.Question))
		b.WriteString("\n")

		switch {
		case turn.Pending:
			b.WriteString(t.styles.Muted.Render("Thinking..."))
			b.WriteString("\n")
			continue
		case turn.Err != nil:
			b.WriteString(t.styles.Error.Render("Error: " + turn.Err.Error()))
			b.WriteString("\n")
			continue
		}

		b.WriteString(t.styles.AssistantLabel.Render("Assistant: "))
		b.WriteString(t.styles.Normal.Width(width).Render(turn.Answer))
		b.WriteString("\n")

		if len(turn.Sources) > 0 {
			b.WriteString(t.styles.Subtitle.Render("Sources"))
			b.WriteString("\n")
			for _, src := range turn.Sources {
				b.WriteString("  ")
				b.WriteString(t.styles.Source.Render(src.Text))
				if src.Link != "" {
					b.WriteString(" ")
					b.WriteString(t.styles.Link.Render(src.Link))
				}
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
