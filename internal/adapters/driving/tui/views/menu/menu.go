// Package menu renders the start screen: the catalog summary and the views
// the user can open.
package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// Entry is one selectable line. Shortcut opens it directly; an entry with
// Quit set exits instead of changing view.
type Entry struct {
	Label    string
	Hint     string
	Shortcut string
	View     messages.ViewType
	Quit     bool
}

func defaultEntries() []Entry {
	return []Entry{
		{Label: "Chat", Shortcut: "c", Hint: "ask about the course materials", View: messages.ViewChat},
		{Label: "Courses", Shortcut: "o", Hint: "browse titles and lesson outlines", View: messages.ViewCourses},
		{Label: "Help", Shortcut: "?", View: messages.ViewHelp},
		{Label: "Quit", Shortcut: "q", Quit: true},
	}
}

// View is the menu model.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	entries []Entry
	cursor  int

	// courses is nil until the catalog summary arrives.
	courses *int

	width  int
	height int
	ready  bool
}

// NewView builds the menu. Nil arguments select the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keys:    km,
		entries: defaultEntries(),
		width:   80,
		height:  24,
	}
}

func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor (wrapping at both ends) and opens entries.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.CoursesLoaded:
		if msg.Err == nil {
			v.SetCatalog(msg.Analytics)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Up):
			v.cursor = (v.cursor - 1 + len(v.entries)) % len(v.entries)
		case key.Matches(msg, v.keys.Down):
			v.cursor = (v.cursor + 1) % len(v.entries)
		case key.Matches(msg, v.keys.Select):
			return v, v.open(v.entries[v.cursor])
		default:
			for i, e := range v.entries {
				if e.Shortcut != "" && msg.String() == e.Shortcut {
					v.cursor = i
					return v, v.open(e)
				}
			}
		}
	}
	return v, nil
}

func (v *View) open(e Entry) tea.Cmd {
	if e.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: e.View}
	}
}

// SetCatalog records the number of ingested courses shown under the title.
func (v *View) SetCatalog(a *domain.CourseAnalytics) {
	if a == nil {
		v.courses = nil
		return
	}
	n := a.TotalCourses
	v.courses = &n
}

func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Coursemate"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(v.summary()))
	b.WriteString("\n\n")

	for i, e := range v.entries {
		label := fmt.Sprintf("%-8s", e.Label)
		if i == v.cursor {
			b.WriteString("> " + v.styles.Subtitle.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf(" [%s]", e.Shortcut)))
		if e.Hint != "" {
			b.WriteString(v.styles.Muted.Render("  " + e.Hint))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render(fmt.Sprintf("[%s/%s] move  [%s] open",
		v.keys.Up.Help().Key, v.keys.Down.Help().Key, v.keys.Select.Help().Key)))
	return b.String()
}

func (v *View) summary() string {
	switch {
	case v.courses == nil:
		return "Course Materials Assistant"
	case *v.courses == 0:
		return "No courses yet. Run 'coursemate ingest <dir>' to add some."
	case *v.courses == 1:
		return "1 course in the catalog"
	default:
		return fmt.Sprintf("%d courses in the catalog", *v.courses)
	}
}

func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.cursor
}
