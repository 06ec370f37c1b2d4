// Package courses provides the course catalog view for the TUI.
package courses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
)

// ErrNoCatalogService indicates that no catalog service was provided.
var ErrNoCatalogService = errors.New("catalog service is required")

// View lists the catalog and opens outlines.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	catalog driving.CatalogService
	list    *list.CourseList
	ctx     context.Context

	total   int
	loading bool
	err     error
	width   int
	height  int
}

// NewView creates a new courses view. Nil styles or keys select the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap, catalog driving.CatalogService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keys:    km,
		catalog: catalog,
		list:    list.NewCourseList(s),
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the catalog.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *View) load() tea.Cmd {
	return func() tea.Msg {
		if v.catalog == nil {
			return messages.CoursesLoaded{Err: ErrNoCatalogService}
		}
		stats, err := v.catalog.Analytics(v.ctx)
		return messages.CoursesLoaded{Analytics: stats, Err: err}
	}
}

// Update handles messages for the courses view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.CoursesLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		if msg.Analytics != nil {
			v.total = msg.Analytics.TotalCourses
			v.list.SetTitles(msg.Analytics.CourseTitles)
		}
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case key.Matches(msg, v.keys.Select):
			title := v.list.SelectedTitle()
			if title == "" {
				return v, nil
			}
			return v, func() tea.Msg {
				return messages.CourseSelected{Title: title}
			}
		case key.Matches(msg, v.keys.Reload):
			v.loading = true
			return v, v.load()
		}
		var cmd tea.Cmd
		v.list, cmd = v.list.Update(msg)
		return v, cmd
	}

	return v, nil
}

// View renders the catalog.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Courses"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading courses..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	default:
		b.WriteString(v.list.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter] outline  [r] reload  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, height-6)
}

// Total returns the number of courses in the catalog.
func (v *View) Total() int {
	return v.total
}

// Titles returns the loaded course titles.
func (v *View) Titles() []string {
	return v.list.Titles()
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
