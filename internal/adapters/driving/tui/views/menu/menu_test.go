package menu

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coursemate/internal/core/domain"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView(t *testing.T) {
	view := NewView(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, view)
	assert.Len(t, view.entries, 4)
	assert.Equal(t, 0, view.Selected())
	assert.Nil(t, view.Init())
}

func TestNewView_NilDefaults(t *testing.T) {
	view := NewView(nil, nil)

	assert.NotNil(t, view.styles)
	assert.NotNil(t, view.keys)
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil, nil)

	updated, cmd := view.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	assert.Same(t, view, updated)
	assert.Nil(t, cmd)
	assert.True(t, view.ready)
	assert.Equal(t, 100, view.width)
}

func TestView_Update_NavigateWraps(t *testing.T) {
	view := NewView(nil, nil)

	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, view.Selected())

	view.Update(runes("j"))
	view.Update(runes("j"))
	assert.Equal(t, 3, view.Selected())

	view.Update(runes("j"))
	assert.Equal(t, 0, view.Selected(), "down from the last entry wraps")

	view.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 3, view.Selected(), "up from the first entry wraps")

	view.Update(runes("k"))
	assert.Equal(t, 2, view.Selected())
}

func TestView_Update_EnterOpensEntry(t *testing.T) {
	tests := []struct {
		index int
		want  messages.ViewType
	}{
		{0, messages.ViewChat},
		{1, messages.ViewCourses},
		{2, messages.ViewHelp},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			view := NewView(nil, nil)
			view.cursor = tt.index

			_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

			require.NotNil(t, cmd)
			assert.Equal(t, messages.ViewChanged{View: tt.want}, cmd())
		})
	}
}

func TestView_Update_Shortcuts(t *testing.T) {
	view := NewView(nil, nil)

	_, cmd := view.Update(runes("o"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewCourses}, cmd())
	assert.Equal(t, 1, view.Selected())

	_, cmd = view.Update(runes("c"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewChat}, cmd())

	_, cmd = view.Update(runes("x"))
	assert.Nil(t, cmd)
}

func TestView_Update_Quit(t *testing.T) {
	view := NewView(nil, nil)
	view.cursor = 3

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = NewView(nil, nil).Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_CatalogSummary(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDimensions(80, 24)
	assert.Contains(t, view.View(), "Course Materials Assistant")

	view.Update(messages.CoursesLoaded{Analytics: &domain.CourseAnalytics{}})
	assert.Contains(t, view.View(), "coursemate ingest")

	view.Update(messages.CoursesLoaded{Analytics: &domain.CourseAnalytics{TotalCourses: 1}})
	assert.Contains(t, view.View(), "1 course in the catalog")

	view.Update(messages.CoursesLoaded{Err: errors.New("db closed")})
	assert.Contains(t, view.View(), "1 course in the catalog", "errors keep the last summary")

	view.SetCatalog(&domain.CourseAnalytics{TotalCourses: 4})
	assert.Contains(t, view.View(), "4 courses in the catalog")
}

func TestView_View(t *testing.T) {
	view := NewView(nil, nil)
	assert.Equal(t, "Initialising...", view.View())

	view.SetDimensions(80, 24)
	out := view.View()

	assert.Contains(t, out, "Coursemate")
	assert.Contains(t, out, "Chat")
	assert.Contains(t, out, "[o]")
	assert.Contains(t, out, "> ")
}
