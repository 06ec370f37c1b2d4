package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme_HasBothVariants(t *testing.T) {
	theme := DefaultTheme()

	palette := map[string]lipgloss.AdaptiveColor{
		"primary":    theme.Primary,
		"secondary":  theme.Secondary,
		"foreground": theme.Foreground,
		"muted":      theme.Muted,
		"error":      theme.Error,
		"border":     theme.Border,
		"link":       theme.Link,
		"bar":        theme.Bar,
	}
	for name, c := range palette {
		assert.NotEmpty(t, c.Light, "%s light", name)
		assert.NotEmpty(t, c.Dark, "%s dark", name)
	}
}

func TestDefaultTheme_AccentsDiffer(t *testing.T) {
	theme := DefaultTheme()

	assert.NotEqual(t, theme.Primary, theme.Secondary)
	assert.NotEqual(t, theme.Primary, theme.Error)
	assert.NotEqual(t, theme.Foreground.Dark, theme.Bar.Dark)
	assert.NotEqual(t, theme.Foreground.Light, theme.Bar.Light)
}

func TestNewStyles(t *testing.T) {
	custom := DefaultTheme()
	custom.Primary = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	s := NewStyles(custom)
	require.NotNil(t, s)
	assert.Same(t, custom, s.Theme())
	assert.Equal(t, custom.Primary, s.Title.GetForeground())

	assert.NotNil(t, NewStyles(nil).Theme())
	assert.NotNil(t, DefaultStyles().Theme())
}

func TestStyles_Roles(t *testing.T) {
	s := DefaultStyles()

	assert.True(t, s.Title.GetBold())
	assert.True(t, s.UserLabel.GetBold())
	assert.True(t, s.Source.GetItalic())
	assert.True(t, s.Link.GetUnderline())
	assert.False(t, s.Normal.GetBold(), "bold must not leak into plain roles")
	assert.Equal(t, s.Theme().Bar, s.StatusBar.GetBackground())
}

func TestStyles_Render(t *testing.T) {
	s := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"title":     s.Title,
		"normal":    s.Normal,
		"selected":  s.Selected,
		"input":     s.InputField,
		"statusbar": s.StatusBar,
		"source":    s.Source,
	} {
		assert.Contains(t, style.Render("lesson"), "lesson", name)
	}
}
