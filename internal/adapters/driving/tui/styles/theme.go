// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme is the palette. Each colour has a light and a dark variant and
// lipgloss picks one from the terminal background.
type Theme struct {
	Primary    lipgloss.AdaptiveColor
	Secondary  lipgloss.AdaptiveColor
	Foreground lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor
	Error      lipgloss.AdaptiveColor
	Border     lipgloss.AdaptiveColor
	Link       lipgloss.AdaptiveColor
	// Bar is the status line background.
	Bar lipgloss.AdaptiveColor
}

func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#2563EB"},
		Secondary:  lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#14B8A6"},
		Foreground: lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"},
		Muted:      lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6C7086"},
		Error:      lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F38BA8"},
		Border:     lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#45475A"},
		Link:       lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#89B4FA"},
		Bar:        lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#181825"},
	}
}

// Styles are the rendered roles shared by every view.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Help     lipgloss.Style
	Error    lipgloss.Style

	// Selected highlights the cursor row in lists.
	Selected lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style

	// Transcript roles.
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Source         lipgloss.Style
	Link           lipgloss.Style
}

// NewStyles builds the styles for theme, or the default theme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	plain := lipgloss.NewStyle()
	bold := plain.Bold(true)

	return &Styles{
		theme: theme,

		Title:    bold.Foreground(theme.Primary),
		Subtitle: bold.Foreground(theme.Secondary),
		Normal:   plain.Foreground(theme.Foreground),
		Muted:    plain.Foreground(theme.Muted),
		Help:     plain.Foreground(theme.Muted),
		Error:    plain.Foreground(theme.Error),
		Selected: bold.Foreground(theme.Foreground).Background(theme.Primary),

		InputField: plain.
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: plain.
			Foreground(theme.Muted).
			Background(theme.Bar).
			Padding(0, 1),

		UserLabel:      bold.Foreground(theme.Secondary),
		AssistantLabel: bold.Foreground(theme.Primary),
		Source:         plain.Foreground(theme.Muted).Italic(true),
		Link:           plain.Foreground(theme.Link).Underline(true),
	}
}

func DefaultStyles() *Styles {
	return NewStyles(nil)
}

func (s *Styles) Theme() *Theme {
	return s.theme
}
