package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Keys(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"ctrl+c"}},
		{"back", km.Back, []string{"esc"}},
		{"up", km.Up, []string{"up", "k"}},
		{"down", km.Down, []string{"down", "j"}},
		{"reload", km.Reload, []string{"r"}},
		{"send", km.Send, []string{"enter"}},
		{"new session", km.NewSession, []string{"ctrl+n"}},
		{"page down", km.PageDown, []string{"pgdown"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keys, tt.binding.Keys())
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestKeyMap_MatchesKeyMsgs(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, km.Send))
	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyEsc}, km.Send))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}, km.Up))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlN}, km.NewSession))
}

func TestKeyMap_HelpSets(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 3)

	chat := km.ChatHelp()
	require.Len(t, chat, 4)
	assert.Equal(t, "new chat", chat[1].Help().Desc)

	groups := km.FullHelp()
	require.Len(t, groups, 3)
	for _, g := range groups {
		assert.NotEmpty(t, g)
	}
}

func TestKeyMap_RendersWithHelpModel(t *testing.T) {
	h := help.New()
	h.Width = 200

	out := h.FullHelpView(DefaultKeyMap().FullHelp())

	assert.Contains(t, out, "ctrl+n")
	assert.Contains(t, out, "reload")
}
