package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_KeyAssignments(t *testing.T) {
	k := DefaultKeyMap()

	tests := []struct {
		name     string
		binding  key.Binding
		expected []string
	}{
		{"Up", k.Up, []string{"k", "up"}},
		{"Down", k.Down, []string{"j", "down"}},
		{"Expand", k.Expand, []string{"l", "right", "enter"}},
		{"Collapse", k.Collapse, []string{"h", "left"}},
		{"NextTab", k.NextTab, []string{"]", "tab"}},
		{"PrevTab", k.PrevTab, []string{"[", "shift+tab"}},
		{"OpenWindow", k.OpenWindow, []string{"o"}},
		{"CycleWindow", k.CycleWindow, []string{"w"}},
		{"CloseWindow", k.CloseWindow, []string{"x"}},
		{"Refresh", k.Refresh, []string{"r"}},
		{"Logs", k.Logs, []string{"ctrl+x"}},
		{"Help", k.Help, []string{"?"}},
		{"Quit", k.Quit, []string{"q", "ctrl+c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.binding.Keys())
			require.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestDefaultKeyMap_NoDuplicateKeys(t *testing.T) {
	seen := map[string]string{}
	for _, group := range DefaultKeyMap().FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				prev, dup := seen[k]
				require.False(t, dup, "%q bound to both %q and %q", k, prev, b.Help().Desc)
				seen[k] = b.Help().Desc
			}
		}
	}
}

func TestFullHelp_CoversShortHelp(t *testing.T) {
	k := DefaultKeyMap()
	full := map[string]bool{}
	for _, group := range k.FullHelp() {
		for _, b := range group {
			full[b.Help().Desc] = true
		}
	}
	for _, b := range k.ShortHelp() {
		require.True(t, full[b.Help().Desc], b.Help().Desc)
	}
}

func TestMatches(t *testing.T) {
	k := DefaultKeyMap()

	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")}, k.NextTab))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlX}, k.Logs))
	require.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, k.Logs))
}
