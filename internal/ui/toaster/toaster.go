// Package toaster shows short notifications at the bottom of the screen.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/caseview/internal/ui/overlay"
	"github.com/zjrosen/caseview/internal/ui/styles"
)

// DefaultDuration is how long a toast stays up.
const DefaultDuration = 3 * time.Second

// Style determines the visual appearance of the toast.
type Style int

const (
	StyleInfo Style = iota
	StyleSuccess
	StyleWarn
	StyleError
)

// Model holds the toaster state.
type Model struct {
	message string
	style   Style
	visible bool
	// seq identifies the current toast so an older DismissMsg cannot hide a
	// newer one.
	seq int
}

// New creates a new toaster model.
func New() Model {
	return Model{}
}

// DismissMsg hides the toast it was scheduled for.
type DismissMsg struct{ seq int }

// Show displays message and schedules its dismissal after d.
func (m Model) Show(message string, style Style, d time.Duration) (Model, tea.Cmd) {
	m.seq++
	m.message = message
	m.style = style
	m.visible = true
	seq := m.seq
	return m, tea.Tick(d, func(time.Time) tea.Msg { return DismissMsg{seq: seq} })
}

// Update handles DismissMsg.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.seq == m.seq {
		m.visible = false
		m.message = ""
	}
	return m
}

// Visible returns whether the toast is currently showing.
func (m Model) Visible() bool {
	return m.visible && m.message != ""
}

// Message returns the text of the visible toast.
func (m Model) Message() string {
	if !m.Visible() {
		return ""
	}
	return m.message
}

// View renders the toast box.
func (m Model) View() string {
	if !m.Visible() {
		return ""
	}

	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	var icon string
	switch m.style {
	case StyleError:
		style = style.BorderForeground(styles.ToastBorderErrorColor)
		icon = "✗"
	case StyleWarn:
		style = style.BorderForeground(styles.ToastBorderWarnColor)
		icon = "!"
	case StyleSuccess:
		style = style.BorderForeground(styles.ToastBorderSuccessColor)
		icon = "✓"
	default:
		style = style.BorderForeground(styles.ToastBorderInfoColor)
		icon = "i"
	}
	return style.Render(icon + " " + m.message)
}

// Overlay renders the toast one line above the bottom edge of bg.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.Visible() {
		return bg
	}
	return overlay.Place(m.View(), bg, overlay.Options{
		Width:    width,
		Height:   height,
		Position: overlay.Bottom,
		Margin:   1,
	})
}
