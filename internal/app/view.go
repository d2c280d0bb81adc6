package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/caseview/internal/ui/shared/panes"
	"github.com/zjrosen/caseview/internal/ui/styles"
)

const (
	treeMinWidth = 24
	treeMaxWidth = 48
)

func tabZoneID(i int) string {
	return fmt.Sprintf("tab:%d", i)
}

func (m Model) treeWidth() int {
	return min(max(m.width/3, treeMinWidth), treeMaxWidth)
}

func (m Model) bodyHeight() int {
	return max(m.height-lipgloss.Height(m.footer()), 3)
}

// layout sizes the tree after the screen or the footer changed.
func (m *Model) layout() {
	m.tree.SetSize(m.treeWidth()-2, m.bodyHeight()-2)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	bodyH := m.bodyHeight()
	treeW := m.treeWidth()
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.treePane(treeW, bodyH),
		m.viewerPane(m.width-treeW, bodyH),
	)
	view := lipgloss.JoinVertical(lipgloss.Left, body, m.footer())

	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}
	if m.debugMode && m.logOverlay.Visible() {
		view = m.logOverlay.Overlay(view)
	}
	return zone.Scan(view)
}

func (m Model) treePane(width, height int) string {
	content := m.tree.View()
	if m.loadErr != nil {
		content = styles.ErrorStyle.Render("Cannot read case: " + m.loadErr.Error())
	}
	var position string
	if n := m.tree.Len(); n > 0 {
		position = fmt.Sprintf("%d/%d", m.tree.Cursor()+1, n)
	}
	return panes.BorderedPane(panes.BorderConfig{
		Content:     content,
		Width:       width,
		Height:      height,
		TopLeft:     m.caseName,
		BottomRight: position,
	})
}

func (m Model) viewerPane(width, height int) string {
	cfg := panes.BorderConfig{Width: width, Height: height, Focused: true}
	w := m.shownWindow()
	if w == nil {
		return panes.BorderedPane(cfg)
	}

	cfg.TopLeft = w.snap.name
	if len(m.windows) > 1 {
		cfg.TopRight = fmt.Sprintf("window %d/%d", m.shown+1, len(m.windows))
	}

	innerW, innerH := max(width-2, 1), max(height-2, 1)
	switch {
	case w.closed:
		cfg.Content = styles.HintStyle.Render("Window closed. Select an item to show it again.")
	case len(w.snap.tabs) == 0:
		cfg.Content = styles.HintStyle.Render("Loading…")
	default:
		var content string
		if t := w.snap.activeTab(); t != nil && t.enabled {
			content = t.viewer.View(innerW, max(innerH-1, 1))
			cfg.BottomLeft = t.toolTip
		} else {
			content = styles.HintStyle.Render("No viewer can show this item")
		}
		cfg.Content = m.renderTabs(w.snap, innerW) + "\n" + content
	}
	return panes.BorderedPane(cfg)
}

// renderTabs draws the tab row. Every tab is a click zone named after its
// slot index, so hidden disabled tabs leave the numbering intact.
func (m Model) renderTabs(s snapshot, width int) string {
	var parts []string
	for i, t := range s.tabs {
		if !t.enabled && !m.cfg.UI.ShowDisabledTabs {
			continue
		}
		style := styles.TabStyle
		switch {
		case s.hasActive && i == s.active:
			style = styles.TabActiveStyle
		case !t.enabled:
			style = styles.TabDisabledStyle
		}
		parts = append(parts, zone.Mark(tabZoneID(i), style.Render(t.title)))
	}
	return ansi.Truncate(strings.Join(parts, " "), width, "…")
}

func (m Model) footer() string {
	var left string
	if m.busy.Active() {
		left = m.spinner.View() + " "
	}
	if w := m.shownWindow(); w != nil && w.coord != nil {
		left += w.coord.Label()
	}
	if n := len(m.windows); n > 1 {
		left += fmt.Sprintf(" (+%d)", n-1)
	}
	status := styles.StatusBarStyle.Width(m.width).Render(left)
	return status + "\n" + m.help.View(m.keys)
}
