// Package panes renders bordered panels with titles embedded in the border.
package panes

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/caseview/internal/ui/styles"
)

// Border characters (rounded)
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// BorderConfig configures a bordered panel.
type BorderConfig struct {
	Content string
	Width   int // total width including borders
	Height  int // total height including borders

	TopLeft     string
	TopRight    string
	BottomLeft  string
	BottomRight string

	Focused bool
}

// BorderedPane renders cfg.Content inside a rounded border. Content is
// clipped to the inner area and padded so the right border lines up.
func BorderedPane(cfg BorderConfig) string {
	borderColor := styles.BorderDefaultColor
	if cfg.Focused {
		borderColor = styles.BorderHighlightFocusColor
	}
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Foreground(styles.TextSecondaryColor)

	innerWidth := max(cfg.Width-2, 1)
	innerHeight := max(cfg.Height-2, 1)

	lines := strings.Split(cfg.Content, "\n")
	var b strings.Builder
	b.WriteString(borderLine(borderTopLeft, borderTopRight, cfg.TopLeft, cfg.TopRight, innerWidth, borderStyle, titleStyle))
	for i := range innerHeight {
		var line string
		if i < len(lines) {
			line = ansi.Truncate(lines[i], innerWidth, "")
		}
		if w := lipgloss.Width(line); w < innerWidth {
			line += strings.Repeat(" ", innerWidth-w)
		}
		b.WriteString("\n")
		b.WriteString(borderStyle.Render(borderVertical) + line + borderStyle.Render(borderVertical))
	}
	b.WriteString("\n")
	b.WriteString(borderLine(borderBottomLeft, borderBottomRight, cfg.BottomLeft, cfg.BottomRight, innerWidth, borderStyle, titleStyle))
	return b.String()
}

// borderLine builds a horizontal border of innerWidth cells between the two
// corners, with optional titles laid out as "─ left ──── right ─". When both
// titles do not fit, the right one is dropped first and then the left one is
// truncated.
func borderLine(leftCorner, rightCorner, left, right string, innerWidth int, borderStyle, titleStyle lipgloss.Style) string {
	// "─ " + title + " " on each side.
	const titlePad = 3

	if left != "" && innerWidth < titlePad+1 {
		left = ""
	}
	leftW := lipgloss.Width(left)
	if left != "" && leftW+titlePad > innerWidth {
		left = styles.TruncateString(left, innerWidth-titlePad)
		leftW = lipgloss.Width(left)
	}
	used := 0
	if left != "" {
		used = leftW + titlePad
	}
	rightW := lipgloss.Width(right)
	if right != "" && used+rightW+titlePad+1 > innerWidth {
		right = ""
	}

	var b strings.Builder
	b.WriteString(borderStyle.Render(leftCorner))
	if left != "" {
		b.WriteString(borderStyle.Render(borderHorizontal + " "))
		b.WriteString(titleStyle.Render(left))
		b.WriteString(borderStyle.Render(" "))
	}
	fill := innerWidth - used
	if right != "" {
		fill -= rightW + titlePad
	}
	b.WriteString(borderStyle.Render(strings.Repeat(borderHorizontal, max(fill, 0))))
	if right != "" {
		b.WriteString(borderStyle.Render(" "))
		b.WriteString(titleStyle.Render(right))
		b.WriteString(borderStyle.Render(" " + borderHorizontal))
	}
	b.WriteString(borderStyle.Render(rightCorner))
	return b.String()
}
