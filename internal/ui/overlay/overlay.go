// Package overlay draws boxes such as toasts and the log viewer on top of
// an already rendered screen.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position anchors the foreground within the screen.
type Position int

const (
	Center Position = iota
	Bottom
	TopRight
)

// Options describe the screen and where the foreground goes.
type Options struct {
	Width    int
	Height   int
	Position Position
	// Margin keeps Bottom and TopRight boxes off the screen edge.
	Margin int
}

// Place splices fg over bg line by line, keeping ANSI styling on both sides
// of the foreground intact.
func Place(fg, bg string, opts Options) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < opts.Height {
		bgLines = append(bgLines, "")
	}

	x, y := origin(opts, lipgloss.Width(fg), len(fgLines))
	for i, line := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLines[row] = splice(bgLines[row], line, x)
	}
	return strings.Join(bgLines, "\n")
}

// splice replaces the cells of bg starting at column x with fg.
func splice(bg, fg string, x int) string {
	left := ansi.Truncate(bg, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	var right string
	if end := x + ansi.StringWidth(fg); end < ansi.StringWidth(bg) {
		right = ansi.TruncateLeft(bg, end, "")
	}
	return left + fg + right
}

func origin(opts Options, w, h int) (x, y int) {
	switch opts.Position {
	case Bottom:
		x = (opts.Width - w) / 2
		y = opts.Height - h - opts.Margin
	case TopRight:
		x = opts.Width - w - opts.Margin
		y = opts.Margin
	default:
		x = (opts.Width - w) / 2
		y = (opts.Height - h) / 2
	}
	return max(x, 0), max(y, 0)
}
