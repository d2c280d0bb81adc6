package viewers

import (
	"context"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/zjrosen/caseview/internal/contentview"
	"github.com/zjrosen/caseview/internal/log"
)

// NameMarkdown is the registry name of the markdown viewer.
const NameMarkdown = "markdown"

// noMarginStyle removes glamour's document margins so output lines up with
// the tab frame.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Markdown renders .md files with glamour.
type Markdown struct {
	source ContentSource
	style  string
	shown

	renderMu sync.Mutex
	width    int
	rendered string
}

// NewMarkdown creates a markdown viewer. style is a glamour style name such
// as "dark" or "light"; empty means "dark". A fixed style avoids the terminal
// background query WithAutoStyle performs, whose reply leaks into input.
func NewMarkdown(source ContentSource, style string) *Markdown {
	if style == "" {
		style = "dark"
	}
	return &Markdown{source: source, style: style}
}

// Title is the tab label.
func (v *Markdown) Title() string { return "Markdown" }

// ToolTip describes the tab.
func (v *Markdown) ToolTip() string { return "Rendered markdown" }

// Supports files with a .md or .markdown extension.
func (v *Markdown) Supports(n contentview.Node) bool {
	c, ok := asContent(n)
	if !ok || c.IsDir() {
		return false
	}
	switch c.Ext() {
	case ".md", ".markdown":
		return true
	}
	return false
}

// IsPreferred claims every supported file.
func (v *Markdown) IsPreferred(_ contentview.Node, supported bool) bool {
	return supported
}

// DisplayNode loads the file behind n. Rendering waits for View, which knows
// the width.
func (v *Markdown) DisplayNode(ctx context.Context, n contentview.Node) error {
	c, ok := asContent(n)
	if !ok {
		return v.Reset(ctx)
	}
	data, err := v.source.Bytes(ctx, c)
	if err != nil {
		return err
	}
	v.set(c, data)
	v.invalidate()
	return nil
}

// Reset drops the shown file and its rendering.
func (v *Markdown) Reset(context.Context) error {
	v.clear()
	v.invalidate()
	return nil
}

func (v *Markdown) invalidate() {
	v.renderMu.Lock()
	v.width, v.rendered = -1, ""
	v.renderMu.Unlock()
}

// View renders at width, falling back to wrapped source text if glamour fails.
func (v *Markdown) View(width, height int) string {
	v.renderMu.Lock()
	defer v.renderMu.Unlock()
	c, data := v.get()
	if c == nil {
		return ""
	}
	if v.width != width {
		out, err := renderMarkdown(string(data), width, v.style)
		if err != nil {
			log.ErrorErr(log.CatViewer, "Markdown render failed", err, "path", c.DisplayPath())
			out = wrapText(string(data), width)
		}
		v.width, v.rendered = width, out
	}
	return clip(v.rendered, width, height)
}

func renderMarkdown(src string, width int, style string) (string, error) {
	opts := []glamour.TermRendererOption{
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(src)
}
