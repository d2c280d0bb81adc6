package viewers

import (
	"context"
	"strings"
	"sync"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/zjrosen/caseview/internal/contentview"
	"github.com/zjrosen/caseview/internal/log"
)

// NameText is the registry name of the text viewer.
const NameText = "text"

const tabWidth = 4

// textualMIME lists non text/* types that are still plain text.
var textualMIME = map[string]bool{
	"application/json":       true,
	"application/xml":        true,
	"application/javascript": true,
	"application/x-sh":       true,
	"application/x-yaml":     true,
}

// Text shows files as wrapped plain text.
type Text struct {
	source ContentSource
	shown

	renderMu sync.Mutex
	rendered map[int]string // by width
}

// NewText creates a text viewer reading through source.
func NewText(source ContentSource) *Text {
	return &Text{source: source}
}

// Title is the tab label.
func (v *Text) Title() string { return "Text" }

// ToolTip describes the tab.
func (v *Text) ToolTip() string { return "File contents as text" }

// Supports files whose MIME type is textual. The importer sniffs valid
// UTF-8 data as text/plain, so readable files without a known extension
// qualify too.
func (v *Text) Supports(n contentview.Node) bool {
	c, ok := asContent(n)
	if !ok || c.IsDir() {
		return false
	}
	return isTextMIME(c.MIMEType())
}

// IsPreferred claims plain text files.
func (v *Text) IsPreferred(n contentview.Node, supported bool) bool {
	c, ok := asContent(n)
	return supported && ok && c.MIMEType() == "text/plain"
}

func isTextMIME(m string) bool {
	return strings.HasPrefix(m, "text/") || textualMIME[m]
}

// DisplayNode loads the file behind n. A node that is not case content
// clears the viewer.
func (v *Text) DisplayNode(ctx context.Context, n contentview.Node) error {
	c, ok := asContent(n)
	if !ok {
		return v.Reset(ctx)
	}
	data, err := v.source.Bytes(ctx, c)
	if err != nil {
		return err
	}
	v.set(c, data)
	v.resetRendered()
	log.Debug(log.CatViewer, "Text loaded", "path", c.DisplayPath(), "bytes", len(data))
	return nil
}

// Reset drops the shown file and its cached renderings.
func (v *Text) Reset(context.Context) error {
	v.clear()
	v.resetRendered()
	return nil
}

func (v *Text) resetRendered() {
	v.renderMu.Lock()
	v.rendered = nil
	v.renderMu.Unlock()
}

// View renders the shown file wrapped at width. Rendered text is cached per
// width until another node is displayed.
func (v *Text) View(width, height int) string {
	// The data is read under renderMu so a concurrent DisplayNode cannot
	// clear the cache between the read and the store.
	v.renderMu.Lock()
	c, data := v.get()
	if c == nil {
		v.renderMu.Unlock()
		return ""
	}
	out, ok := v.rendered[width]
	if !ok {
		out = wrapText(string(data), width)
		if v.rendered == nil {
			v.rendered = make(map[int]string)
		}
		v.rendered[width] = out
	}
	v.renderMu.Unlock()

	return clip(out, width, height)
}

// wrapText normalizes data to valid UTF-8 with expanded tabs, word wraps
// at width and hard wraps words longer than width.
func wrapText(s string, width int) string {
	s = strings.ToValidUTF8(s, "�")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
	if width <= 0 {
		return s
	}
	return wrap.String(wordwrap.String(s, width), width)
}
