package viewers

import (
	"context"
	"fmt"
	"strings"

	"github.com/zjrosen/caseview/internal/contentview"
	"github.com/zjrosen/caseview/internal/log"
)

// NameHex is the registry name of the hex viewer.
const NameHex = "hex"

// Hex shows file bytes as a hex dump with an ASCII column.
type Hex struct {
	source ContentSource
	shown
}

// NewHex creates a hex viewer reading through source.
func NewHex(source ContentSource) *Hex {
	return &Hex{source: source}
}

// Title is the tab label.
func (v *Hex) Title() string { return "Hex" }

// ToolTip describes the tab.
func (v *Hex) ToolTip() string { return "Raw bytes as hexadecimal" }

// Supports any non-empty file.
func (v *Hex) Supports(n contentview.Node) bool { return isFileWithData(n) }

// IsPreferred is always false; hex is the viewer of last resort.
func (v *Hex) IsPreferred(contentview.Node, bool) bool { return false }

// DisplayNode loads the file behind n. A node that is not case content
// clears the viewer.
func (v *Hex) DisplayNode(ctx context.Context, n contentview.Node) error {
	c, ok := asContent(n)
	if !ok {
		v.clear()
		return nil
	}
	data, err := v.source.Bytes(ctx, c)
	if err != nil {
		return err
	}
	v.set(c, data)
	log.Debug(log.CatViewer, "Hex loaded", "path", c.DisplayPath(), "bytes", len(data))
	return nil
}

// Reset drops the shown file.
func (v *Hex) Reset(context.Context) error {
	v.clear()
	return nil
}

// View lays out 16 bytes per line, or 8 when the width is too narrow.
func (v *Hex) View(width, height int) string {
	c, data := v.get()
	if c == nil {
		return ""
	}
	perLine := 16
	if width > 0 && width < hexLineWidth(16) {
		perLine = 8
	}
	out := hexDump(data, perLine, height)
	if int64(len(data)) < c.Size() {
		out += fmt.Sprintf("\n… %d of %d bytes stored", len(data), c.Size())
	}
	return clip(out, width, height)
}

func hexLineWidth(perLine int) int {
	// offset, two spaces, "xx " per byte, a gap, "|ascii|"
	return 8 + 2 + perLine*3 + 1 + perLine + 2
}

// hexDump formats data; maxLines limits output when positive.
func hexDump(data []byte, perLine, maxLines int) string {
	var b strings.Builder
	for off, line := 0, 0; off < len(data); off, line = off+perLine, line+1 {
		if maxLines > 0 && line >= maxLines {
			break
		}
		end := min(off+perLine, len(data))
		chunk := data[off:end]

		fmt.Fprintf(&b, "%08x  ", off)
		for i := range perLine {
			if i < len(chunk) {
				fmt.Fprintf(&b, "%02x ", chunk[i])
			} else {
				b.WriteString("   ")
			}
			if i == perLine/2-1 {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('|')
		for _, c := range chunk {
			if c >= 0x20 && c < 0x7f {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("|\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
