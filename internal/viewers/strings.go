package viewers

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/zjrosen/caseview/internal/contentview"
	"github.com/zjrosen/caseview/internal/log"
)

const (
	// NameStrings is the registry name of the strings viewer.
	NameStrings = "strings"

	// DefaultMinStringLength is the shortest run listed when none is configured.
	DefaultMinStringLength = 4
)

// Strings lists runs of printable text found in file bytes, like strings(1).
type Strings struct {
	source ContentSource
	minLen int

	shown
	found []extracted
}

type extracted struct {
	offset int
	text   string
}

// NewStrings creates a strings viewer keeping runs of at least minLen
// characters. minLen below 1 uses DefaultMinStringLength.
func NewStrings(source ContentSource, minLen int) *Strings {
	if minLen < 1 {
		minLen = DefaultMinStringLength
	}
	return &Strings{source: source, minLen: minLen}
}

// Title is the tab label.
func (v *Strings) Title() string { return "Strings" }

// ToolTip names the minimum run length.
func (v *Strings) ToolTip() string {
	return fmt.Sprintf("Printable runs of %d or more characters", v.minLen)
}

// Supports any non-empty file.
func (v *Strings) Supports(n contentview.Node) bool { return isFileWithData(n) }

// IsPreferred is always false.
func (v *Strings) IsPreferred(contentview.Node, bool) bool { return false }

// DisplayNode loads the file behind n and extracts its strings up front.
func (v *Strings) DisplayNode(ctx context.Context, n contentview.Node) error {
	c, ok := asContent(n)
	if !ok {
		_ = v.Reset(ctx)
		return nil
	}
	data, err := v.source.Bytes(ctx, c)
	if err != nil {
		return err
	}
	found := extractStrings(data, v.minLen)

	v.mu.Lock()
	v.node, v.data, v.found = c, data, found
	v.mu.Unlock()
	log.Debug(log.CatViewer, "Strings extracted", "path", c.DisplayPath(), "count", len(found))
	return nil
}

// Reset drops the shown file and its strings.
func (v *Strings) Reset(context.Context) error {
	v.mu.Lock()
	v.node, v.data, v.found = nil, nil, nil
	v.mu.Unlock()
	return nil
}

// View lists one string per line, prefixed with its hex byte offset.
func (v *Strings) View(width, height int) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.node == nil {
		return ""
	}
	if len(v.found) == 0 {
		return fmt.Sprintf("No strings of %d or more characters.", v.minLen)
	}

	var b strings.Builder
	for i, s := range v.found {
		if height > 0 && i >= height {
			break
		}
		fmt.Fprintf(&b, "%08x  %s\n", s.offset, s.text)
	}
	return clip(strings.TrimSuffix(b.String(), "\n"), width, height)
}

// extractStrings returns printable UTF-8 runs of at least minLen grapheme
// clusters with their byte offsets.
func extractStrings(data []byte, minLen int) []extracted {
	var out []extracted
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		run := string(data[start:end])
		if uniseg.GraphemeClusterCount(run) >= minLen {
			out = append(out, extracted{offset: start, text: run})
		}
		start = -1
	}

	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		printable := r != utf8.RuneError && (unicode.IsPrint(r) || r == '\t')
		if printable {
			if start < 0 {
				start = i
			}
		} else {
			flush(i)
		}
		i += size
	}
	flush(len(data))
	return out
}
