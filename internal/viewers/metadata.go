package viewers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/caseview/internal/contentview"
	"github.com/zjrosen/caseview/internal/evidence"
)

// NameMetadata is the registry name of the metadata viewer.
const NameMetadata = "metadata"

const timeLayout = "2006-01-02 15:04:05 MST"

type field struct {
	key   string
	value string
}

// Metadata shows a key/value table describing the selected node.
type Metadata struct {
	contents evidence.ContentRepository
	sources  evidence.DataSourceRepository

	mu     sync.RWMutex
	fields []field
}

// NewMetadata creates a metadata viewer. Either repository may be nil, in
// which case the rows that need it are left out.
func NewMetadata(contents evidence.ContentRepository, sources evidence.DataSourceRepository) *Metadata {
	return &Metadata{contents: contents, sources: sources}
}

// Title is the tab label.
func (v *Metadata) Title() string { return "Metadata" }

// ToolTip describes the tab.
func (v *Metadata) ToolTip() string { return "File system and case metadata" }

// Supports every node.
func (v *Metadata) Supports(n contentview.Node) bool { return n != nil }

// IsPreferred claims directories, which no other viewer supports.
func (v *Metadata) IsPreferred(n contentview.Node, supported bool) bool {
	c, ok := asContent(n)
	return supported && ok && c.IsDir()
}

// DisplayNode builds the field list for n. Nodes that are not case content
// get a minimal list.
func (v *Metadata) DisplayNode(_ context.Context, n contentview.Node) error {
	if n == nil {
		v.setFields(nil)
		return nil
	}
	c, ok := asContent(n)
	if !ok {
		v.setFields([]field{
			{"Name", n.Name()},
			{"Path", n.DisplayPath()},
			{"ID", n.ID()},
		})
		return nil
	}

	fields := []field{
		{"Name", c.Name()},
		{"Path", c.DisplayPath()},
		{"Type", string(c.Kind())},
	}
	if c.IsDir() {
		if v.contents != nil {
			children, err := v.contents.Children(c.RowID())
			if err != nil {
				return fmt.Errorf("counting children of %s: %w", c.DisplayPath(), err)
			}
			fields = append(fields, field{"Children", fmt.Sprintf("%d", len(children))})
		}
	} else {
		fields = append(fields,
			field{"Size", humanSize(c.Size())},
			field{"MIME type", orDash(c.MIMEType())},
			field{"SHA-256", orDash(c.SHA256())},
			field{"Modified", formatTime(c.ModifiedAt())},
		)
	}
	if v.sources != nil {
		ds, err := v.sources.FindByID(c.DataSourceID())
		if err != nil {
			return fmt.Errorf("loading data source of %s: %w", c.DisplayPath(), err)
		}
		fields = append(fields,
			field{"Data source", ds.Name()},
			field{"Imported from", ds.SourcePath()},
		)
	}
	fields = append(fields,
		field{"Added", formatTime(c.CreatedAt())},
		field{"GUID", c.GUID()},
	)
	v.setFields(fields)
	return nil
}

// Reset drops the field list.
func (v *Metadata) Reset(context.Context) error {
	v.setFields(nil)
	return nil
}

func (v *Metadata) setFields(fields []field) {
	v.mu.Lock()
	v.fields = fields
	v.mu.Unlock()
}

// View aligns values after the widest key. Wide runes count by cell width.
func (v *Metadata) View(width, height int) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if len(v.fields) == 0 {
		return ""
	}

	keyWidth := 0
	for _, f := range v.fields {
		keyWidth = max(keyWidth, runewidth.StringWidth(f.key))
	}

	var b strings.Builder
	for i, f := range v.fields {
		if i > 0 {
			b.WriteByte('\n')
		}
		line := runewidth.FillRight(f.key, keyWidth) + "  " + f.value
		if width > 0 {
			line = runewidth.Truncate(line, width, "…")
		}
		b.WriteString(line)
	}
	return clip(b.String(), 0, height)
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB (%d bytes)", float64(n)/float64(div), "KMGTPE"[exp], n)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(timeLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
