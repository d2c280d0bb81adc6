package viewers

import (
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/caseview/internal/contentview"
	"github.com/zjrosen/caseview/internal/evidence"
)

// asContent returns the evidence content behind n.
func asContent(n contentview.Node) (*evidence.Content, bool) {
	c, ok := n.(*evidence.Content)
	return c, ok && c != nil
}

// isFileWithData reports whether n is a non-empty file.
func isFileWithData(n contentview.Node) bool {
	c, ok := asContent(n)
	return ok && !c.IsDir() && c.Size() > 0
}

// shown holds what a viewer currently displays.
type shown struct {
	mu   sync.RWMutex
	node *evidence.Content
	data []byte
}

func (s *shown) set(node *evidence.Content, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.node, s.data = node, data
}

func (s *shown) clear() {
	s.set(nil, nil)
}

func (s *shown) get() (*evidence.Content, []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.node, s.data
}

// clip truncates every line to width and keeps at most height lines.
// A height of zero or less keeps every line.
func clip(s string, width, height int) string {
	lines := strings.Split(s, "\n")
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	if width > 0 {
		for i, line := range lines {
			lines[i] = ansi.Truncate(line, width, "…")
		}
	}
	return strings.Join(lines, "\n")
}
