// Package tree renders the case contents as a lazily expanded tree.
package tree

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/caseview/internal/evidence"
	"github.com/zjrosen/caseview/internal/log"
	"github.com/zjrosen/caseview/internal/ui/styles"
)

// Loader lists the children of a content row; parentID 0 lists the roots.
type Loader interface {
	Children(parentID int64) ([]*evidence.Content, error)
}

// TreeNode is one row of the tree.
type TreeNode struct {
	Content  *evidence.Content
	Parent   *TreeNode
	Children []*TreeNode
	Depth    int
	Expanded bool
	loaded   bool
}

// Model holds the tree view state.
type Model struct {
	loader    Loader
	roots     []*TreeNode
	nodes     []*TreeNode // flattened visible nodes
	cursor    int
	width     int
	height    int
	scrollTop int
}

// New creates an empty tree; call Load to read the roots.
func New(loader Loader) *Model {
	return &Model{loader: loader}
}

// Load reads the data source roots. Expanded directories and the selected
// row survive a reload when they still exist.
func (m *Model) Load() error {
	expanded := make(map[string]bool)
	for _, n := range m.nodes {
		if n.Expanded {
			expanded[n.Content.GUID()] = true
		}
	}
	var selected string
	if n := m.SelectedNode(); n != nil {
		selected = n.Content.GUID()
	}

	roots, err := m.children(nil)
	if err != nil {
		return err
	}
	m.roots = roots
	for _, r := range roots {
		m.restore(r, expanded)
	}
	m.refresh()
	if selected == "" || !m.SelectByGUID(selected) {
		m.cursor = min(m.cursor, max(len(m.nodes)-1, 0))
	}
	m.ensureCursorVisible()
	return nil
}

func (m *Model) restore(n *TreeNode, expanded map[string]bool) {
	if !expanded[n.Content.GUID()] {
		return
	}
	if err := m.expand(n); err != nil {
		return
	}
	for _, c := range n.Children {
		m.restore(c, expanded)
	}
}

func (m *Model) children(parent *TreeNode) ([]*TreeNode, error) {
	var parentID int64
	depth := 0
	if parent != nil {
		parentID = parent.Content.RowID()
		depth = parent.Depth + 1
	}
	contents, err := m.loader.Children(parentID)
	if err != nil {
		log.ErrorErr(log.CatUI, "Failed to load tree children", err, "parent", parentID)
		return nil, fmt.Errorf("listing children of %d: %w", parentID, err)
	}
	nodes := make([]*TreeNode, len(contents))
	for i, c := range contents {
		nodes[i] = &TreeNode{Content: c, Parent: parent, Depth: depth}
	}
	return nodes, nil
}

func (m *Model) expand(n *TreeNode) error {
	if !n.Content.IsDir() {
		return nil
	}
	if !n.loaded {
		children, err := m.children(n)
		if err != nil {
			return err
		}
		n.Children = children
		n.loaded = true
	}
	n.Expanded = true
	return nil
}

// refresh rebuilds the flattened nodes list after state changes.
func (m *Model) refresh() {
	m.nodes = m.nodes[:0]
	var walk func([]*TreeNode)
	walk = func(level []*TreeNode) {
		for _, n := range level {
			m.nodes = append(m.nodes, n)
			if n.Expanded {
				walk(n.Children)
			}
		}
	}
	walk(m.roots)
	m.cursor = max(min(m.cursor, len(m.nodes)-1), 0)
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.ensureCursorVisible()
}

// Len returns the number of visible rows.
func (m *Model) Len() int { return len(m.nodes) }

// Cursor returns the selected row index.
func (m *Model) Cursor() int { return m.cursor }

// MoveCursor moves the cursor by delta, respecting bounds. It reports whether
// the cursor moved.
func (m *Model) MoveCursor(delta int) bool {
	prev := m.cursor
	m.cursor = max(min(m.cursor+delta, len(m.nodes)-1), 0)
	m.ensureCursorVisible()
	return m.cursor != prev
}

// Expand opens the selected directory, loading its children on first use.
// On an already expanded directory it moves to the first child. It reports
// whether the selection changed.
func (m *Model) Expand() (bool, error) {
	n := m.SelectedNode()
	if n == nil || !n.Content.IsDir() {
		return false, nil
	}
	if n.Expanded {
		if len(n.Children) == 0 {
			return false, nil
		}
		return m.MoveCursor(1), nil
	}
	if err := m.expand(n); err != nil {
		return false, err
	}
	m.refresh()
	m.ensureCursorVisible()
	return false, nil
}

// Collapse closes the selected directory, or moves to the parent when the
// selection is not an expanded directory. It reports whether the selection
// changed.
func (m *Model) Collapse() bool {
	n := m.SelectedNode()
	if n == nil {
		return false
	}
	if n.Expanded {
		n.Expanded = false
		m.refresh()
		m.ensureCursorVisible()
		return false
	}
	if n.Parent == nil {
		return false
	}
	return m.selectNode(n.Parent)
}

// SelectedNode returns the node under the cursor.
func (m *Model) SelectedNode() *TreeNode {
	if m.cursor >= 0 && m.cursor < len(m.nodes) {
		return m.nodes[m.cursor]
	}
	return nil
}

// Selected returns the content under the cursor, or nil for an empty tree.
func (m *Model) Selected() *evidence.Content {
	if n := m.SelectedNode(); n != nil {
		return n.Content
	}
	return nil
}

// SelectByGUID moves the cursor to the visible row with the given GUID.
func (m *Model) SelectByGUID(guid string) bool {
	for i, n := range m.nodes {
		if n.Content.GUID() == guid {
			m.cursor = i
			m.ensureCursorVisible()
			return true
		}
	}
	return false
}

func (m *Model) selectNode(target *TreeNode) bool {
	for i, n := range m.nodes {
		if n == target {
			changed := i != m.cursor
			m.cursor = i
			m.ensureCursorVisible()
			return changed
		}
	}
	return false
}

// ensureCursorVisible adjusts scrollTop to keep the cursor in view.
func (m *Model) ensureCursorVisible() {
	vh := m.viewportHeight()
	if m.cursor >= m.scrollTop+vh {
		m.scrollTop = m.cursor - vh + 1
	}
	if m.cursor < m.scrollTop {
		m.scrollTop = m.cursor
	}
	m.scrollTop = max(min(m.scrollTop, len(m.nodes)-vh), 0)
}

// viewportHeight is the number of node rows; two lines stay free for the
// scroll indicators.
func (m *Model) viewportHeight() int {
	return max(m.height-2, 1)
}

// View renders the visible rows.
func (m *Model) View() string {
	if len(m.nodes) == 0 {
		return lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("Case is empty")
	}

	var sb strings.Builder
	muted := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	end := min(m.scrollTop+m.viewportHeight(), len(m.nodes))

	if m.scrollTop > 0 {
		sb.WriteString(muted.Render(fmt.Sprintf("  ↑ %d more above", m.scrollTop)))
		sb.WriteString("\n")
	}
	for i := m.scrollTop; i < end; i++ {
		sb.WriteString(m.renderNode(m.nodes[i], i == m.cursor))
		if i < end-1 {
			sb.WriteString("\n")
		}
	}
	if remaining := len(m.nodes) - end; remaining > 0 {
		sb.WriteString("\n")
		sb.WriteString(muted.Render(fmt.Sprintf("  ↓ %d more below", remaining)))
	}
	return sb.String()
}

func (m *Model) renderNode(n *TreeNode, selected bool) string {
	var sb strings.Builder
	if selected {
		sb.WriteString(styles.SelectionIndicatorStyle.Render(">"))
	} else {
		sb.WriteString(" ")
	}
	sb.WriteString(buildPrefix(n))

	name := n.Content.Name()
	switch {
	case n.Content.IsDir() && n.Expanded:
		name = "▾ " + name
	case n.Content.IsDir():
		name = "▸ " + name
	}
	if m.width > 0 {
		name = styles.TruncateString(name, max(m.width-lipgloss.Width(sb.String()), 1))
	}
	if n.Content.IsDir() {
		name = styles.DirStyle.Render(name)
	} else if selected {
		name = lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Bold(true).Render(name)
	}
	sb.WriteString(name)
	return sb.String()
}

// buildPrefix builds the branch characters for n.
func buildPrefix(n *TreeNode) string {
	if n.Depth == 0 {
		return ""
	}
	var parts []string
	for a := n.Parent; a != nil && a.Parent != nil; a = a.Parent {
		if isLastChild(a) {
			parts = append(parts, "   ")
		} else {
			parts = append(parts, "│  ")
		}
	}
	// parts were collected from the parent upwards.
	var sb strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		sb.WriteString(parts[i])
	}
	if isLastChild(n) {
		sb.WriteString("└─")
	} else {
		sb.WriteString("├─")
	}
	return sb.String()
}

func isLastChild(n *TreeNode) bool {
	if n.Parent == nil {
		return true
	}
	c := n.Parent.Children
	return len(c) > 0 && c[len(c)-1] == n
}
