package app

import (
	"context"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/caseview/internal/contentview"
)

type opKind int

const (
	opSelect opKind = iota
	opTab
	opClose
)

func (k opKind) String() string {
	switch k {
	case opSelect:
		return "select"
	case opTab:
		return "tab"
	default:
		return "close"
	}
}

// op is one coordinator call made on behalf of a window.
type op struct {
	kind opKind
	node contentview.Node
	tab  int
}

// tabState is a copy of one slot taken after an op finished.
type tabState struct {
	title   string
	toolTip string
	enabled bool
	viewer  contentview.Viewer
}

// snapshot is what the UI knows about a coordinator. Coordinators are only
// touched by op commands; Update and View read snapshots.
type snapshot struct {
	name      string
	tabs      []tabState
	active    int
	hasActive bool
}

func takeSnapshot(c *contentview.Coordinator) snapshot {
	s := snapshot{name: c.Name()}
	for _, slot := range c.Slots() {
		s.tabs = append(s.tabs, tabState{
			title:   slot.Title(),
			toolTip: slot.Viewer().ToolTip(),
			enabled: slot.Enabled(),
			viewer:  slot.Viewer(),
		})
	}
	s.active, s.hasActive = c.ActiveIndex()
	return s
}

// activeTab returns the tab being shown, or nil.
func (s snapshot) activeTab() *tabState {
	if !s.hasActive || s.active < 0 || s.active >= len(s.tabs) {
		return nil
	}
	return &s.tabs[s.active]
}

// nextEnabled returns the next enabled tab after the active one in
// direction dir (+1 or -1), wrapping around. It reports false when no other
// tab is enabled.
func (s snapshot) nextEnabled(dir int) (int, bool) {
	n := len(s.tabs)
	if n == 0 {
		return 0, false
	}
	start := 0
	if s.hasActive {
		start = s.active
	}
	for step := 1; step < n; step++ {
		i := ((start+dir*step)%n + n) % n
		if s.tabs[i].enabled {
			return i, true
		}
	}
	return 0, false
}

// window is a coordinator shown by the app. At most one op per window is in
// flight; later ops wait in pending.
type window struct {
	coord    *contentview.Coordinator
	snap     snapshot
	inFlight bool
	pending  []op
	// node is the last node requested for the window. It is read instead of
	// the coordinator, which an op may be changing.
	node contentview.Node
	// closed is set once the primary's viewers were released with x. The
	// next selection shows it again.
	closed bool
}

func newWindow(c *contentview.Coordinator) *window {
	return &window{coord: c, snap: snapshot{name: c.Name()}, node: c.CurrentNode()}
}

// coalesce appends o to the pending ops. A selection or close supersedes
// everything queued before it, and consecutive tab switches collapse into
// the last one.
func coalesce(pending []op, o op) []op {
	switch o.kind {
	case opSelect, opClose:
		return []op{o}
	default:
		if n := len(pending); n > 0 && pending[n-1].kind == opTab {
			pending[n-1] = o
			return pending
		}
		return append(pending, o)
	}
}

// opDoneMsg carries the result of an op and the coordinator state after it.
type opDoneMsg struct {
	coord *contentview.Coordinator
	kind  opKind
	snap  snapshot
	err   error
}

// windowOpenedMsg reports the result of opening a secondary window.
type windowOpenedMsg struct {
	coord *contentview.Coordinator
	snap  snapshot
	err   error
}

// windowClosedMsg reports the result of closing a secondary window.
type windowClosedMsg struct {
	coord *contentview.Coordinator
	err   error
}

// enqueue runs o on w now, or queues it behind the op in flight.
func (m *Model) enqueue(w *window, o op) tea.Cmd {
	if o.kind == opSelect {
		w.node = o.node
	}
	if w.inFlight {
		w.pending = coalesce(w.pending, o)
		return nil
	}
	w.inFlight = true
	return runOp(m.ctx, w.coord, o)
}

// finish records the result of an op and starts the next pending one.
func (m *Model) finish(w *window, msg opDoneMsg) tea.Cmd {
	w.snap = msg.snap
	w.inFlight = false
	switch msg.kind {
	case opSelect:
		w.closed = false
	case opClose:
		w.closed = true
	}
	if len(w.pending) == 0 {
		return nil
	}
	next := w.pending[0]
	w.pending = w.pending[1:]
	w.inFlight = true
	return runOp(m.ctx, w.coord, next)
}

func runOp(ctx context.Context, c *contentview.Coordinator, o op) tea.Cmd {
	return func() tea.Msg {
		var err error
		switch o.kind {
		case opSelect:
			if !c.IsOpened() {
				err = c.Open(ctx)
			}
			if err == nil {
				err = c.SelectNode(ctx, o.node)
			}
		case opTab:
			err = c.ActivateTab(ctx, o.tab)
		case opClose:
			err = c.Close(ctx)
		}
		return opDoneMsg{coord: c, kind: o.kind, snap: takeSnapshot(c), err: err}
	}
}

func openSecondary(ctx context.Context, r *contentview.Registry, label string, n contentview.Node) tea.Cmd {
	return func() tea.Msg {
		c, err := r.CreateSecondary(ctx, label, n)
		if err != nil {
			return windowOpenedMsg{err: err}
		}
		return windowOpenedMsg{coord: c, snap: takeSnapshot(c)}
	}
}

func closeSecondary(ctx context.Context, r *contentview.Registry, c *contentview.Coordinator) tea.Cmd {
	return func() tea.Msg {
		_, err := r.CloseSecondary(ctx, c)
		return windowClosedMsg{coord: c, err: err}
	}
}

// findWindow returns the index of c's window, or -1.
func (m *Model) findWindow(c *contentview.Coordinator) int {
	return slices.IndexFunc(m.windows, func(w *window) bool { return w.coord == c })
}

// addWindow tracks c unless it is already tracked, returning its index.
func (m *Model) addWindow(c *contentview.Coordinator) int {
	if i := m.findWindow(c); i >= 0 {
		return i
	}
	m.windows = append(m.windows, newWindow(c))
	return len(m.windows) - 1
}

// removeWindow stops tracking c. The primary window is never removed.
func (m *Model) removeWindow(c *contentview.Coordinator) {
	i := m.findWindow(c)
	if i <= 0 {
		return
	}
	m.windows = slices.Delete(m.windows, i, i+1)
	if m.shown >= i {
		m.shown = max(m.shown-1, 0)
	}
}

func (m *Model) shownWindow() *window {
	if m.shown < 0 || m.shown >= len(m.windows) {
		return nil
	}
	return m.windows[m.shown]
}
