package contentview

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type testNode struct {
	id   string
	path string
}

func (n testNode) ID() string          { return n.id }
func (n testNode) Name() string        { return n.id }
func (n testNode) DisplayPath() string { return n.path }

func node(id string) Node { return testNode{id: id, path: "/img/" + id} }

// journal records viewer calls across all viewers in order.
type journal struct {
	entries []string
}

func (j *journal) add(format string, args ...any) {
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

func (j *journal) reset() { j.entries = nil }

func (j *journal) count(prefix string) int {
	n := 0
	for _, e := range j.entries {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

type fakeViewer struct {
	title    string
	j        *journal
	supports map[string]bool // node id -> supported; "*" matches everything
	prefers  map[string]bool

	displayErr error
	resetErr   error
	onDisplay  func(ctx context.Context, n Node)

	shown Node
}

func newFake(j *journal, title string) *fakeViewer {
	return &fakeViewer{title: title, j: j, supports: map[string]bool{"*": true}, prefers: map[string]bool{}}
}

func (v *fakeViewer) only(ids ...string) *fakeViewer {
	v.supports = map[string]bool{}
	for _, id := range ids {
		v.supports[id] = true
	}
	return v
}

func (v *fakeViewer) prefer(ids ...string) *fakeViewer {
	for _, id := range ids {
		v.prefers[id] = true
	}
	return v
}

func (v *fakeViewer) Title() string   { return v.title }
func (v *fakeViewer) ToolTip() string { return v.title + " viewer" }

func (v *fakeViewer) Supports(n Node) bool {
	v.j.add("supports %s %s", v.title, n.ID())
	return v.supports["*"] || v.supports[n.ID()]
}

func (v *fakeViewer) IsPreferred(n Node, supported bool) bool {
	v.j.add("prefers %s %s", v.title, n.ID())
	return supported && v.prefers[n.ID()]
}

func (v *fakeViewer) DisplayNode(ctx context.Context, n Node) error {
	id := "<nil>"
	if n != nil {
		id = n.ID()
	}
	v.j.add("display %s %s", v.title, id)
	if v.displayErr != nil {
		return v.displayErr
	}
	v.shown = n
	if v.onDisplay != nil {
		v.onDisplay(ctx, n)
	}
	return nil
}

func (v *fakeViewer) Reset(ctx context.Context) error {
	v.j.add("reset %s", v.title)
	v.shown = nil
	return v.resetErr
}

func (v *fakeViewer) View(width, height int) string { return v.title }

func factoriesFor(viewers ...*fakeViewer) []Factory {
	factories := make([]Factory, 0, len(viewers))
	for _, v := range viewers {
		factories = append(factories, FactoryFunc{FactoryName: v.title, Fn: func() Viewer { return v }})
	}
	return factories
}

// newOpened creates and opens a secondary coordinator over viewers.
func newOpened(t *testing.T, viewers []*fakeViewer, opts ...Option) *Coordinator {
	t.Helper()
	c := NewCoordinator("test", false, factoriesFor(viewers...), opts...)
	require.NoError(t, c.Open(context.Background()))
	return c
}

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

func activeIndex(t testingT, c *Coordinator) int {
	t.Helper()
	i, ok := c.ActiveIndex()
	require.True(t, ok, "coordinator should have an active index")
	return i
}

type countingBusy struct {
	begun, ended int
}

func (b *countingBusy) Begin() func() {
	b.begun++
	return func() { b.ended++ }
}

type recordingWidget struct {
	titles   []string
	enabled  map[int]bool
	selected []int
}

func (w *recordingWidget) AddTab(title, _ string) { w.titles = append(w.titles, title) }
func (w *recordingWidget) SetEnabledAt(i int, enabled bool) {
	if w.enabled == nil {
		w.enabled = map[int]bool{}
	}
	w.enabled[i] = enabled
}
func (w *recordingWidget) SetSelectedIndex(i int) { w.selected = append(w.selected, i) }

type fakeCase struct {
	open  bool
	count int
	err   error
}

func (c fakeCase) IsOpen() bool                  { return c.open }
func (c fakeCase) RootObjectCount() (int, error) { return c.count, c.err }
