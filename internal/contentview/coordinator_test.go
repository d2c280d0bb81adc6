package contentview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestCoordinator_OpenPopulatesOnce(t *testing.T) {
	j := &journal{}
	w := &recordingWidget{}
	c := newOpened(t, []*fakeViewer{newFake(j, "A"), newFake(j, "B")}, WithTabWidget(w))

	require.True(t, c.IsOpened())
	require.Len(t, c.Slots(), 2)
	require.NoError(t, c.Open(context.Background()))
	require.Len(t, c.Slots(), 2)
	require.Equal(t, []string{"A", "B"}, w.titles)
}

func TestCoordinator_OpenWithoutNodeDisablesEverything(t *testing.T) {
	j := &journal{}
	c := newOpened(t, []*fakeViewer{newFake(j, "A"), newFake(j, "B")})

	for _, s := range c.Slots() {
		require.False(t, s.Enabled())
	}
	require.Zero(t, j.count("display"))
	require.Zero(t, j.count("supports"), "an absent node is never offered to viewers")
}

func TestCoordinator_LastPreferenceWins(t *testing.T) {
	j := &journal{}
	a := newFake(j, "A")
	b := newFake(j, "B").prefer("n")
	cc := newFake(j, "C").prefer("n")
	c := newOpened(t, []*fakeViewer{a, b, cc})

	require.NoError(t, c.SelectNode(context.Background(), node("n")))
	require.Equal(t, 2, activeIndex(t, c))
	require.Equal(t, "n", cc.shown.ID())
	require.Nil(t, b.shown)
}

func TestCoordinator_KeepsActiveWithoutPreference(t *testing.T) {
	j := &journal{}
	a := newFake(j, "A")
	b := newFake(j, "B").prefer("first")
	cc := newFake(j, "C")
	c := newOpened(t, []*fakeViewer{a, b, cc})
	ctx := context.Background()

	require.NoError(t, c.SelectNode(ctx, node("first")))
	require.Equal(t, 1, activeIndex(t, c))

	require.NoError(t, c.SelectNode(ctx, node("second")))
	require.Equal(t, 1, activeIndex(t, c))
	require.Equal(t, "second", b.shown.ID())
}

func TestCoordinator_FallbackFromFirstTab(t *testing.T) {
	j := &journal{}
	a := newFake(j, "A").only("first").prefer("first")
	b := newFake(j, "B")
	cc := newFake(j, "C")
	c := newOpened(t, []*fakeViewer{a, b, cc})
	ctx := context.Background()

	require.NoError(t, c.SelectNode(ctx, node("first")))
	require.Equal(t, 0, activeIndex(t, c))

	require.NoError(t, c.SelectNode(ctx, node("second")))
	require.Equal(t, 1, activeIndex(t, c))
	require.False(t, c.Slots()[0].Enabled())
	require.Equal(t, "second", b.shown.ID())
}

func TestCoordinator_FallbackFromLaterTab(t *testing.T) {
	j := &journal{}
	a := newFake(j, "A")
	b := newFake(j, "B")
	cc := newFake(j, "C").only("first").prefer("first")
	c := newOpened(t, []*fakeViewer{a, b, cc})
	ctx := context.Background()

	require.NoError(t, c.SelectNode(ctx, node("first")))
	require.Equal(t, 2, activeIndex(t, c))

	require.NoError(t, c.SelectNode(ctx, node("second")))
	require.Equal(t, 0, activeIndex(t, c))
	require.Equal(t, "second", a.shown.ID())
}

func TestCoordinator_TwoSlots(t *testing.T) {
	t.Run("second takes over", func(t *testing.T) {
		j := &journal{}
		a := newFake(j, "A").only("first").prefer("first")
		b := newFake(j, "B").only("second")
		c := newOpened(t, []*fakeViewer{a, b})
		ctx := context.Background()

		require.NoError(t, c.SelectNode(ctx, node("first")))
		require.Equal(t, 0, activeIndex(t, c))

		require.NoError(t, c.SelectNode(ctx, node("second")))
		require.Equal(t, 1, activeIndex(t, c))
		require.False(t, c.Slots()[0].Enabled())
		require.True(t, c.Slots()[1].Enabled())
	})

	t.Run("neither supports", func(t *testing.T) {
		j := &journal{}
		a := newFake(j, "A").only("first").prefer("first")
		b := newFake(j, "B").only("first")
		c := newOpened(t, []*fakeViewer{a, b})
		ctx := context.Background()

		require.NoError(t, c.SelectNode(ctx, node("first")))
		j.reset()

		require.NoError(t, c.SelectNode(ctx, node("other")))
		require.False(t, c.Slots()[0].Enabled())
		require.False(t, c.Slots()[1].Enabled())
		require.Zero(t, j.count("display"))
		require.Equal(t, 2, j.count("reset"))
	})
}

func TestCoordinator_SingleUnsupportedSlot(t *testing.T) {
	j := &journal{}
	a := newFake(j, "A").only("first")
	c := newOpened(t, []*fakeViewer{a})
	ctx := context.Background()

	require.NoError(t, c.SelectNode(ctx, node("first")))
	require.Equal(t, "first", a.shown.ID())
	j.reset()

	require.NoError(t, c.SelectNode(ctx, node("other")))
	require.Equal(t, 0, activeIndex(t, c))
	require.False(t, c.Slots()[0].Enabled())
	require.Zero(t, j.count("display"))
	require.Nil(t, a.shown, "reset must clear the previous content")
}

func TestCoordinator_DisabledNeverActiveWhenAlternativeExists(t *testing.T) {
	j := &journal{}
	a := newFake(j, "A").only("x")
	b := newFake(j, "B").only("x", "first").prefer("first")
	cc := newFake(j, "C").only("first", "y")
	c := newOpened(t, []*fakeViewer{a, b, cc})
	ctx := context.Background()

	require.NoError(t, c.SelectNode(ctx, node("first")))
	require.Equal(t, 1, activeIndex(t, c))

	// B is disabled and the fallback A is disabled too; C must take over.
	require.NoError(t, c.SelectNode(ctx, node("y")))
	require.Equal(t, 2, activeIndex(t, c))
	require.Equal(t, "y", cc.shown.ID())
}

func TestCoordinator_ResetsBeforeDisplay(t *testing.T) {
	j := &journal{}
	a := newFake(j, "A")
	b := newFake(j, "B").prefer("n")
	c := newOpened(t, []*fakeViewer{a, b})
	j.reset()

	require.NoError(t, c.SelectNode(context.Background(), node("n")))
	require.Equal(t, []string{
		"reset A",
		"reset B",
		"supports A n",
		"prefers A n",
		"supports B n",
		"prefers B n",
		"display B n",
	}, j.entries)
}

func TestCoordinator_DisplaysOncePerSelection(t *testing.T) {
	j := &journal{}
	w := &recordingWidget{}
	a := newFake(j, "A").prefer("n")
	b := newFake(j, "B")
	c := newOpened(t, []*fakeViewer{a, b}, WithTabWidget(w))
	j.reset()

	require.NoError(t, c.SelectNode(context.Background(), node("n")))
	require.Equal(t, 1, j.count("display A"))
	require.Zero(t, j.count("display B"))
}

func TestCoordinator_LazyRefresh(t *testing.T) {
	j := &journal{}
	a := newFake(j, "A").prefer("n")
	b := newFake(j, "B")
	c := newOpened(t, []*fakeViewer{a, b})
	ctx := context.Background()

	require.NoError(t, c.SelectNode(ctx, node("n")))
	require.True(t, c.Slots()[1].IsOutdated())
	j.reset()

	require.NoError(t, c.ActivateTab(ctx, 1))
	require.Equal(t, []string{"display B n"}, j.entries)
	require.False(t, c.Slots()[1].IsOutdated())

	require.NoError(t, c.ActivateTab(ctx, 0))
	require.NoError(t, c.ActivateTab(ctx, 1))
	require.Equal(t, 1, j.count("display B"), "an up-to-date tab is not displayed again")
	require.Equal(t, 1, activeIndex(t, c))
}

func TestCoordinator_ActivateTabErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("not opened", func(t *testing.T) {
		c := NewCoordinator("test", false, factoriesFor(newFake(&journal{}, "A")))
		require.ErrorIs(t, c.ActivateTab(ctx, 0), ErrNotOpened)
	})

	t.Run("out of range", func(t *testing.T) {
		c := newOpened(t, []*fakeViewer{newFake(&journal{}, "A"), newFake(&journal{}, "B")})
		require.NoError(t, c.SelectNode(ctx, node("n")))
		before := activeIndex(t, c)

		for _, idx := range []int{-1, 2, 5} {
			err := c.ActivateTab(ctx, idx)
			require.ErrorIs(t, err, ErrIndexOutOfRange)
			require.Equal(t, before, activeIndex(t, c))
		}
	})

	t.Run("no slots", func(t *testing.T) {
		c := NewCoordinator("test", false, nil)
		require.NoError(t, c.Open(ctx))
		require.ErrorIs(t, c.ActivateTab(ctx, 0), ErrIndexOutOfRange)
		_, ok := c.ActiveIndex()
		require.False(t, ok)
	})

	t.Run("disabled", func(t *testing.T) {
		j := &journal{}
		c := newOpened(t, []*fakeViewer{newFake(j, "A"), newFake(j, "B").only("other")})
		require.NoError(t, c.SelectNode(ctx, node("n")))
		j.reset()

		require.ErrorIs(t, c.ActivateTab(ctx, 1), ErrSlotDisabled)
		require.Equal(t, 0, activeIndex(t, c))
		require.Empty(t, j.entries)
	})
}

func TestCoordinator_BusyReleased(t *testing.T) {
	ctx := context.Background()

	t.Run("no slots", func(t *testing.T) {
		busy := &countingBusy{}
		c := NewCoordinator("test", false, nil, WithBusy(busy))
		require.NoError(t, c.Open(ctx))
		require.NoError(t, c.SelectNode(ctx, node("n")))
		require.Equal(t, 2, busy.begun)
		require.Equal(t, busy.begun, busy.ended)
	})

	t.Run("display failure", func(t *testing.T) {
		busy := &countingBusy{}
		a := newFake(&journal{}, "A")
		c := newOpened(t, []*fakeViewer{a}, WithBusy(busy))
		a.displayErr = errors.New("unreadable")

		require.Error(t, c.SelectNode(ctx, node("n")))
		require.Equal(t, busy.begun, busy.ended)
	})

	t.Run("reset failure", func(t *testing.T) {
		busy := &countingBusy{}
		a := newFake(&journal{}, "A")
		c := newOpened(t, []*fakeViewer{a}, WithBusy(busy))
		a.resetErr = errors.New("stuck")

		require.Error(t, c.SelectNode(ctx, node("n")))
		require.Equal(t, busy.begun, busy.ended)
	})

	t.Run("tab refresh", func(t *testing.T) {
		busy := &countingBusy{}
		c := newOpened(t, []*fakeViewer{newFake(&journal{}, "A"), newFake(&journal{}, "B")}, WithBusy(busy))
		require.NoError(t, c.SelectNode(ctx, node("n")))
		begun := busy.begun

		// The pass kept tab 1 active, so tab 0 is the outdated one.
		require.NoError(t, c.ActivateTab(ctx, 0))
		require.Equal(t, begun+1, busy.begun)
		require.Equal(t, busy.begun, busy.ended)
	})
}

func TestCoordinator_PropagatesViewerErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("unreadable")

	a := newFake(&journal{}, "A").prefer("n")
	b := newFake(&journal{}, "B")
	c := newOpened(t, []*fakeViewer{a, b})
	a.displayErr = boom

	err := c.SelectNode(ctx, node("n"))
	require.ErrorIs(t, err, boom)
	require.True(t, c.Slots()[0].IsOutdated())

	b.displayErr = boom
	err = c.ActivateTab(ctx, 1)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, activeIndex(t, c), "the tab is active even though it failed to refresh")
	require.True(t, c.Slots()[1].IsOutdated())
}

func TestCoordinator_WidgetMirrorsState(t *testing.T) {
	j := &journal{}
	w := &recordingWidget{}
	a := newFake(j, "A").only("first")
	b := newFake(j, "B").prefer("second")
	c := newOpened(t, []*fakeViewer{a, b}, WithTabWidget(w))
	ctx := context.Background()

	require.NoError(t, c.SelectNode(ctx, node("second")))
	require.Equal(t, map[int]bool{0: false, 1: true}, w.enabled)
	require.Equal(t, 1, w.selected[len(w.selected)-1])

	require.NoError(t, c.SelectNode(ctx, node("first")))
	require.Equal(t, map[int]bool{0: true, 1: true}, w.enabled)
}

func TestCoordinator_ReentrantCallsAreQueued(t *testing.T) {
	j := &journal{}
	a := newFake(j, "A").prefer("first", "second")
	b := newFake(j, "B")
	c := newOpened(t, []*fakeViewer{a, b})
	ctx := context.Background()

	fired := false
	a.onDisplay = func(ctx context.Context, n Node) {
		if fired {
			return
		}
		fired = true
		// A host reacting to the display asks for another node and a tab switch.
		require.ErrorIs(t, c.SelectNode(ctx, node("second")), ErrQueued)
		require.ErrorIs(t, c.ActivateTab(ctx, 1), ErrQueued)
		require.Equal(t, "first", c.CurrentNode().ID(), "queued calls must not run mid-pass")
	}
	j.reset()

	require.NoError(t, c.SelectNode(ctx, node("first")))
	require.Equal(t, "second", c.CurrentNode().ID())
	require.Equal(t, 1, activeIndex(t, c))
	require.Equal(t, "second", b.shown.ID())
	require.Equal(t, []string{
		"reset A", "reset B",
		"supports A first", "prefers A first",
		"supports B first", "prefers B first",
		"display A first",
		"reset A", "reset B",
		"supports A second", "prefers A second",
		"supports B second", "prefers B second",
		"display A second",
		"display B second",
	}, j.entries)
}

func TestCoordinator_GateRecoversAfterPanic(t *testing.T) {
	a := newFake(&journal{}, "A")
	c := newOpened(t, []*fakeViewer{a})
	ctx := context.Background()

	a.onDisplay = func(context.Context, Node) { panic("viewer crashed") }
	require.Panics(t, func() { _ = c.SelectNode(ctx, node("n")) })

	a.onDisplay = nil
	require.NoError(t, c.SelectNode(ctx, node("m")))
	require.Equal(t, "m", a.shown.ID())
}

func TestCoordinator_Close(t *testing.T) {
	j := &journal{}
	a := newFake(j, "A")
	b := newFake(j, "B")
	c := newOpened(t, []*fakeViewer{a, b})
	ctx := context.Background()
	require.NoError(t, c.SelectNode(ctx, node("n")))

	boom := errors.New("release failed")
	a.displayErr = boom
	j.reset()

	err := c.Close(ctx)
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"display A <nil>", "display B <nil>"}, j.entries)
}

func TestCoordinator_NameAndPreferredID(t *testing.T) {
	ctx := context.Background()

	primary := NewCoordinator(PrimaryLabel, true, factoriesFor(newFake(&journal{}, "A")))
	require.NoError(t, primary.Open(ctx))
	require.Equal(t, PrimaryLabel, primary.Name())
	require.Equal(t, PrimaryID, primary.PreferredID())

	require.NoError(t, primary.SelectNode(ctx, node("n")))
	require.Equal(t, "/img/n", primary.Name())
	require.Equal(t, PrimaryID, primary.PreferredID())

	require.NoError(t, primary.SelectNode(ctx, testNode{id: "root"}))
	require.Equal(t, PrimaryLabel, primary.Name())

	secondary := NewCoordinator("Pinned", false, factoriesFor(newFake(&journal{}, "A")))
	require.NoError(t, secondary.Open(ctx))
	require.NoError(t, secondary.SelectNode(ctx, node("n")))
	require.Equal(t, "/img/n", secondary.PreferredID())

	require.NoError(t, secondary.SelectNode(ctx, nil))
	require.Equal(t, "Pinned", secondary.Name())
}

func TestCoordinator_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	a := newFake(&journal{}, "A")
	c := newOpened(t, []*fakeViewer{a}, WithTracer(tp.Tracer("test")))
	a.displayErr = errors.New("unreadable")
	require.Error(t, c.SelectNode(context.Background(), node("n")))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, "contentview.open", spans[0].Name())
	require.Equal(t, "contentview.select_node", spans[1].Name())
	require.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestCoordinator_FallbackAppliesAfterEarlierPreference(t *testing.T) {
	j := &journal{}
	a := newFake(j, "A")
	b := newFake(j, "B").prefer("second")
	cc := newFake(j, "C").only("first").prefer("first")
	c := newOpened(t, []*fakeViewer{a, b, cc})
	ctx := context.Background()

	require.NoError(t, c.SelectNode(ctx, node("first")))
	require.Equal(t, 2, activeIndex(t, c))

	// C was active and becomes unsupported after B preferred the node. The
	// fallback for C comes later in the pass, so it wins.
	require.NoError(t, c.SelectNode(ctx, node("second")))
	require.Equal(t, 0, activeIndex(t, c))
	require.Equal(t, "second", a.shown.ID())
	require.Nil(t, b.shown)
}

func TestCoordinator_ConcurrentCallerGetsItsOwnResult(t *testing.T) {
	j := &journal{}
	a := newFake(j, "A").only("first", "bad").prefer("first")
	b := newFake(j, "B").only("bad").prefer("bad")
	c := newOpened(t, []*fakeViewer{a, b})
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	a.onDisplay = func(_ context.Context, n Node) {
		if n.ID() != "first" {
			return
		}
		close(entered)
		<-release
	}

	firstErr := make(chan error, 1)
	go func() { firstErr <- c.SelectNode(ctx, node("first")) }()
	<-entered

	boom := errors.New("unreadable")
	b.displayErr = boom
	secondErr := make(chan error, 1)
	go func() { secondErr <- c.SelectNode(ctx, node("bad")) }()

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.queue) == 1
	}, time.Second, time.Millisecond)
	close(release)

	require.NoError(t, <-firstErr, "the first caller only sees its own pass")
	err := <-secondErr
	require.ErrorIs(t, err, boom)
	require.Equal(t, "bad", c.CurrentNode().ID(), "state is settled when the call returns")
	require.Equal(t, 1, activeIndex(t, c))
}

func TestCoordinator_WaitingCallerHonoursContext(t *testing.T) {
	a := newFake(&journal{}, "A")
	c := newOpened(t, []*fakeViewer{a})

	entered := make(chan struct{})
	release := make(chan struct{})
	a.onDisplay = func(_ context.Context, n Node) {
		if n.ID() == "first" {
			close(entered)
			<-release
		}
	}

	firstErr := make(chan error, 1)
	go func() { firstErr <- c.SelectNode(context.Background(), node("first")) }()
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, c.SelectNode(ctx, node("second")), context.Canceled)

	close(release)
	require.NoError(t, <-firstErr)
	require.Equal(t, "first", c.CurrentNode().ID(), "an abandoned call is not applied")
}

func TestCoordinator_WaitingCallerSeesAbortedPass(t *testing.T) {
	a := newFake(&journal{}, "A")
	c := newOpened(t, []*fakeViewer{a})

	entered := make(chan struct{})
	release := make(chan struct{})
	a.onDisplay = func(_ context.Context, n Node) {
		if n.ID() == "first" {
			close(entered)
			<-release
			panic("viewer crashed")
		}
	}

	panicked := make(chan any, 1)
	go func() {
		defer func() { panicked <- recover() }()
		_ = c.SelectNode(context.Background(), node("first"))
	}()
	<-entered

	secondErr := make(chan error, 1)
	go func() { secondErr <- c.SelectNode(context.Background(), node("second")) }()
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.queue) == 1
	}, time.Second, time.Millisecond)

	close(release)
	require.NotNil(t, <-panicked)
	require.ErrorIs(t, <-secondErr, ErrPassAborted)
}
