package contentview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/caseview/internal/pubsub"
)

func newTestRegistry(caseCtx CaseContext, viewers ...*fakeViewer) *Registry {
	return NewRegistry(factoriesFor(viewers...), caseCtx)
}

func TestRegistry_DefaultIsSingleton(t *testing.T) {
	r := newTestRegistry(nil, newFake(&journal{}, "A"))
	t.Cleanup(r.Shutdown)

	first := r.Default()
	require.Same(t, first, r.Default())
	require.True(t, first.IsPrimary())
	require.Equal(t, PrimaryLabel, first.Name())
	require.False(t, first.IsOpened(), "the host opens the primary")
}

func TestRegistry_CreateSecondary(t *testing.T) {
	j := &journal{}
	r := newTestRegistry(nil, newFake(j, "A"))
	t.Cleanup(r.Shutdown)

	c, err := r.CreateSecondary(context.Background(), "Pinned", node("n"))
	require.NoError(t, err)
	require.False(t, c.IsPrimary())
	require.True(t, c.IsOpened())
	require.Equal(t, "n", c.CurrentNode().ID())
	require.Equal(t, "/img/n", c.Name())
	require.Equal(t, 1, j.count("display A n"))
	require.Equal(t, []*Coordinator{c}, r.Secondaries())
}

func TestRegistry_CreateSecondaryFailure(t *testing.T) {
	j := &journal{}
	v := newFake(j, "A")
	unreadable := errors.New("unreadable")
	v.displayErr = unreadable
	r := newTestRegistry(nil, v)
	t.Cleanup(r.Shutdown)

	c, err := r.CreateSecondary(context.Background(), "Pinned", node("n"))
	require.ErrorIs(t, err, unreadable)
	require.Nil(t, c)
	require.Empty(t, r.Secondaries())
	require.Equal(t, "display A <nil>", j.entries[len(j.entries)-1], "viewers of the failed window are released")
}

func TestRegistry_CloseSecondary(t *testing.T) {
	j := &journal{}
	r := newTestRegistry(nil, newFake(j, "A"))
	t.Cleanup(r.Shutdown)
	ctx := context.Background()

	c, err := r.CreateSecondary(ctx, "Pinned", node("n"))
	require.NoError(t, err)
	j.reset()

	closed, err := r.CloseSecondary(ctx, c)
	require.NoError(t, err)
	require.True(t, closed)
	require.Empty(t, r.Secondaries())
	require.Equal(t, []string{"display A <nil>"}, j.entries)

	j.reset()
	closed, err = r.CloseSecondary(ctx, c)
	require.NoError(t, err)
	require.False(t, closed, "closing twice is a no-op")
	require.Empty(t, j.entries)
}

func TestRegistry_CloseSecondaryForgetsOnError(t *testing.T) {
	v := newFake(&journal{}, "A")
	r := newTestRegistry(nil, v)
	t.Cleanup(r.Shutdown)
	ctx := context.Background()

	c, err := r.CreateSecondary(ctx, "Pinned", node("n"))
	require.NoError(t, err)
	v.displayErr = errors.New("release failed")

	closed, err := r.CloseSecondary(ctx, c)
	require.Error(t, err)
	require.True(t, closed)
	require.Empty(t, r.Secondaries())
}

func TestRegistry_CloseSecondaryIgnoresPrimary(t *testing.T) {
	r := newTestRegistry(nil, newFake(&journal{}, "A"))
	t.Cleanup(r.Shutdown)

	closed, err := r.CloseSecondary(context.Background(), r.Default())
	require.NoError(t, err)
	require.False(t, closed)
}

func TestRegistry_SecondariesReturnsCopy(t *testing.T) {
	r := newTestRegistry(nil, newFake(&journal{}, "A"))
	t.Cleanup(r.Shutdown)

	_, err := r.CreateSecondary(context.Background(), "Pinned", node("n"))
	require.NoError(t, err)

	list := r.Secondaries()
	list[0] = nil
	require.NotNil(t, r.Secondaries()[0])
}

func TestRegistry_CanClose(t *testing.T) {
	tests := []struct {
		name    string
		caseCtx CaseContext
		want    bool
	}{
		{name: "no case", caseCtx: nil, want: true},
		{name: "case closed", caseCtx: fakeCase{open: false, count: 3}, want: true},
		{name: "empty case", caseCtx: fakeCase{open: true, count: 0}, want: true},
		{name: "case with data sources", caseCtx: fakeCase{open: true, count: 2}, want: false},
		{name: "count fails", caseCtx: fakeCase{open: true, err: errors.New("db locked")}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(tt.caseCtx, newFake(&journal{}, "A"))
			t.Cleanup(r.Shutdown)

			require.Equal(t, tt.want, r.CanClose(r.Default()))

			secondary, err := r.CreateSecondary(context.Background(), "Pinned", node("n"))
			require.NoError(t, err)
			require.True(t, r.CanClose(secondary), "secondary windows always close")
		})
	}
}

func TestRegistry_Find(t *testing.T) {
	r := newTestRegistry(nil, newFake(&journal{}, "A"))
	t.Cleanup(r.Shutdown)

	c, err := r.CreateSecondary(context.Background(), "Pinned", node("n"))
	require.NoError(t, err)

	require.Same(t, r.Default(), r.Find(PrimaryID))
	require.Same(t, c, r.Find("/img/n"))
	require.Same(t, r.Default(), r.Find("missing"))
}

func TestRegistry_PublishesLifecycleEvents(t *testing.T) {
	r := newTestRegistry(nil, newFake(&journal{}, "A"))
	t.Cleanup(r.Shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := r.Events().Subscribe(ctx)

	c, err := r.CreateSecondary(ctx, "Pinned", node("n"))
	require.NoError(t, err)
	_, err = r.CloseSecondary(ctx, c)
	require.NoError(t, err)

	for _, want := range []pubsub.EventType{pubsub.OpenedEvent, pubsub.ClosedEvent} {
		select {
		case ev := <-ch:
			require.Equal(t, want, ev.Type)
			require.Same(t, c, ev.Payload.Coordinator)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s event", want)
		}
	}
}
