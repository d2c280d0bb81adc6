package contentview

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/zjrosen/caseview/internal/log"
	"github.com/zjrosen/caseview/internal/pubsub"
)

// InstanceEvent reports a coordinator being opened or closed by the registry.
type InstanceEvent struct {
	Coordinator *Coordinator
}

// Registry owns the primary coordinator and the secondary coordinators opened
// in their own windows. The primary is created on first use and lives as long
// as the registry.
type Registry struct {
	factories []Factory
	caseCtx   CaseContext
	opts      []Option

	mu          sync.Mutex
	primary     *Coordinator
	secondaries []*Coordinator

	events *pubsub.Broker[InstanceEvent]
}

// NewRegistry creates a registry whose coordinators use factories in order.
// caseCtx may be nil when no case backs the browser.
func NewRegistry(factories []Factory, caseCtx CaseContext, opts ...Option) *Registry {
	return &Registry{
		factories: append([]Factory(nil), factories...),
		caseCtx:   caseCtx,
		opts:      opts,
		events:    pubsub.NewBroker[InstanceEvent](),
	}
}

// Events publishes OpenedEvent and ClosedEvent for secondary coordinators.
func (r *Registry) Events() *pubsub.Broker[InstanceEvent] { return r.events }

// Default returns the primary coordinator, creating it on first call.
// The caller opens it when its window is first shown.
func (r *Registry) Default() *Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.primary == nil {
		r.primary = NewCoordinator(PrimaryLabel, true, r.factories, r.opts...)
		log.Debug(log.CatView, "Primary coordinator created", "viewers", len(r.factories))
	}
	return r.primary
}

// Find returns the coordinator with the given preferred ID, falling back to
// the primary when none matches.
func (r *Registry) Find(preferredID string) *Coordinator {
	primary := r.Default()
	if preferredID == PrimaryID {
		return primary
	}
	for _, c := range r.Secondaries() {
		if c.PreferredID() == preferredID {
			return c
		}
	}
	log.Warn(log.CatView, "No window with id, using primary", "id", preferredID)
	return primary
}

// CreateSecondary opens a new coordinator labelled label showing n.
func (r *Registry) CreateSecondary(ctx context.Context, label string, n Node) (*Coordinator, error) {
	c := NewCoordinator(label, false, r.factories, r.opts...)
	if err := c.Open(ctx); err != nil {
		return nil, fmt.Errorf("opening window %q: %w", label, err)
	}
	if err := c.SelectNode(ctx, n); err != nil {
		if closeErr := c.Close(ctx); closeErr != nil {
			log.ErrorErr(log.CatView, "Failed to release viewers of unopened window", closeErr, "label", label)
		}
		return nil, fmt.Errorf("showing node in window %q: %w", label, err)
	}

	r.mu.Lock()
	r.secondaries = append(r.secondaries, c)
	count := len(r.secondaries)
	r.mu.Unlock()

	log.Info(log.CatView, "Secondary window opened", "label", label, "node", nodeID(n), "open", count)
	r.events.Publish(pubsub.OpenedEvent, InstanceEvent{Coordinator: c})
	return c, nil
}

// CloseSecondary clears and forgets c. It reports false, doing nothing, when
// c is not a live secondary. c is forgotten even when clearing fails.
func (r *Registry) CloseSecondary(ctx context.Context, c *Coordinator) (bool, error) {
	r.mu.Lock()
	idx := slices.Index(r.secondaries, c)
	if idx < 0 {
		r.mu.Unlock()
		return false, nil
	}
	r.secondaries = slices.Delete(r.secondaries, idx, idx+1)
	r.mu.Unlock()

	err := c.Close(ctx)
	log.Info(log.CatView, "Secondary window closed", "label", c.Label())
	r.events.Publish(pubsub.ClosedEvent, InstanceEvent{Coordinator: c})
	if err != nil {
		return true, fmt.Errorf("closing window %q: %w", c.Label(), err)
	}
	return true, nil
}

// Secondaries returns the live secondary coordinators in creation order.
func (r *Registry) Secondaries() []*Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.secondaries)
}

// CanClose reports whether c's window may be closed. Secondary windows always
// may; the primary only while no case is open or the case has no data
// sources. A failing count keeps the primary open.
func (r *Registry) CanClose(c *Coordinator) bool {
	if c == nil || !c.IsPrimary() {
		return true
	}
	if r.caseCtx == nil || !r.caseCtx.IsOpen() {
		return true
	}
	count, err := r.caseCtx.RootObjectCount()
	if err != nil {
		log.ErrorErr(log.CatView, "Counting case data sources", err)
		return false
	}
	return count == 0
}

// Shutdown stops event delivery.
func (r *Registry) Shutdown() {
	r.events.Close()
}
