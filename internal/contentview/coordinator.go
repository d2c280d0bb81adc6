package contentview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/caseview/internal/log"
	"github.com/zjrosen/caseview/internal/tracing"
)

const (
	// PrimaryLabel names the primary coordinator while nothing with a path is selected.
	PrimaryLabel = "Content"
	// PrimaryID is the stable identifier of the primary coordinator.
	PrimaryID = "DataContent"
)

const noActive = -1

// Coordinator manages the viewer tabs of one content window.
type Coordinator struct {
	label     string
	primary   bool
	factories []Factory

	slots   []*Slot
	opened  bool
	active  int
	current Node
	name    string

	busy   Busy
	widget TabWidget
	tracer trace.Tracer

	// mu guards the run gate only; see the package doc for threading.
	mu      sync.Mutex
	running bool
	queue   []queuedOp
}

// NewCoordinator creates a coordinator that will populate one slot per factory
// on Open. label is the window name used while no node path is shown.
func NewCoordinator(label string, primary bool, factories []Factory, opts ...Option) *Coordinator {
	c := &Coordinator{
		label:     label,
		name:      label,
		primary:   primary,
		factories: append([]Factory(nil), factories...),
		active:    noActive,
		tracer:    defaultTracer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsPrimary reports whether this is the always-present coordinator.
func (c *Coordinator) IsPrimary() bool { return c.primary }

// Label returns the name used when no node path is shown.
func (c *Coordinator) Label() string { return c.label }

// Name returns the window name: the selected node's path, or the label.
func (c *Coordinator) Name() string { return c.name }

// PreferredID identifies the window to the host.
func (c *Coordinator) PreferredID() string {
	if c.primary {
		return PrimaryID
	}
	return c.name
}

// IsOpened reports whether Open has populated the slots.
func (c *Coordinator) IsOpened() bool { return c.opened }

// CurrentNode returns the last node the coordinator was asked to show.
func (c *Coordinator) CurrentNode() Node { return c.current }

// Slots returns the slots in registration order.
func (c *Coordinator) Slots() []*Slot {
	return append([]*Slot(nil), c.slots...)
}

// ActiveIndex returns the active slot index, or false when there are no slots.
func (c *Coordinator) ActiveIndex() (int, bool) {
	if c.active == noActive {
		return 0, false
	}
	return c.active, true
}

// ActiveSlot returns the active slot or nil.
func (c *Coordinator) ActiveSlot() *Slot {
	if c.active == noActive || c.active >= len(c.slots) {
		return nil
	}
	return c.slots[c.active]
}

// Open populates the slots on first call and re-evaluates them against the
// current node.
func (c *Coordinator) Open(ctx context.Context) error {
	return c.serialize(ctx, func(ctx context.Context) error {
		ctx, span := c.tracer.Start(ctx, tracing.SpanOpen, trace.WithAttributes(
			attribute.String(tracing.AttrWindow, c.label),
			attribute.Int(tracing.AttrViewers, len(c.factories)),
		))
		defer span.End()

		if !c.opened {
			c.populate()
		}
		return endSpan(span, c.pass(ctx))
	})
}

func (c *Coordinator) populate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slots = make([]*Slot, 0, len(c.factories))
	for _, f := range c.factories {
		v := f.New()
		c.slots = append(c.slots, newSlot(v))
		if c.widget != nil {
			c.widget.AddTab(v.Title(), v.ToolTip())
		}
	}
	c.opened = true
	if len(c.slots) > 0 {
		c.active = 0
	}
	log.Debug(log.CatView, "Viewer slots populated", "window", c.label, "count", len(c.slots))
}

// SelectNode makes n the current node, re-evaluates every slot and displays n
// in the resulting active slot. A nil node clears the selection.
func (c *Coordinator) SelectNode(ctx context.Context, n Node) error {
	return c.serialize(ctx, func(ctx context.Context) error {
		ctx, span := c.tracer.Start(ctx, tracing.SpanSelectNode, trace.WithAttributes(
			attribute.String(tracing.AttrWindow, c.label),
			attribute.String(tracing.AttrNodeID, nodeID(n)),
		))
		defer span.End()

		c.current = n
		c.name = c.label
		if n != nil && n.DisplayPath() != "" {
			c.name = n.DisplayPath()
		}
		err := c.pass(ctx)
		span.SetAttributes(attribute.Int(tracing.AttrActiveIndex, c.active))
		return endSpan(span, err)
	})
}

// pass resets every slot, resolves enabled and active slots for the current
// node, then displays the node once in the active slot.
func (c *Coordinator) pass(ctx context.Context) error {
	end := c.beginBusy()
	defer end()

	if len(c.slots) == 0 {
		return nil
	}
	if err := c.resetAndSelect(ctx, c.current); err != nil {
		return err
	}
	return c.finalize(ctx)
}

func (c *Coordinator) resetAndSelect(ctx context.Context, n Node) error {
	for _, s := range c.slots {
		if err := s.Reset(ctx); err != nil {
			return fmt.Errorf("resetting %s viewer: %w", s.Title(), err)
		}
	}

	prev := c.active
	for i, s := range c.slots {
		supported := s.Supports(n)
		if !supported {
			c.setEnabled(i, false)
			if i == prev {
				c.setActive(c.fallbackFor(i))
			}
			continue
		}
		c.setEnabled(i, true)
		// Later preferences override earlier ones.
		if s.IsPreferred(n, supported) {
			c.setActive(i)
		}
	}

	c.settle()
	return nil
}

// fallbackFor picks the tab to show when the active tab at i gets disabled.
func (c *Coordinator) fallbackFor(i int) int {
	if i > 0 || len(c.slots) < 2 {
		return 0
	}
	return 1
}

// settle moves the active index off a disabled slot when any slot is enabled.
// With every slot disabled the index is left where the fallback put it.
func (c *Coordinator) settle() {
	if s := c.ActiveSlot(); s == nil || s.enabled {
		return
	}
	for i, s := range c.slots {
		if s.enabled {
			log.Debug(log.CatView, "Active tab disabled, moving to first enabled", "window", c.label, "from", c.active, "to", i)
			c.setActive(i)
			return
		}
	}
	log.Debug(log.CatView, "No viewer supports node", "window", c.label, "node", nodeID(c.current))
}

// finalize displays the current node in the active slot at most once.
func (c *Coordinator) finalize(ctx context.Context) error {
	s := c.ActiveSlot()
	if s == nil || !s.enabled || !s.outdated {
		return nil
	}
	if err := s.DisplayNode(ctx, c.current); err != nil {
		return fmt.Errorf("displaying node in %s viewer: %w", s.Title(), err)
	}
	log.Debug(log.CatView, "Node displayed", "window", c.label, "node", nodeID(c.current), "viewer", s.Title(), "trace", tracing.TraceID(ctx))
	return nil
}

// ActivateTab makes the slot at index active, refreshing it first if it is
// outdated. Activating the already up-to-date slot displays nothing.
func (c *Coordinator) ActivateTab(ctx context.Context, index int) error {
	c.mu.Lock()
	opened, count := c.opened, len(c.slots)
	c.mu.Unlock()

	if !opened {
		return ErrNotOpened
	}
	if index < 0 || index >= count {
		return fmt.Errorf("%w: index %d, %d tabs", ErrIndexOutOfRange, index, count)
	}

	return c.serialize(ctx, func(ctx context.Context) error {
		s := c.slots[index]
		if !s.enabled {
			return fmt.Errorf("%w: %s", ErrSlotDisabled, s.Title())
		}

		ctx, span := c.tracer.Start(ctx, tracing.SpanActivateTab, trace.WithAttributes(
			attribute.String(tracing.AttrWindow, c.label),
			attribute.Int(tracing.AttrActiveIndex, index),
			attribute.Bool(tracing.AttrOutdated, s.outdated),
		))
		defer span.End()

		c.setActive(index)
		if !s.outdated {
			return nil
		}

		end := c.beginBusy()
		defer end()
		if err := s.DisplayNode(ctx, c.current); err != nil {
			return endSpan(span, fmt.Errorf("refreshing %s viewer: %w", s.Title(), err))
		}
		log.Debug(log.CatView, "Refreshed outdated tab", "window", c.label, "index", index, "viewer", s.Title())
		return nil
	})
}

// Close clears every slot so viewers release what they hold for the current
// node. Every slot is cleared even if some fail.
func (c *Coordinator) Close(ctx context.Context) error {
	return c.serialize(ctx, func(ctx context.Context) error {
		var errs []error
		for _, s := range c.slots {
			if err := s.DisplayNode(ctx, nil); err != nil {
				errs = append(errs, fmt.Errorf("clearing %s viewer: %w", s.Title(), err))
			}
		}
		log.Debug(log.CatView, "Coordinator closed", "window", c.label, "errors", len(errs))
		return errors.Join(errs...)
	})
}

func (c *Coordinator) setActive(i int) {
	if c.active == i {
		return
	}
	c.active = i
	if c.widget != nil {
		c.widget.SetSelectedIndex(i)
	}
}

func (c *Coordinator) setEnabled(i int, enabled bool) {
	c.slots[i].enabled = enabled
	if c.widget != nil {
		c.widget.SetEnabledAt(i, enabled)
	}
}

func (c *Coordinator) beginBusy() func() {
	if c.busy == nil {
		return func() {}
	}
	end := c.busy.Begin()
	if end == nil {
		return func() {}
	}
	return end
}

// gateKey marks a context handed to an op running under c's gate.
type gateKey struct{ c *Coordinator }

// queuedOp is an op waiting for the gate. done is nil for re-entrant calls,
// whose errors are reported to the caller that owns the gate.
type queuedOp struct {
	ctx  context.Context
	op   func(context.Context) error
	done chan error
}

// serialize runs op under the coordinator's gate. Ops never interleave.
//
// A call made from inside a running op with the context that op was given is
// queued and returns ErrQueued at once; the owner of the gate runs it after
// the current op and reports its error. Any other call made while the gate is
// held waits for its own op to run and returns that op's error.
func (c *Coordinator) serialize(ctx context.Context, op func(context.Context) error) error {
	reentrant := ctx.Value(gateKey{c}) != nil

	c.mu.Lock()
	if c.running {
		q := queuedOp{ctx: ctx, op: op}
		if !reentrant {
			q.done = make(chan error, 1)
		}
		c.queue = append(c.queue, q)
		c.mu.Unlock()
		if reentrant {
			log.Debug(log.CatView, "Queued behind running pass", "window", c.label)
			return ErrQueued
		}
		log.Debug(log.CatView, "Waiting for running pass", "window", c.label)
		select {
		case err := <-q.done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.running = true
	c.mu.Unlock()

	next := queuedOp{ctx: ctx, op: op}
	delivered := false
	finished := false
	defer func() {
		if finished {
			return
		}
		c.mu.Lock()
		pending := c.queue
		c.running = false
		c.queue = nil
		c.mu.Unlock()
		if next.done != nil && !delivered {
			next.done <- ErrPassAborted
		}
		for _, q := range pending {
			if q.done != nil {
				q.done <- ErrPassAborted
			}
		}
	}()

	var errs []error
	for {
		delivered = false
		var err error
		if next.done != nil && next.ctx.Err() != nil {
			// The waiting caller already gave up.
			err = next.ctx.Err()
		} else {
			err = next.op(context.WithValue(next.ctx, gateKey{c}, true))
		}
		if next.done != nil {
			next.done <- err
			delivered = true
		} else if err != nil {
			errs = append(errs, err)
		}

		c.mu.Lock()
		if len(c.queue) == 0 {
			c.running = false
			c.mu.Unlock()
			break
		}
		next = c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()
	}
	finished = true

	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

func endSpan(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
