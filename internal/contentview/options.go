package contentview

import (
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithBusy sets the busy indicator acquired around every pass.
func WithBusy(b Busy) Option {
	return func(c *Coordinator) { c.busy = b }
}

// WithTabWidget mirrors tab state into a host widget.
func WithTabWidget(w TabWidget) Option {
	return func(c *Coordinator) { c.widget = w }
}

// WithTracer records a span per pass.
func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) {
		if t != nil {
			c.tracer = t
		}
	}
}

func defaultTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("contentview")
}
