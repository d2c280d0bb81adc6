package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrWindow      = "caseview.window"
	AttrViewers     = "caseview.viewers"
	AttrNodeID      = "caseview.node.id"
	AttrActiveIndex = "caseview.active_index"
	AttrOutdated    = "caseview.outdated"
	AttrCasePath    = "caseview.case.path"
	AttrImported    = "caseview.import.files"
)

// Span names.
const (
	SpanOpen        = "contentview.open"
	SpanSelectNode  = "contentview.select_node"
	SpanActivateTab = "contentview.activate_tab"
	SpanImport      = "casedb.import"
)

// TraceID returns the trace ID of the span in ctx, or "" when ctx carries no
// recording span. Log lines use it to correlate with exported spans.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
