package emit

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter implements Emitter by creating OpenTelemetry spans.
//
// Each event becomes an instantaneous span with:
//   - Span name: "search." + event type (e.g. "search.node_added")
//   - Attributes: run id, ordinal, node, parent, type tag, label, reason, and Meta
//   - Status: Error for node_removed events caused by evaluation failures
//
// Usage:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//
//	emitter := emit.NewOTelEmitter(otel.Tracer("searchgraph"))
//	s, _ := search.New(gen, eval, search.WithListener(emitter))
type OTelEmitter struct {
	tracer trace.Tracer
	ctx    context.Context
}

// NewOTelEmitter creates a new OTelEmitter using the given tracer.
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{
		tracer: tracer,
		ctx:    context.Background(),
	}
}

// WithContext returns a copy of the emitter whose spans are children of the
// span carried by ctx, e.g. the span of the request that started the search.
func (o *OTelEmitter) WithContext(ctx context.Context) *OTelEmitter {
	return &OTelEmitter{tracer: o.tracer, ctx: ctx}
}

// Emit creates and immediately ends a span for the event.
func (o *OTelEmitter) Emit(event Event) {
	_, span := o.tracer.Start(o.ctx, "search."+string(event.Type))
	defer span.End()

	span.SetAttributes(
		attribute.String("search.run_id", event.RunID),
		attribute.Int64("search.ordinal", event.Ordinal),
		attribute.Int64("search.node_id", event.NodeID),
	)

	switch event.Type {
	case NodeAdded, NodeRemoved:
		span.SetAttributes(attribute.Int64("search.parent_id", event.ParentID))
	case NodeParentSwitched:
		span.SetAttributes(
			attribute.Int64("search.parent_id", event.ParentID),
			attribute.Int64("search.old_parent_id", event.OldParentID),
		)
	}
	if event.NodeType != "" {
		span.SetAttributes(attribute.String("search.node_type", event.NodeType))
	}
	if event.Label != "" {
		span.SetAttributes(attribute.String("search.label", event.Label))
	}
	if event.Reason != "" {
		span.SetAttributes(attribute.String("search.reason", event.Reason))
	}

	o.addMetadataAttributes(span, event.Meta)

	if event.Type == NodeRemoved {
		if msg, ok := event.Meta["error"].(string); ok {
			span.SetStatus(codes.Error, msg)
			span.RecordError(fmt.Errorf("%s", msg))
		}
	}
}

// Flush forces export of pending spans when the global tracer provider
// supports it (the SDK provider does, the no-op provider does not).
func (o *OTelEmitter) Flush(ctx context.Context) error {
	type flusher interface {
		ForceFlush(context.Context) error
	}

	if f, ok := otel.GetTracerProvider().(flusher); ok {
		return f.ForceFlush(ctx)
	}
	return nil
}

// addMetadataAttributes converts event metadata to span attributes under the
// "search.meta." prefix.
func (o *OTelEmitter) addMetadataAttributes(span trace.Span, meta map[string]interface{}) {
	for key, value := range meta {
		attrKey := "search.meta." + key

		switch v := value.(type) {
		case string:
			span.SetAttributes(attribute.String(attrKey, v))
		case int:
			span.SetAttributes(attribute.Int(attrKey, v))
		case int64:
			span.SetAttributes(attribute.Int64(attrKey, v))
		case float64:
			span.SetAttributes(attribute.Float64(attrKey, v))
		case bool:
			span.SetAttributes(attribute.Bool(attrKey, v))
		case time.Duration:
			span.SetAttributes(attribute.Int64(attrKey, int64(v/time.Millisecond)))
		default:
			span.SetAttributes(attribute.String(attrKey, fmt.Sprintf("%v", v)))
		}
	}
}
