package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "dashboard"

// StartMutationSpan starts a span for one coordinator operation.
func StartMutationSpan(ctx context.Context, kind, op, id string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "mutation."+op,
		trace.WithAttributes(
			attribute.String("entity.kind", kind),
			attribute.String("entity.id", id),
		),
	)
}

// StartSnapshotSpan starts a span for a snapshot load after a cache miss.
func StartSnapshotSpan(ctx context.Context, key string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "snapshot.load",
		trace.WithAttributes(attribute.String("snapshot.key", key)),
	)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
