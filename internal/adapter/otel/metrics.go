package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "dashboard"

// Metrics holds the mutation and snapshot instruments.
type Metrics struct {
	Mutations        metric.Int64Counter
	MutationFailures metric.Int64Counter
	MutationDuration metric.Float64Histogram
	SnapshotLoads    metric.Int64Counter
}

// NewMetrics creates all instruments on mp, or on the global provider when
// mp is nil.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Mutations, err = meter.Int64Counter("dashboard.mutations",
		metric.WithDescription("Number of mutations applied"))
	if err != nil {
		return nil, err
	}

	m.MutationFailures, err = meter.Int64Counter("dashboard.mutations.failed",
		metric.WithDescription("Number of mutations that failed"))
	if err != nil {
		return nil, err
	}

	m.MutationDuration, err = meter.Float64Histogram("dashboard.mutation.duration_seconds",
		metric.WithDescription("Mutation duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m.SnapshotLoads, err = meter.Int64Counter("dashboard.snapshot.loads",
		metric.WithDescription("Snapshots loaded from the store after a cache miss"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordMutation counts one finished mutation. A nil receiver is a no-op.
func (m *Metrics) RecordMutation(ctx context.Context, kind, op string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("entity.kind", kind),
		attribute.String("mutation.op", op),
	)
	m.Mutations.Add(ctx, 1, attrs)
	m.MutationDuration.Record(ctx, elapsed.Seconds(), attrs)
	if err != nil {
		m.MutationFailures.Add(ctx, 1, attrs)
	}
}

// RecordSnapshotLoad counts one snapshot load for key.
func (m *Metrics) RecordSnapshotLoad(ctx context.Context, key string) {
	if m == nil {
		return
	}
	m.SnapshotLoads.Add(ctx, 1, metric.WithAttributes(attribute.String("snapshot.key", key)))
}
