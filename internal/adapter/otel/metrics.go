package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "tenantgate"

// Metrics holds all gateway metric instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	GateDecisions  metric.Int64Counter
	VerifyDuration metric.Float64Histogram
	TenantCacheHit metric.Int64Counter
	Invalidations  metric.Int64Counter
}

// NewMetrics creates all metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.GateDecisions, err = meter.Int64Counter("tenantgate.gate.decisions",
		metric.WithDescription("Number of gate decisions by outcome and reason"))
	if err != nil {
		return nil, err
	}

	m.VerifyDuration, err = meter.Float64Histogram("tenantgate.session.verify.duration_seconds",
		metric.WithDescription("Identity provider session verification latency in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m.TenantCacheHit, err = meter.Int64Counter("tenantgate.tenant.cache.lookups",
		metric.WithDescription("Tenant metadata cache lookups by result"))
	if err != nil {
		return nil, err
	}

	m.Invalidations, err = meter.Int64Counter("tenantgate.tenant.invalidations",
		metric.WithDescription("Tenant cache invalidations received from the bus"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordDecision counts one gate outcome.
func (m *Metrics) RecordDecision(ctx context.Context, outcome, reason string) {
	if m == nil {
		return
	}
	m.GateDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("reason", reason),
	))
}

// RecordVerify records the latency and result of a session verification.
func (m *Metrics) RecordVerify(ctx context.Context, d time.Duration, result string) {
	if m == nil {
		return
	}
	m.VerifyDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("result", result)))
}

// RecordCacheLookup counts a tenant cache hit or miss.
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.TenantCacheHit.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordInvalidation counts one tenant cache invalidation.
func (m *Metrics) RecordInvalidation(ctx context.Context) {
	if m == nil {
		return
	}
	m.Invalidations.Add(ctx, 1)
}

// ObserveLogDrops exports fn, the running count of log records dropped by
// the async handler, as an observable counter.
func (m *Metrics) ObserveLogDrops(fn func() int64) error {
	if m == nil || fn == nil {
		return nil
	}
	_, err := otel.Meter(meterName).Int64ObservableCounter("tenantgate.log.dropped",
		metric.WithDescription("Log records dropped because the async queue was full"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(fn())
			return nil
		}))
	return err
}
