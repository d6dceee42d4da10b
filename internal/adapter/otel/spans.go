package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "tenantgate"

// StartVerifySpan starts a span for a session verification call.
func StartVerifySpan(ctx context.Context) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "session.verify",
		trace.WithSpanKind(trace.SpanKindClient))
}

// StartMembershipSpan starts a span for active membership resolution.
func StartMembershipSpan(ctx context.Context, profileID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "membership.resolve",
		trace.WithAttributes(attribute.String("profile.id", profileID)),
	)
}

// StartTenantSpan starts a span for loading tenant metadata.
func StartTenantSpan(ctx context.Context, tenantID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "tenant.load",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
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
