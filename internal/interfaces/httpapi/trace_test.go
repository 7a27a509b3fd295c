package httpapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func tracedContext() context.Context {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	return trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))
}

func TestStartSpan_SkipsUntracedRequests(t *testing.T) {
	ctx := context.Background()
	got, span := startSpan(ctx, "httpapi.Handler.Healthz")
	defer span.End()

	assert.Equal(t, ctx, got)
	assert.False(t, span.SpanContext().IsValid())
}

func TestStartSpan_OnlyHandlersOpenSpans(t *testing.T) {
	ctx := tracedContext()

	_, helper := startSpan(ctx, "httpapi.RequireAuth")
	assert.False(t, helper.SpanContext().IsValid())

	_, handler := startSpan(ctx, "httpapi.Handler.TriggerAnalysis")
	defer handler.End()
	assert.Equal(t, trace.SpanContextFromContext(ctx).TraceID(), handler.SpanContext().TraceID())
}
