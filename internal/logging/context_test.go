package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestContextFields(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	ctx = WithTool(ctx, "fetch")

	tl := NewTestLogger()
	tl.Info(ctx, "dispatching")

	tl.AssertField(t, "dispatching", "request.id", "req-42")
	tl.AssertField(t, "dispatching", "tool", "fetch")
}

func TestContextFields_Trace(t *testing.T) {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	fields := ContextFields(ctx)
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	assert.ElementsMatch(t, []string{"trace_id", "span_id"}, keys)
}

func TestWithRequestID_EmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithRequestID(ctx, ""))
	assert.Empty(t, RequestIDFromContext(ctx))
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)
	assert.Same(t, tl.Logger, FromContext(ctx))
}

func TestTestLogger_AssertNoToken(t *testing.T) {
	tl := NewTestLogger()
	tl.Info(context.Background(), "clean message")
	tl.AssertNoToken(t, fakeToken)
	tl.AssertLogged(t, 0, "clean")
}
