package logging

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type captureExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *captureExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *captureExporter) Shutdown(context.Context) error   { return nil }
func (e *captureExporter) ForceFlush(context.Context) error { return nil }

func (e *captureExporter) all() []sdklog.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sdklog.Record(nil), e.records...)
}

func TestWithOTel_NilProvider(t *testing.T) {
	logger, _ := newBufferLogger(t, zapcore.InfoLevel)
	assert.Same(t, logger, logger.WithOTel("test", nil))
}

func TestWithOTel_BridgesRedactedEntries(t *testing.T) {
	exp := &captureExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp)))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	local, buf := newBufferLogger(t, zapcore.InfoLevel)
	logger := local.WithOTel("test", provider)
	ctx := context.Background()

	logger.Info(ctx, "using "+fakeToken, zap.String("token", "abc"), zap.String("tool", "fetch"))
	logger.Debug(ctx, "below the local level")

	records := exp.all()
	require.Len(t, records, 1)
	assert.Equal(t, "using [REDACTED]", records[0].Body().AsString())

	attrs := map[string]string{}
	records[0].WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	assert.Equal(t, "[REDACTED]", attrs["token"])
	assert.Equal(t, "fetch", attrs["tool"])

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.NotContains(t, buf.String(), fakeToken)
}

func TestWithOTel_FieldsFromWith(t *testing.T) {
	exp := &captureExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp)))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	local, _ := newBufferLogger(t, zapcore.InfoLevel)
	logger := local.WithOTel("test", provider).With(zap.String("authorization", "Bearer xyz"))
	logger.Warn(context.Background(), "request failed")

	records := exp.all()
	require.Len(t, records, 1)
	var got string
	records[0].WalkAttributes(func(kv log.KeyValue) bool {
		if kv.Key == "authorization" {
			got = kv.Value.AsString()
		}
		return true
	})
	assert.Equal(t, "[REDACTED]", got)
}
