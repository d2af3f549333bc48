// internal/common/logger/logger_test.go
package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapAdapter(zap.New(core)), logs
}

func TestZapWrapper_Fields(t *testing.T) {
	l, logs := newObserved()

	l.WithFields(map[string]interface{}{"taskType": "rank-applications"}).
		Warn("skipping malformed tags", map[string]interface{}{"count": 2, "error": errors.New("bad tag")})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	ctx := entry.ContextMap()
	assert.Equal(t, "rank-applications", ctx["taskType"])
	assert.EqualValues(t, 2, ctx["count"])
	assert.Equal(t, "bad tag", ctx["error"])
}

func TestWithTrace(t *testing.T) {
	l, logs := newObserved()

	WithTrace(context.Background(), l).Info("no span", nil)
	assert.NotContains(t, logs.All()[0].ContextMap(), "traceId")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1, 2, 3},
		SpanID:  trace.SpanID{4, 5, 6},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	WithTrace(ctx, l).Info("with span", nil)

	fields := logs.All()[1].ContextMap()
	assert.Equal(t, sc.TraceID().String(), fields["traceId"])
	assert.Equal(t, sc.SpanID().String(), fields["spanId"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}
