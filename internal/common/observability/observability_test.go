// internal/common/observability/observability_test.go
package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestObservability(t *testing.T) (*Observability, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	o := New(Options{
		ServiceName:  "lending-workers-test",
		Registerer:   prometheus.NewRegistry(),
		SpanExporter: exporter,
	})
	t.Cleanup(o.Shutdown)
	return o, exporter
}

func TestStartSpan_RecordsError(t *testing.T) {
	o, exporter := newTestObservability(t)

	ctx, span := o.StartSpan(context.Background(), "ranking.rank", attribute.Int("candidates", 3))
	assert.True(t, span.SpanContext().IsValid())
	_, child := StartSpan(ctx, "store.list_open")
	EndSpan(child, nil)
	EndSpan(span, errors.New("EMPTY_PREFERENCE_SET"))

	flushCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, o.tracerProvider.ForceFlush(flushCtx))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	byName := map[string]tracetest.SpanStub{}
	for _, s := range spans {
		byName[s.Name] = s
	}
	assert.Equal(t, codes.Error, byName["ranking.rank"].Status.Code)
	assert.Equal(t, codes.Unset, byName["store.list_open"].Status.Code)
	assert.Equal(t, byName["ranking.rank"].SpanContext.SpanID(), byName["store.list_open"].Parent.SpanID())
}

func TestRecorders_DoNotPanic(t *testing.T) {
	o, _ := newTestObservability(t)
	ctx := context.Background()

	o.RecordJobProcessed(ctx, "rank-applications", "completed")
	o.RecordJobDuration(ctx, "rank-applications", 25*time.Millisecond, "completed")
	o.RecordRankingScore(ctx, 0.91)

	var empty Observability
	empty.RecordJobProcessed(ctx, "rank-applications", "failed")
	empty.RecordRankingScore(ctx, 0.5)
}

func TestNilObservability(t *testing.T) {
	var o *Observability
	ctx := context.Background()

	o.RecordJobProcessed(ctx, "place-bid", "completed")
	o.RecordJobDuration(ctx, "place-bid", time.Millisecond, "completed")
	o.RecordRankingScore(ctx, 0.2)

	_, span := o.StartSpan(ctx, "noop")
	EndSpan(span, nil)
}
