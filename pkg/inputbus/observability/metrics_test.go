package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest installs a manual-reader meter provider for the test.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}
	return reader, cleanup
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// counterTotal sums every data point of an int64 counter.
func counterTotal(t *testing.T, rm *metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	require.NotNil(t, m, "metric %s not found", name)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordDispatch(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordDispatch(ctx, "Jump", true)
	m.RecordDispatch(ctx, "Jump", true)
	m.RecordDispatch(ctx, "Move", false)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(3), counterTotal(t, rm, "inputbus.dispatch.count"))
	assert.Equal(t, int64(1), counterTotal(t, rm, "inputbus.dispatch.unmapped"))
}

func TestRecordHandler(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordHandler(ctx, "Jump", "*", 2*time.Millisecond, nil)
	m.RecordHandler(ctx, "Jump", "Keyboard", time.Millisecond, errors.New("boom"))

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), counterTotal(t, rm, "inputbus.handler.invocations"))
	assert.Equal(t, int64(1), counterTotal(t, rm, "inputbus.handler.errors"))

	latency := findMetric(rm, "inputbus.handler.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestRecordContextReport(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordContextReport(ctx, "Keyboard", "changed")
	m.RecordContextReport(ctx, "Keyboard", "unchanged")
	m.RecordContextReport(ctx, "Touch", "unrecognized")

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(3), counterTotal(t, rm, "inputbus.context.reports"))

	sum := findMetric(rm, "inputbus.context.reports").Data.(metricdata.Sum[int64])
	assert.Len(t, sum.DataPoints, 3, "one data point per context/outcome pair")
}
