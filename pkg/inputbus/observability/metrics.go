package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records input bus metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records one dispatch and whether any group existed.
	RecordDispatch(ctx context.Context, event string, mapped bool)

	// RecordHandler records a single handler invocation.
	RecordHandler(ctx context.Context, event, contextName string, duration time.Duration, err error)

	// RecordContextReport records a context report and its outcome.
	RecordContextReport(ctx context.Context, contextName, outcome string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	dispatches     metric.Int64Counter
	unmapped       metric.Int64Counter
	invocations    metric.Int64Counter
	handlerErrors  metric.Int64Counter
	handlerLatency metric.Float64Histogram
	contextReports metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("inputbus")

	dispatches, err := meter.Int64Counter("inputbus.dispatch.count",
		metric.WithDescription("Number of event dispatches"),
	)
	if err != nil {
		return nil, err
	}

	unmapped, err := meter.Int64Counter("inputbus.dispatch.unmapped",
		metric.WithDescription("Number of dispatches with no registered group"),
	)
	if err != nil {
		return nil, err
	}

	invocations, err := meter.Int64Counter("inputbus.handler.invocations",
		metric.WithDescription("Number of handler invocations"),
	)
	if err != nil {
		return nil, err
	}

	handlerErrors, err := meter.Int64Counter("inputbus.handler.errors",
		metric.WithDescription("Number of handler failures"),
	)
	if err != nil {
		return nil, err
	}

	handlerLatency, err := meter.Float64Histogram("inputbus.handler.latency_ms",
		metric.WithDescription("Handler latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	contextReports, err := meter.Int64Counter("inputbus.context.reports",
		metric.WithDescription("Number of context reports by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		dispatches:     dispatches,
		unmapped:       unmapped,
		invocations:    invocations,
		handlerErrors:  handlerErrors,
		handlerLatency: handlerLatency,
		contextReports: contextReports,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordDispatch records a dispatch.
func (m *otelMetrics) RecordDispatch(ctx context.Context, event string, mapped bool) {
	attrs := metric.WithAttributes(attribute.String("event", event))
	m.dispatches.Add(ctx, 1, attrs)
	if !mapped {
		m.unmapped.Add(ctx, 1, attrs)
	}
}

// RecordHandler records a handler invocation.
func (m *otelMetrics) RecordHandler(ctx context.Context, event, contextName string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("context", contextName),
	)
	m.invocations.Add(ctx, 1, attrs)
	m.handlerLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.handlerErrors.Add(ctx, 1, attrs)
	}
}

// RecordContextReport records a context report.
func (m *otelMetrics) RecordContextReport(ctx context.Context, contextName, outcome string) {
	m.contextReports.Add(ctx, 1, metric.WithAttributes(
		attribute.String("context", contextName),
		attribute.String("outcome", outcome),
	))
}
