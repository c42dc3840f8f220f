package inputbus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/inputbus/pkg/inputbus"
	"github.com/randalmurphal/inputbus/pkg/inputbus/diagnostics"
	"github.com/randalmurphal/inputbus/pkg/inputbus/observability"
)

// fakeMetrics records calls for assertions.
type fakeMetrics struct {
	dispatches []string
	unmapped   []string
	handlers   []string
	failures   int
	reports    []string
}

func (m *fakeMetrics) RecordDispatch(_ context.Context, event string, mapped bool) {
	m.dispatches = append(m.dispatches, event)
	if !mapped {
		m.unmapped = append(m.unmapped, event)
	}
}

func (m *fakeMetrics) RecordHandler(_ context.Context, event, contextName string, _ time.Duration, err error) {
	m.handlers = append(m.handlers, event+"@"+contextName)
	if err != nil {
		m.failures++
	}
}

func (m *fakeMetrics) RecordContextReport(_ context.Context, contextName, outcome string) {
	m.reports = append(m.reports, contextName+":"+outcome)
}

func TestMetricsWiring(t *testing.T) {
	m := &fakeMetrics{}
	bus, _ := newBus(t, inputbus.WithMetricsRecorder(m))
	require.NoError(t, bus.Register("Jump", &recorder{}))
	require.NoError(t, bus.Register("Jump", &recorder{err: errors.New("boom")}, "Gamepad"))

	trigger(t, bus, "Jump")
	trigger(t, bus, "Move")
	report(bus, "Gamepad")
	report(bus, "Gamepad")
	report(bus, "Touch")
	require.Error(t, bus.OnEventTriggered(context.Background(), "Jump", nil))

	assert.Equal(t, []string{"Jump", "Move", "Jump"}, m.dispatches)
	assert.Equal(t, []string{"Move"}, m.unmapped)
	assert.Equal(t, []string{"Jump@*", "Jump@*", "Jump@Gamepad"}, m.handlers)
	assert.Equal(t, 1, m.failures)
	assert.Equal(t, []string{"Gamepad:changed", "Gamepad:unchanged", "Touch:unrecognized"}, m.reports)
}

func TestMetricsWiring_UnknownEventIsUnmapped(t *testing.T) {
	m := &fakeMetrics{}
	bus, sink := newBus(t, inputbus.WithMetricsRecorder(m))

	trigger(t, bus, "Teleport")
	trigger(t, bus, "Move")

	assert.Equal(t, []string{"Teleport", "Move"}, m.dispatches)
	assert.Equal(t, []string{"Teleport", "Move"}, m.unmapped)
	assert.Len(t, sink.ByKind(diagnostics.KindUnmappedEvent), 2)

	idle := &fakeMetrics{}
	uninit := inputbus.New(inputbus.WithMetricsRecorder(idle), inputbus.WithDiagnostics(diagnostics.Discard))
	require.NoError(t, uninit.OnEventTriggered(context.Background(), "Jump", nil))
	assert.Equal(t, []string{"Jump"}, idle.unmapped)
}

// tracedSpans wires the bus to an in-memory exporter through a span manager
// that uses a private provider.
type tracedSpans struct {
	tracer trace.Tracer
	observability.SpanManager
}

func (s tracedSpans) StartDispatchSpan(ctx context.Context, event, contextName, triggerID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "inputbus.dispatch", trace.WithAttributes(
		attribute.String("event.name", event),
		attribute.String("context.name", contextName),
		attribute.String("trigger.id", triggerID),
	))
}

func TestTracingWiring(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	spans := tracedSpans{tracer: tp.Tracer("test"), SpanManager: observability.NewSpanManager()}
	bus, _ := newBus(t, inputbus.WithSpanManager(spans))
	boom := errors.New("boom")
	h := &recorder{}
	require.NoError(t, bus.Register("Jump", h))
	require.NoError(t, bus.Register("Move", &recorder{err: boom}))
	report(bus, "Keyboard")

	trigger(t, bus, "Jump")
	require.ErrorIs(t, bus.OnEventTriggered(context.Background(), "Move", nil), boom)

	got := exporter.GetSpans()
	require.Len(t, got, 2)

	assert.Equal(t, "inputbus.dispatch", got[0].Name)
	assert.Equal(t, codes.Ok, got[0].Status.Code)
	attrs := map[attribute.Key]string{}
	for _, kv := range got[0].Attributes {
		attrs[kv.Key] = kv.Value.AsString()
	}
	assert.Equal(t, "Jump", attrs["event.name"])
	assert.Equal(t, "Keyboard", attrs["context.name"])
	require.Len(t, h.triggers, 1)
	assert.Equal(t, h.triggers[0].ID, attrs["trigger.id"])

	assert.Equal(t, codes.Error, got[1].Status.Code)
	require.NotEmpty(t, got[1].Events)
	assert.Equal(t, "exception", got[1].Events[0].Name)
}

func TestHandlerPanicEndsDispatchSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	m := &fakeMetrics{}
	spans := tracedSpans{tracer: tp.Tracer("test"), SpanManager: observability.NewSpanManager()}
	bus, _ := newBus(t, inputbus.WithSpanManager(spans), inputbus.WithMetricsRecorder(m))
	require.NoError(t, bus.Register("Jump", inputbus.NewHandler(func(context.Context, inputbus.Trigger) error {
		panic("kaboom")
	})))

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = bus.OnEventTriggered(context.Background(), "Jump", nil)
	})

	got := exporter.GetSpans()
	require.Len(t, got, 1)
	assert.Equal(t, codes.Error, got[0].Status.Code)

	assert.Equal(t, []string{"Jump"}, m.dispatches)
	assert.Empty(t, m.unmapped)
	assert.Equal(t, []string{"Jump@*"}, m.handlers)
	assert.Equal(t, 1, m.failures)
}

func TestHandlerSeesDispatchSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	spans := tracedSpans{tracer: tp.Tracer("test"), SpanManager: observability.NewSpanManager()}
	bus, _ := newBus(t, inputbus.WithSpanManager(spans))

	var sc trace.SpanContext
	require.NoError(t, bus.Register("Jump", inputbus.NewHandler(func(ctx context.Context, _ inputbus.Trigger) error {
		sc = trace.SpanContextFromContext(ctx)
		return nil
	})))
	trigger(t, bus, "Jump")

	require.True(t, sc.IsValid())
	got := exporter.GetSpans()
	require.Len(t, got, 1)
	assert.Equal(t, got[0].SpanContext.SpanID(), sc.SpanID())
}

func TestWithMetricsAndTracingToggles(t *testing.T) {
	assert.NotPanics(t, func() {
		bus, _ := newBus(t, inputbus.WithMetrics(true), inputbus.WithTracing(true))
		require.NoError(t, bus.Register("Jump", &recorder{}))
		trigger(t, bus, "Jump")
		report(bus, "Keyboard")

		bus, _ = newBus(t, inputbus.WithMetrics(false), inputbus.WithTracing(false))
		trigger(t, bus, "Jump")
	})
}
