package inputbus

import (
	"log/slog"

	"github.com/randalmurphal/inputbus/pkg/inputbus/config"
	"github.com/randalmurphal/inputbus/pkg/inputbus/diagnostics"
	"github.com/randalmurphal/inputbus/pkg/inputbus/observability"
)

// busConfig holds bus configuration.
type busConfig struct {
	logger  *slog.Logger
	sink    diagnostics.Sink
	store   diagnostics.Sink
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	warnOnUnmappedEvent       bool
	warnOnUnrecognizedContext bool
	initialContext            string
}

// defaultBusConfig returns the default bus configuration.
func defaultBusConfig() busConfig {
	return busConfig{
		logger:                    slog.Default(),
		metrics:                   observability.NoopMetrics{},
		spans:                     observability.NoopSpanManager{},
		warnOnUnmappedEvent:       true,
		warnOnUnrecognizedContext: true,
	}
}

// Option configures a Bus.
type Option func(*busConfig)

// WithLogger sets the logger for bus events and the default diagnostics
// sink. A nil logger is ignored.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(c *busConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDiagnostics routes diagnostics to sink instead of the logger.
// Use diagnostics.Discard to drop them, or diagnostics.Multi to fan out.
func WithDiagnostics(sink diagnostics.Sink) Option {
	return func(c *busConfig) {
		c.sink = sink
	}
}

// withDiagnosticsStore adds store next to the default log sink. The log
// sink is built in New, so it uses the final logger. WithDiagnostics
// replaces both.
func withDiagnosticsStore(store diagnostics.Sink) Option {
	return func(c *busConfig) {
		c.store = store
	}
}

// WithMetrics enables OpenTelemetry metrics via the global meter provider.
// Default: disabled
//
// Example:
//
//	otel.SetMeterProvider(provider)
//	bus := inputbus.New(inputbus.WithMetrics(true))
func WithMetrics(enabled bool) Option {
	return func(c *busConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a custom metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(c *busConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables a span per dispatch via the global tracer provider.
// Default: disabled
func WithTracing(enabled bool) Option {
	return func(c *busConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager sets a custom span manager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *busConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithWarnOnUnmappedEvent toggles the diagnostic for events with no
// registered handlers. Dispatch behavior is unaffected.
// Default: true
func WithWarnOnUnmappedEvent(enabled bool) Option {
	return func(c *busConfig) {
		c.warnOnUnmappedEvent = enabled
	}
}

// WithWarnOnUnrecognizedContext toggles the diagnostic for context names
// missing from the context set. Tracking behavior is unaffected.
// Default: true
func WithWarnOnUnrecognizedContext(enabled bool) Option {
	return func(c *busConfig) {
		c.warnOnUnrecognizedContext = enabled
	}
}

// WithInitialContext reports name right after every Initialize.
func WithInitialContext(name string) Option {
	return func(c *busConfig) {
		c.initialContext = name
	}
}

// WithDefinition applies the switches of a loaded definition. Resources
// named by the definition (log file, diagnostics database) are opened by
// Open, not here.
func WithDefinition(def config.Definition) Option {
	return func(c *busConfig) {
		c.warnOnUnmappedEvent = def.WarnOnUnmappedEvent
		c.warnOnUnrecognizedContext = def.WarnOnUnrecognizedContext
		c.initialContext = def.InitialContext
		WithMetrics(def.Metrics)(c)
		WithTracing(def.Tracing)(c)
	}
}
