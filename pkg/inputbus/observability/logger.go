// Package observability provides logging, metrics, and tracing for the
// input bus.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
)

// EnrichLogger adds dispatch context to a logger.
// Returns a new logger with event, context, and trigger_id fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "Jump", "Keyboard", triggerID)
//	enriched.Debug("handler ran") // includes event, context, trigger_id
func EnrichLogger(logger *slog.Logger, event, contextName, triggerID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event", event),
		slog.String("context", contextName),
		slog.String("trigger_id", triggerID),
	)
}

// LogInitialize logs a bus (re)initialization.
func LogInitialize(logger *slog.Logger, events, contexts int, replaced bool) {
	if logger == nil {
		return
	}
	logger.Info("input bus initialized",
		slog.Int("events", events),
		slog.Int("contexts", contexts),
		slog.Bool("replaced", replaced),
	)
}

// LogSubscribe logs a successful registration.
func LogSubscribe(logger *slog.Logger, event string, contexts []string) {
	if logger == nil {
		return
	}
	logger.Debug("handler subscribed",
		slog.String("event", event),
		slog.Any("contexts", contexts),
	)
}

// LogSubscribeError logs a rejected registration.
func LogSubscribeError(logger *slog.Logger, event string, err error) {
	if logger == nil {
		return
	}
	logger.Error("subscribe failed",
		slog.String("event", event),
		slog.String("error", err.Error()),
	)
}

// LogDispatch logs a completed dispatch.
// Pass a logger from EnrichLogger so the record carries the event.
func LogDispatch(logger *slog.Logger, invoked int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("event dispatched",
		slog.Int("handlers_invoked", invoked),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogDispatchError logs a dispatch stopped by a handler failure.
func LogDispatchError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Error("handler failed",
		slog.String("error", err.Error()),
	)
}

// LogSinkError logs a diagnostics sink failure (non-fatal).
func LogSinkError(logger *slog.Logger, kind string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("diagnostics sink failed",
		slog.String("kind", kind),
		slog.String("error", err.Error()),
	)
}
