// Package diagnostics carries the non-fatal notifications an input bus
// raises: unmapped events, unrecognized contexts, and context changes.
//
// A Sink decides where they go. LogSink writes to slog, MemorySink keeps
// them for inspection, SQLiteSink persists an audit trail, and Multi fans
// out to several sinks.
package diagnostics

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a diagnostic.
type Kind string

// Diagnostic kinds.
const (
	KindUnmappedEvent       Kind = "unmapped_event"
	KindUnrecognizedContext Kind = "unrecognized_context"
	KindContextChanged      Kind = "context_changed"
)

// Diagnostic is one human-readable, non-fatal notification.
type Diagnostic struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Event   string    `json:"event,omitempty"`
	Context string    `json:"context,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// New creates a diagnostic with a fresh ID and timestamp.
func New(kind Kind, event, contextName, message string) Diagnostic {
	return Diagnostic{
		ID:      uuid.NewString(),
		Kind:    kind,
		Event:   event,
		Context: contextName,
		Message: message,
		At:      time.Now(),
	}
}

// Sink receives diagnostics. Errors are reported to the bus logger and
// never affect dispatch.
type Sink interface {
	Emit(ctx context.Context, d Diagnostic) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, d Diagnostic) error

// Emit implements Sink.
func (f SinkFunc) Emit(ctx context.Context, d Diagnostic) error {
	return f(ctx, d)
}

// Discard drops every diagnostic.
var Discard Sink = SinkFunc(func(context.Context, Diagnostic) error { return nil })

// multiSink emits to every sink, joining their errors.
type multiSink []Sink

// Multi returns a Sink that emits to each non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Emit implements Sink.
func (m multiSink) Emit(ctx context.Context, d Diagnostic) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
