package router

import (
	"context"
	"reflect"
)

// Handler receives dispatched payloads.
//
// Handlers are deduplicated by identity, so the value behind a Handler
// must be comparable. Pointer types always are; wrap plain
// functions with NewFunc.
type Handler[P any] interface {
	Handle(ctx context.Context, payload P) error
}

// Func adapts a function to Handler. Each *Func has its own identity:
// registering the same *Func twice is a no-op, while two NewFunc calls
// over the same function yield two distinct handlers.
type Func[P any] struct {
	fn func(ctx context.Context, payload P) error
}

// NewFunc wraps fn. A nil fn yields a nil handler.
func NewFunc[P any](fn func(ctx context.Context, payload P) error) *Func[P] {
	if fn == nil {
		return nil
	}
	return &Func[P]{fn: fn}
}

// Handle implements Handler.
func (f *Func[P]) Handle(ctx context.Context, payload P) error {
	return f.fn(ctx, payload)
}

// validateHandler rejects nil and non-comparable handlers.
func validateHandler[P any](h Handler[P]) error {
	if h == nil {
		return ErrNilHandler
	}
	v := reflect.ValueOf(h)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if v.IsNil() {
			return ErrNilHandler
		}
	}
	// Checks the value, not just the type: an interface field holding a
	// slice makes an otherwise comparable struct unhashable.
	if !v.Comparable() {
		return ErrHandlerNotComparable
	}
	return nil
}

// handlerName returns a name for a handler (for logging/metrics).
func handlerName[P any](h Handler[P]) string {
	return reflect.TypeOf(h).String()
}
