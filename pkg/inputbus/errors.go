package inputbus

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/inputbus/pkg/inputbus/catalog"
	"github.com/randalmurphal/inputbus/pkg/inputbus/config"
	"github.com/randalmurphal/inputbus/pkg/inputbus/router"
	"github.com/randalmurphal/inputbus/pkg/inputbus/tracker"
)

// ErrNotInitialized indicates a registration on a bus that has no catalog yet.
var ErrNotInitialized = errors.New("bus not initialized")

// Errors re-exported from the subpackages so callers can match them
// without importing each one.
var (
	ErrNilCatalog           = router.ErrNilCatalog
	ErrNilContextSet        = tracker.ErrNilContextSet
	ErrEmptyEventName       = router.ErrEmptyEventName
	ErrNilHandler           = router.ErrNilHandler
	ErrHandlerNotComparable = router.ErrHandlerNotComparable
	ErrHandlerPanicked      = router.ErrHandlerPanicked
	ErrUnknownEvent         = router.ErrUnknownEvent
	ErrUnknownContext       = catalog.ErrUnknownContext
	ErrEmptyName            = catalog.ErrEmptyName
)

// PanicError is returned by a Recover-wrapped handler that panicked.
type PanicError struct {
	// Event is the event being dispatched.
	Event string
	// Value is the recovered panic value.
	Value any
	// Stack is the goroutine stack at recovery.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic on %s: %v", e.Event, e.Value)
}

// Category groups errors by how a caller should react.
type Category int

const (
	// CategoryNone is the category of a nil error.
	CategoryNone Category = iota

	// CategoryConfiguration covers malformed calls: empty names, nil
	// handlers, nil catalogs, use before Initialize.
	CategoryConfiguration

	// CategoryLookup covers names the catalogs do not contain.
	CategoryLookup

	// CategoryHandler covers failures raised by handler code.
	CategoryHandler

	// CategoryUnknown is anything else.
	CategoryUnknown
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case CategoryConfiguration:
		return "configuration"
	case CategoryLookup:
		return "lookup"
	case CategoryHandler:
		return "handler"
	default:
		return "unknown"
	}
}

// Classify reports the category of err. Handler failures win over
// whatever the handler itself returned.
func Classify(err error) Category {
	if err == nil {
		return CategoryNone
	}

	var handlerErr *router.HandlerError
	var panicErr *PanicError
	if errors.As(err, &handlerErr) || errors.As(err, &panicErr) || errors.Is(err, ErrHandlerPanicked) {
		return CategoryHandler
	}

	switch {
	case errors.Is(err, ErrUnknownEvent), errors.Is(err, ErrUnknownContext):
		return CategoryLookup
	case errors.Is(err, ErrEmptyEventName),
		errors.Is(err, ErrNilHandler),
		errors.Is(err, ErrHandlerNotComparable),
		errors.Is(err, ErrNilCatalog),
		errors.Is(err, ErrNilContextSet),
		errors.Is(err, ErrNotInitialized),
		errors.Is(err, ErrEmptyName),
		errors.Is(err, config.ErrNoEvents):
		return CategoryConfiguration
	default:
		return CategoryUnknown
	}
}
