package router

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/inputbus/pkg/inputbus/catalog"
)

// Sentinel errors for registration.
var (
	// ErrEmptyEventName indicates Register was called without an event name.
	ErrEmptyEventName = errors.New("event name cannot be empty")

	// ErrNilHandler indicates Register was called with a nil handler.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrHandlerNotComparable indicates a handler value that cannot be
	// compared for deduplication.
	ErrHandlerNotComparable = errors.New("handler type is not comparable")

	// ErrHandlerPanicked is passed to Config.OnInvoke when a handler panics.
	// The panic itself is not recovered.
	ErrHandlerPanicked = errors.New("handler panicked")

	// ErrUnknownEvent indicates the event name is not in the catalog.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrNilCatalog indicates a router was constructed without a catalog.
	ErrNilCatalog = errors.New("event catalog cannot be nil")
)

// RegistrationError wraps a failed Register call with the event it targeted.
type RegistrationError struct {
	// Event is the requested event name.
	Event string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	if e.Event == "" {
		return fmt.Sprintf("register: %v", e.Err)
	}
	return fmt.Sprintf("register %q: %v", e.Event, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// HandlerError wraps a failure returned by a handler during dispatch.
// Handlers reached before the failing one have already run.
type HandlerError struct {
	// Event is the dispatched event name.
	Event string
	// Context is the scope of the group the failing handler belongs to.
	Context catalog.Context
	// Handler names the failing handler's type.
	Handler string
	// Err is the error the handler returned.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("event %s: handler %s (context %s): %v", e.Event, e.Handler, e.Context, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *HandlerError) Unwrap() error {
	return e.Err
}
