package inputbus

import (
	"context"
	"reflect"
	"runtime/debug"
	"time"

	"github.com/randalmurphal/inputbus/pkg/inputbus/catalog"
	"github.com/randalmurphal/inputbus/pkg/inputbus/router"
)

// Trigger is the payload every handler receives.
type Trigger struct {
	// ID uniquely identifies this dispatch.
	ID string
	// Event is the dispatched event name.
	Event string
	// Payload is whatever the host passed to OnEventTriggered.
	Payload any
	// Context is the active context at dispatch time (zero if none).
	Context catalog.Context
	// At is when the dispatch started.
	At time.Time
}

// Handler receives triggers. See router.Handler for identity rules.
type Handler = router.Handler[Trigger]

// HandlerFunc is the function form of a Handler.
type HandlerFunc = func(ctx context.Context, t Trigger) error

// NewHandler wraps fn in a Handler with its own identity.
// Keep the returned value to register it more than once.
func NewHandler(fn HandlerFunc) *router.Func[Trigger] {
	return router.NewFunc(fn)
}

// recoverHandler converts handler panics into *PanicError.
type recoverHandler struct {
	next Handler
}

// Recover wraps h so that a panic inside it is returned as a *PanicError
// instead of unwinding through the dispatch. Each call returns a distinct
// handler. A nil h yields nil.
func Recover(h Handler) Handler {
	if h == nil {
		return nil
	}
	if v := reflect.ValueOf(h); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	return &recoverHandler{next: h}
}

// Handle implements Handler.
func (r *recoverHandler) Handle(ctx context.Context, t Trigger) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{
				Event: t.Event,
				Value: v,
				Stack: debug.Stack(),
			}
		}
	}()
	return r.next.Handle(ctx, t)
}
