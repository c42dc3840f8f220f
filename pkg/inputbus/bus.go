package inputbus

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/inputbus/pkg/inputbus/catalog"
	"github.com/randalmurphal/inputbus/pkg/inputbus/diagnostics"
	"github.com/randalmurphal/inputbus/pkg/inputbus/observability"
	"github.com/randalmurphal/inputbus/pkg/inputbus/router"
	"github.com/randalmurphal/inputbus/pkg/inputbus/tracker"
)

// ContextChange describes a context report and what it did.
type ContextChange = tracker.Transition

// Bus routes host input to handlers under the active context.
//
// A Bus pairs a Router with a Tracker. The host calls Initialize once the
// event and context catalogs are known, then forwards input through
// OnEventTriggered and OnContextReported.
//
// Bus is NOT safe for concurrent use. Drive it from the goroutine that
// receives host input.
type Bus struct {
	cfg busConfig

	router  *router.Router[Trigger]
	tracker *tracker.Tracker
	untrack func()

	observers []*observer
	err       error
}

type observer struct {
	fn      func(ContextChange)
	removed bool
}

// New creates an uninitialized bus.
func New(opts ...Option) *Bus {
	cfg := defaultBusConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sink == nil {
		cfg.sink = diagnostics.NewLogSink(cfg.logger)
		if cfg.store != nil {
			cfg.sink = diagnostics.Multi(cfg.sink, cfg.store)
		}
	}
	return &Bus{cfg: cfg}
}

// Initialize binds the bus to events and contexts.
//
// Calling it again discards the previous router and tracker: every
// registration is dropped, the active context resets, and handles from
// the previous router dispatch as unmapped. Observers added with
// OnContextChanged are kept. On error the bus is left as it was.
func (b *Bus) Initialize(events *catalog.Events, contexts *catalog.ContextSet) error {
	r, err := router.New[Trigger](events, router.Config{
		OnInvoke: b.recordHandler,
	})
	if err != nil {
		return err
	}
	t, err := tracker.New(contexts)
	if err != nil {
		return err
	}

	replaced := b.router != nil
	if b.untrack != nil {
		b.untrack()
	}
	b.router = r
	b.tracker = t
	b.untrack = t.Observe(b.notify)
	b.err = nil

	observability.LogInitialize(b.cfg.logger, events.Len(), contexts.Len(), replaced)

	if b.cfg.initialContext != "" {
		b.OnContextReported(context.Background(), b.cfg.initialContext)
	}
	return nil
}

// Initialized reports whether Initialize has succeeded at least once.
func (b *Bus) Initialized() bool {
	return b.router != nil
}

// Register adds h for event, scoped to the named contexts.
//
// No names, or only empty names, registers h for every context.
// Registering the same handler for the same event and context again is a
// no-op. On error nothing is registered.
func (b *Bus) Register(event string, h Handler, contexts ...string) error {
	if b.router == nil {
		return b.subscribeFailed(event, ErrNotInitialized)
	}
	scopes, err := b.tracker.Contexts().Select(contexts...)
	if err != nil {
		return b.subscribeFailed(event, &router.RegistrationError{Event: event, Err: err})
	}
	return b.register(event, h, scopes)
}

// RegisterContexts is Register with resolved contexts. Pass
// catalog.Unscoped to match every context explicitly. Named contexts must
// belong to the bus's context set.
func (b *Bus) RegisterContexts(event string, h Handler, contexts ...catalog.Context) error {
	if b.router == nil {
		return b.subscribeFailed(event, ErrNotInitialized)
	}
	set := b.tracker.Contexts()
	for _, c := range contexts {
		if c.IsZero() || c.IsUnscoped() {
			continue
		}
		if found, ok := set.Find(c.Name()); !ok || found != c {
			err := fmt.Errorf("%w: %q", ErrUnknownContext, c.Name())
			return b.subscribeFailed(event, &router.RegistrationError{Event: event, Err: err})
		}
	}
	return b.register(event, h, contexts)
}

func (b *Bus) register(event string, h Handler, scopes []catalog.Context) error {
	if err := b.router.Register(event, h, scopes...); err != nil {
		return b.subscribeFailed(event, err)
	}
	names := make([]string, 0, len(scopes))
	for _, c := range scopes {
		if !c.IsZero() {
			names = append(names, c.String())
		}
	}
	observability.LogSubscribe(b.cfg.logger, event, names)
	return nil
}

func (b *Bus) subscribeFailed(event string, err error) error {
	observability.LogSubscribeError(b.cfg.logger, event, err)
	return err
}

// Subscribe is the chaining form of Register. The first failure is kept
// and reported by Err; later calls still run.
//
// Example:
//
//	err := bus.
//	    Subscribe("Jump", jump).
//	    Subscribe("Move", move, "Gamepad").
//	    Err()
func (b *Bus) Subscribe(event string, h Handler, contexts ...string) *Bus {
	if err := b.Register(event, h, contexts...); err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// Err returns the first Subscribe failure since the last Initialize.
func (b *Bus) Err() error {
	return b.err
}

// OnContextReported tells the bus which context the host is in.
//
// Unknown names leave the active context unchanged and emit a diagnostic
// when enabled. Reporting the active context again does nothing.
// Observers run before this returns, and only when the context changed.
func (b *Bus) OnContextReported(ctx context.Context, name string) ContextChange {
	var tr ContextChange
	if b.tracker == nil {
		tr = ContextChange{Outcome: tracker.OutcomeUnrecognized, Reported: name}
	} else {
		tr = b.tracker.Report(name)
	}

	b.cfg.metrics.RecordContextReport(ctx, name, tr.Outcome.String())

	switch tr.Outcome {
	case tracker.OutcomeUnrecognized:
		if b.cfg.warnOnUnrecognizedContext {
			b.emit(ctx, diagnostics.New(diagnostics.KindUnrecognizedContext, "", name,
				fmt.Sprintf("context %q is not recognized", name)))
		}
	case tracker.OutcomeChanged:
		b.cfg.spans.AddSpanEvent(ctx, "inputbus.context.changed",
			attribute.String("context.previous", tr.Previous.String()),
			attribute.String("context.current", tr.Current.String()),
		)
		b.emit(ctx, diagnostics.New(diagnostics.KindContextChanged, "", tr.Current.Name(),
			fmt.Sprintf("context changed from %s to %s", tr.Previous, tr.Current)))
	}
	return tr
}

// OnEventTriggered dispatches event with payload under the active context.
//
// An event that is unknown or has no handlers is a no-op and emits a
// diagnostic when enabled. The first handler error stops the dispatch
// and is returned as a *router.HandlerError.
func (b *Bus) OnEventTriggered(ctx context.Context, event string, payload any) error {
	if b.router == nil {
		b.cfg.metrics.RecordDispatch(ctx, event, false)
		b.unmapped(ctx, event, "bus is not initialized")
		return nil
	}
	h, err := b.router.Resolve(event)
	if err != nil {
		b.cfg.metrics.RecordDispatch(ctx, event, false)
		b.unmapped(ctx, event, "not in the event catalog")
		return nil
	}
	return b.dispatch(ctx, h, payload)
}

// Resolve turns an event name into a handle for DispatchHandle.
// The handle is valid until the next Initialize.
func (b *Bus) Resolve(event string) (router.Handle, error) {
	if b.router == nil {
		return router.Handle{}, ErrNotInitialized
	}
	return b.router.Resolve(event)
}

// DispatchHandle is OnEventTriggered for a pre-resolved handle. A stale
// or zero handle is unmapped.
func (b *Bus) DispatchHandle(ctx context.Context, h router.Handle, payload any) error {
	if b.router == nil {
		b.cfg.metrics.RecordDispatch(ctx, h.Name(), false)
		b.unmapped(ctx, h.Name(), "bus is not initialized")
		return nil
	}
	return b.dispatch(ctx, h, payload)
}

func (b *Bus) dispatch(ctx context.Context, h router.Handle, payload any) error {
	active, _ := b.tracker.Active()
	trig := Trigger{
		ID:      uuid.NewString(),
		Event:   h.Name(),
		Payload: payload,
		Context: active,
		At:      time.Now(),
	}
	logger := observability.EnrichLogger(b.cfg.logger, trig.Event, active.String(), trig.ID)

	spanCtx, span := b.cfg.spans.StartDispatchSpan(ctx, trig.Event, active.String(), trig.ID)
	var (
		res      router.Result
		err      error
		panicked = true
	)
	defer func() {
		// A handler only panics from a mapped dispatch.
		if panicked {
			err, res.Mapped = router.ErrHandlerPanicked, true
		}
		b.cfg.spans.EndSpanWithError(span, err)
		b.cfg.metrics.RecordDispatch(ctx, trig.Event, res.Mapped)
	}()

	res, err = b.router.Dispatch(spanCtx, h, trig, active)
	panicked = false

	if !res.Mapped {
		b.unmapped(ctx, trig.Event, "no handlers registered")
		return nil
	}
	if err != nil {
		observability.LogDispatchError(logger, err)
		return err
	}
	observability.LogDispatch(logger, res.Invoked, float64(time.Since(trig.At).Microseconds())/1000)
	return nil
}

func (b *Bus) unmapped(ctx context.Context, event, reason string) {
	if !b.cfg.warnOnUnmappedEvent {
		return
	}
	b.emit(ctx, diagnostics.New(diagnostics.KindUnmappedEvent, event, "",
		fmt.Sprintf("event %q is unmapped: %s", event, reason)))
}

func (b *Bus) emit(ctx context.Context, d diagnostics.Diagnostic) {
	if err := b.cfg.sink.Emit(ctx, d); err != nil {
		observability.LogSinkError(b.cfg.logger, string(d.Kind), err)
	}
}

func (b *Bus) recordHandler(ctx context.Context, event string, scope catalog.Context, _ string, d time.Duration, err error) {
	b.cfg.metrics.RecordHandler(ctx, event, scope.String(), d, err)
}

// OnContextChanged registers fn to run after every context change and
// returns a func that removes it. Observers survive Initialize.
func (b *Bus) OnContextChanged(fn func(ContextChange)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	o := &observer{fn: fn}
	b.observers = append(b.observers, o)
	return func() {
		if o.removed {
			return
		}
		o.removed = true
		b.observers = slices.DeleteFunc(b.observers, func(x *observer) bool { return x == o })
	}
}

func (b *Bus) notify(tr ContextChange) {
	// Snapshot so observers may unsubscribe while being notified.
	for _, o := range slices.Clone(b.observers) {
		if !o.removed {
			o.fn(tr)
		}
	}
}

// ActiveContext returns the active context and whether one is set.
func (b *Bus) ActiveContext() (catalog.Context, bool) {
	if b.tracker == nil {
		return catalog.Context{}, false
	}
	return b.tracker.Active()
}

// State returns the tracker state.
func (b *Bus) State() tracker.State {
	if b.tracker == nil {
		return tracker.StateUninitialized
	}
	return b.tracker.State()
}

// Events returns the event catalog, or nil before Initialize.
func (b *Bus) Events() *catalog.Events {
	if b.router == nil {
		return nil
	}
	return b.router.Events()
}

// Contexts returns the context set, or nil before Initialize.
func (b *Bus) Contexts() *catalog.ContextSet {
	if b.tracker == nil {
		return nil
	}
	return b.tracker.Contexts()
}

// Routes returns a snapshot of the routing table.
func (b *Bus) Routes() []router.Route {
	if b.router == nil {
		return nil
	}
	return b.router.Routes()
}
