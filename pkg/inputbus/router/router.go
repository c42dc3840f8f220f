package router

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/randalmurphal/inputbus/pkg/inputbus/catalog"
)

// Config configures router callbacks.
type Config struct {
	// OnInvoke is called after every handler invocation (for metrics),
	// including one that panics, with ErrHandlerPanicked.
	OnInvoke func(ctx context.Context, event string, scope catalog.Context, handler string, duration time.Duration, err error)
}

// instance stamps handles with the router that resolved them.
type instance struct {
	seq uint64
}

var instanceSeq atomic.Uint64

// Handle is an event name resolved against a specific router.
// The zero Handle matches nothing.
type Handle struct {
	owner *instance
	index int
	name  string
}

// Name returns the event name the handle was resolved from.
func (h Handle) Name() string {
	return h.name
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h.owner == nil
}

// Result summarizes one dispatch.
type Result struct {
	// Mapped is false when no group exists for the event.
	Mapped bool
	// Groups is the number of groups whose context matched.
	Groups int
	// Invoked is the number of handlers that ran, including a failing one.
	Invoked int
}

// Route describes one group in the routing table.
type Route struct {
	Event    string
	Context  catalog.Context
	Handlers int
}

// Router maps events to context-scoped handler groups.
//
// A Router carries no internal locking. Register and Dispatch must be
// driven from a single goroutine, or serialized by the caller.
type Router[P any] struct {
	config Config
	inst   *instance
	events *catalog.Events
	table  map[int][]*Group[P] // catalog index -> groups in creation order
}

// New creates a router bound to events.
func New[P any](events *catalog.Events, config Config) (*Router[P], error) {
	if events == nil {
		return nil, ErrNilCatalog
	}
	return &Router[P]{
		config: config,
		inst:   &instance{seq: instanceSeq.Add(1)},
		events: events,
		table:  make(map[int][]*Group[P], events.Len()),
	}, nil
}

// Events returns the catalog the router validates against.
func (r *Router[P]) Events() *catalog.Events {
	return r.events
}

// Resolve turns an event name into a handle owned by this router.
func (r *Router[P]) Resolve(name string) (Handle, error) {
	if strings.TrimSpace(name) == "" {
		return Handle{}, &RegistrationError{Err: ErrEmptyEventName}
	}
	i, ok := r.events.Lookup(name)
	if !ok {
		return Handle{}, &RegistrationError{Event: name, Err: ErrUnknownEvent}
	}
	return Handle{owner: r.inst, index: i, name: name}, nil
}

// Register adds h to the group of every requested context for event.
//
// Absent (zero) contexts are dropped; if nothing remains, h is registered
// Unscoped. Re-registering the same handler for the same pair is a no-op.
// On error the routing table is left untouched.
func (r *Router[P]) Register(event string, h Handler[P], contexts ...catalog.Context) error {
	handle, err := r.Resolve(event)
	if err != nil {
		return err
	}
	if err := validateHandler(h); err != nil {
		return &RegistrationError{Event: event, Err: err}
	}

	for _, c := range normalizeContexts(contexts) {
		r.group(handle.index, c).add(h)
	}
	return nil
}

// normalizeContexts drops absent entries and duplicates, substituting
// Unscoped for an empty result.
func normalizeContexts(contexts []catalog.Context) []catalog.Context {
	out := make([]catalog.Context, 0, len(contexts))
	seen := make(map[catalog.Context]bool, len(contexts))
	for _, c := range contexts {
		if c.IsZero() || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) == 0 {
		out = append(out, catalog.Unscoped)
	}
	return out
}

// group returns the group for (index, c), creating it on first use.
func (r *Router[P]) group(index int, c catalog.Context) *Group[P] {
	groups := r.table[index]
	for _, g := range groups {
		if g.context == c {
			return g
		}
	}
	g := newGroup[P](c)
	r.table[index] = append(groups, g)
	return g
}

// Dispatch invokes every handler in every group matching active. A
// handler registered in more than one matching group runs once.
//
// A handle from another router, or an event with no groups, is unmapped:
// Result.Mapped is false and nothing runs. The first handler error stops
// the dispatch and is returned as a *HandlerError. Panics are not
// recovered.
func (r *Router[P]) Dispatch(ctx context.Context, h Handle, payload P, active catalog.Context) (Result, error) {
	if h.owner != r.inst {
		return Result{}, nil
	}
	groups, ok := r.table[h.index]
	if !ok {
		return Result{}, nil
	}

	res := Result{Mapped: true}
	// A handler in both the unscoped group and the active context's group
	// still runs once.
	seen := make(map[Handler[P]]struct{})
	for _, g := range groups {
		if !g.context.Matches(active) {
			continue
		}
		res.Groups++
		// Snapshot so a handler registering into this group cannot extend
		// the current dispatch.
		for _, handler := range g.Handlers() {
			if _, dup := seen[handler]; dup {
				continue
			}
			seen[handler] = struct{}{}
			res.Invoked++
			if err := r.invoke(ctx, h.name, g.context, handler, payload); err != nil {
				return res, &HandlerError{
					Event:   h.name,
					Context: g.context,
					Handler: handlerName(handler),
					Err:     err,
				}
			}
		}
	}
	return res, nil
}

func (r *Router[P]) invoke(ctx context.Context, event string, scope catalog.Context, h Handler[P], payload P) error {
	if r.config.OnInvoke == nil {
		return h.Handle(ctx, payload)
	}
	start := time.Now()
	completed := false
	defer func() {
		// Panicking: report without recovering so the panic continues.
		if !completed {
			r.config.OnInvoke(ctx, event, scope, handlerName(h), time.Since(start), ErrHandlerPanicked)
		}
	}()
	err := h.Handle(ctx, payload)
	completed = true
	r.config.OnInvoke(ctx, event, scope, handlerName(h), time.Since(start), err)
	return err
}

// DispatchName resolves event and dispatches it. Unknown names are
// reported as unmapped, not as errors.
func (r *Router[P]) DispatchName(ctx context.Context, event string, payload P, active catalog.Context) (Result, error) {
	h, err := r.Resolve(event)
	if err != nil {
		return Result{}, nil
	}
	return r.Dispatch(ctx, h, payload, active)
}

// Groups returns a snapshot of the groups registered for event.
func (r *Router[P]) Groups(event string) []*Group[P] {
	i, ok := r.events.Lookup(event)
	if !ok {
		return nil
	}
	groups := r.table[i]
	out := make([]*Group[P], len(groups))
	copy(out, groups)
	return out
}

// Routes returns the routing table in catalog order.
func (r *Router[P]) Routes() []Route {
	var routes []Route
	for i := 0; i < r.events.Len(); i++ {
		for _, g := range r.table[i] {
			routes = append(routes, Route{
				Event:    r.events.Name(i),
				Context:  g.context,
				Handlers: g.Len(),
			})
		}
	}
	return routes
}

// Len returns the number of (event, context) groups.
func (r *Router[P]) Len() int {
	n := 0
	for _, groups := range r.table {
		n += len(groups)
	}
	return n
}
