// Package tracker holds the active input context and announces changes.
//
// A Tracker starts Uninitialized. Each Report resolves a name against its
// ContextSet and either ignores it (unrecognized or unchanged) or moves to
// Active(context) and notifies observers. Report is the only way the active
// context changes.
package tracker

import (
	"errors"

	"github.com/randalmurphal/inputbus/pkg/inputbus/catalog"
)

// ErrNilContextSet indicates a tracker was constructed without a set.
var ErrNilContextSet = errors.New("context set cannot be nil")

// State is the tracker's lifecycle state.
type State int

const (
	// StateUninitialized means no context has been resolved yet.
	StateUninitialized State = iota

	// StateActive means an active context is set.
	StateActive
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// Outcome describes what a Report did.
type Outcome int

const (
	// OutcomeUnrecognized means the name is not in the set; nothing changed.
	OutcomeUnrecognized Outcome = iota

	// OutcomeUnchanged means the name matches the active context.
	OutcomeUnchanged

	// OutcomeChanged means the tracker transitioned and notified observers.
	OutcomeChanged
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeUnrecognized:
		return "unrecognized"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// Transition is the result of a Report.
type Transition struct {
	Outcome  Outcome
	Previous catalog.Context // zero when there was no active context
	Current  catalog.Context // active context after the report
	Reported string          // the name as reported
}

// Observer is notified after every context change.
type Observer func(t Transition)

// Tracker owns the active context. It is not safe for concurrent use.
type Tracker struct {
	set       *catalog.ContextSet
	active    catalog.Context
	observers map[uint64]Observer
	order     []uint64
	nextID    uint64
}

// New creates an Uninitialized tracker over set.
func New(set *catalog.ContextSet) (*Tracker, error) {
	if set == nil {
		return nil, ErrNilContextSet
	}
	return &Tracker{
		set:       set,
		observers: make(map[uint64]Observer),
	}, nil
}

// Contexts returns the set the tracker resolves names against.
func (t *Tracker) Contexts() *catalog.ContextSet {
	return t.set
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	if t.active.IsZero() {
		return StateUninitialized
	}
	return StateActive
}

// Active returns the active context and whether one is set.
func (t *Tracker) Active() (catalog.Context, bool) {
	return t.active, !t.active.IsZero()
}

// Report resolves name and transitions when it differs from the active
// context. Observers run synchronously, in subscription order, only on
// OutcomeChanged.
func (t *Tracker) Report(name string) Transition {
	tr := Transition{Previous: t.active, Current: t.active, Reported: name}

	next, ok := t.set.Find(name)
	if !ok {
		tr.Outcome = OutcomeUnrecognized
		return tr
	}
	if next == t.active {
		tr.Outcome = OutcomeUnchanged
		return tr
	}

	t.active = next
	tr.Current = next
	tr.Outcome = OutcomeChanged
	t.notify(tr)
	return tr
}

func (t *Tracker) notify(tr Transition) {
	// Copy ids so observers may unsubscribe while being notified.
	ids := make([]uint64, len(t.order))
	copy(ids, t.order)
	for _, id := range ids {
		if fn, ok := t.observers[id]; ok {
			fn(tr)
		}
	}
}

// Observe registers fn for context changes and returns a func that
// removes it. A nil fn is ignored.
func (t *Tracker) Observe(fn Observer) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	t.nextID++
	id := t.nextID
	t.observers[id] = fn
	t.order = append(t.order, id)

	return func() {
		if _, ok := t.observers[id]; !ok {
			return
		}
		delete(t.observers, id)
		for i, v := range t.order {
			if v == id {
				t.order = append(t.order[:i:i], t.order[i+1:]...)
				break
			}
		}
	}
}
