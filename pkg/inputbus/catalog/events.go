package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for catalog construction.
var (
	// ErrEmptyName indicates an event or context name was empty or whitespace.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrUnknownContext indicates a context name is not part of the set.
	ErrUnknownContext = errors.New("unknown context")
)

// Events is an immutable, ordered catalog of event names.
type Events struct {
	names []string
	index map[string]int
}

// NewEvents builds a catalog from the given names.
// Duplicate names collapse to their first occurrence.
func NewEvents(names ...string) (*Events, error) {
	e := &Events{
		names: make([]string, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("event %d: %w", i, ErrEmptyName)
		}
		if _, ok := e.index[name]; ok {
			continue
		}
		e.index[name] = len(e.names)
		e.names = append(e.names, name)
	}
	return e, nil
}

// MustEvents is like NewEvents but panics on error.
func MustEvents(names ...string) *Events {
	e, err := NewEvents(names...)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return e
}

// Lookup returns the position of name in the catalog.
func (e *Events) Lookup(name string) (int, bool) {
	if e == nil {
		return 0, false
	}
	i, ok := e.index[name]
	return i, ok
}

// Has reports whether name is in the catalog.
func (e *Events) Has(name string) bool {
	_, ok := e.Lookup(name)
	return ok
}

// Name returns the event name at position i, or "" when out of range.
func (e *Events) Name(i int) string {
	if e == nil || i < 0 || i >= len(e.names) {
		return ""
	}
	return e.names[i]
}

// Len returns the number of events.
func (e *Events) Len() int {
	if e == nil {
		return 0
	}
	return len(e.names)
}

// Names returns a copy of the event names in catalog order.
func (e *Events) Names() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}
