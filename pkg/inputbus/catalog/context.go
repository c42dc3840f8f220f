package catalog

import (
	"fmt"
	"strings"
)

type contextKind uint8

const (
	kindAbsent contextKind = iota
	kindUnscoped
	kindNamed
)

// Context is a named input context such as a control scheme.
// Contexts compare equal by name; use == directly.
type Context struct {
	kind contextKind
	name string
}

// Unscoped matches any active context, including no context at all.
var Unscoped = Context{kind: kindUnscoped}

// IsZero reports whether c is the absent context.
func (c Context) IsZero() bool {
	return c.kind == kindAbsent
}

// IsUnscoped reports whether c is Unscoped.
func (c Context) IsUnscoped() bool {
	return c.kind == kindUnscoped
}

// Name returns the context name. Unscoped and absent contexts have no name.
func (c Context) Name() string {
	return c.name
}

// Matches reports whether a group scoped to c applies while active is the
// current context.
func (c Context) Matches(active Context) bool {
	switch c.kind {
	case kindUnscoped:
		return true
	case kindNamed:
		return active.kind == kindNamed && active.name == c.name
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (c Context) String() string {
	switch c.kind {
	case kindUnscoped:
		return "*"
	case kindNamed:
		return c.name
	default:
		return "<none>"
	}
}

// ContextSet is an immutable ordered collection of named contexts.
type ContextSet struct {
	contexts []Context
	index    map[string]int
}

// NewContextSet builds a set from the given names. Duplicates collapse to
// their first occurrence.
func NewContextSet(names ...string) (*ContextSet, error) {
	s := &ContextSet{
		contexts: make([]Context, 0, len(names)),
		index:    make(map[string]int, len(names)),
	}
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("context %d: %w", i, ErrEmptyName)
		}
		s.add(name)
	}
	return s, nil
}

// MustContextSet is like NewContextSet but panics on error.
func MustContextSet(names ...string) *ContextSet {
	s, err := NewContextSet(names...)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return s
}

func (s *ContextSet) add(name string) {
	if _, ok := s.index[name]; ok {
		return
	}
	s.index[name] = len(s.contexts)
	s.contexts = append(s.contexts, Context{kind: kindNamed, name: name})
}

// Find resolves a context by exact name.
func (s *ContextSet) Find(name string) (Context, bool) {
	if s == nil {
		return Context{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Context{}, false
	}
	return s.contexts[i], true
}

// Select resolves every name, failing on the first unknown one.
// Empty names resolve to the absent context.
func (s *ContextSet) Select(names ...string) ([]Context, error) {
	out := make([]Context, 0, len(names))
	for _, name := range names {
		if name == "" {
			out = append(out, Context{})
			continue
		}
		c, ok := s.Find(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownContext, name)
		}
		out = append(out, c)
	}
	return out, nil
}

// Contexts returns a copy of the contexts in set order.
func (s *ContextSet) Contexts() []Context {
	if s == nil {
		return nil
	}
	out := make([]Context, len(s.contexts))
	copy(out, s.contexts)
	return out
}

// Names returns the context names in set order.
func (s *ContextSet) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.contexts))
	for i, c := range s.contexts {
		out[i] = c.name
	}
	return out
}

// Len returns the number of contexts.
func (s *ContextSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.contexts)
}

// With returns a new set with names appended. Names already present are
// ignored.
func (s *ContextSet) With(names ...string) (*ContextSet, error) {
	return NewContextSet(append(s.Names(), names...)...)
}

// Without returns a new set with names removed. Unknown names are ignored.
func (s *ContextSet) Without(names ...string) *ContextSet {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := &ContextSet{index: make(map[string]int, s.Len())}
	for _, c := range s.Contexts() {
		if !drop[c.name] {
			out.add(c.name)
		}
	}
	return out
}
