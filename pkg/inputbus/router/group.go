package router

import "github.com/randalmurphal/inputbus/pkg/inputbus/catalog"

// Group is the deduplicated handler set for one (event, context) pair.
// Groups are created lazily and only ever grow.
type Group[P any] struct {
	context  catalog.Context
	handlers []Handler[P]
	members  map[Handler[P]]struct{}
}

func newGroup[P any](c catalog.Context) *Group[P] {
	return &Group[P]{
		context: c,
		members: make(map[Handler[P]]struct{}),
	}
}

// Context returns the group's scope.
func (g *Group[P]) Context() catalog.Context {
	return g.context
}

// add inserts h and reports whether it was new.
func (g *Group[P]) add(h Handler[P]) bool {
	if _, ok := g.members[h]; ok {
		return false
	}
	g.members[h] = struct{}{}
	g.handlers = append(g.handlers, h)
	return true
}

// Contains reports whether h is in the group.
func (g *Group[P]) Contains(h Handler[P]) bool {
	_, ok := g.members[h]
	return ok
}

// Len returns the number of handlers.
func (g *Group[P]) Len() int {
	return len(g.handlers)
}

// Handlers returns a snapshot of the group's handlers.
// Callers must not rely on the order.
func (g *Group[P]) Handlers() []Handler[P] {
	out := make([]Handler[P], len(g.handlers))
	copy(out, g.handlers)
	return out
}
