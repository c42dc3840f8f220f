package diagnostics

import (
	"context"
	"sync"
)

// MemorySink keeps diagnostics in memory. Safe for concurrent use, so a
// UI goroutine may read while the input loop emits.
type MemorySink struct {
	mu    sync.RWMutex
	items []Diagnostic
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Emit implements Sink.
func (s *MemorySink) Emit(_ context.Context, d Diagnostic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, d)
	return nil
}

// All returns a copy of every diagnostic in emission order.
func (s *MemorySink) All() []Diagnostic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	return out
}

// ByKind returns diagnostics of one kind in emission order.
func (s *MemorySink) ByKind(kind Kind) []Diagnostic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Diagnostic
	for _, d := range s.items {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of stored diagnostics.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Reset drops all stored diagnostics.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}
