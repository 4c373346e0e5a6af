package snapshot

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/atomic"
)

// ErrStaleSelection is returned for a selection that was superseded by a newer
// one before it completed. Its result must be discarded.
var ErrStaleSelection = errors.New("selection superseded by a newer one")

// Builder assembles one snapshot. *Assembler implements it.
type Builder interface {
	Assemble(ctx context.Context, orgID, periodID int64) (*Snapshot, error)
}

// Selection tracks the currently selected (organization, period) pair and
// tags each request with a generation so out-of-order completions never
// replace a newer result.
type Selection struct {
	builder    Builder
	generation atomic.Uint64

	mu      sync.Mutex
	current *Snapshot
}

// NewSelection returns a selection backed by builder.
func NewSelection(builder Builder) *Selection {
	return &Selection{builder: builder}
}

// Select starts a new generation and assembles the snapshot for the pair.
// When a newer Select or Clear happened meanwhile, the result is dropped and
// ErrStaleSelection returned.
func (s *Selection) Select(ctx context.Context, orgID, periodID int64) (*Snapshot, error) {
	gen := s.generation.Inc()

	snap, err := s.builder.Assemble(ctx, orgID, periodID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation.Load() != gen {
		return nil, ErrStaleSelection
	}
	if err != nil {
		return nil, err
	}
	s.current = snap
	return snap, nil
}

// Current returns the last accepted snapshot, or nil.
func (s *Selection) Current() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Clear discards the current snapshot and invalidates in-flight selections,
// e.g. when the organization changes.
func (s *Selection) Clear() {
	s.generation.Inc()
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Generation returns the number of selections started so far.
func (s *Selection) Generation() uint64 {
	return s.generation.Load()
}
