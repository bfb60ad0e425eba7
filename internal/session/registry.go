package session

import (
	"sync"

	"github.com/claude/repwatch/internal/classifier"
	"github.com/google/uuid"
)

// Registry holds the live trackers for all active sessions, keyed by
// session ID. Persistence is the storage layer's job; the registry only
// carries in-flight classification state.
type Registry struct {
	mu       sync.Mutex
	trackers map[uuid.UUID]*Tracker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{trackers: make(map[uuid.UUID]*Tracker)}
}

// Obtain returns the tracker for a session, creating one with fresh state
// if the session has no live tracker yet (e.g. after a server restart).
func (r *Registry) Obtain(id uuid.UUID, kind classifier.MovementKind) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.trackers[id]; ok {
		return t
	}
	t := NewTracker(kind)
	r.trackers[id] = t
	return t
}

// Lookup returns the tracker for a session, if one is live.
func (r *Registry) Lookup(id uuid.UUID) (*Tracker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trackers[id]
	return t, ok
}

// Drop removes a session's tracker, releasing its state.
func (r *Registry) Drop(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.trackers, id)
}
