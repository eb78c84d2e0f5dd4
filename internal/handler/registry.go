package handler

import (
	"sync"

	"github.com/google/uuid"

	"github.com/slicehouse/combo-configurator/internal/domain/session"
)

// liveSession pairs a sequencer with its pending sub-flow payloads. The mutex
// serializes all HTTP access to the session: each session owns its state
// exclusively for its lifetime and no two requests interleave on it.
type liveSession struct {
	id      string
	mu      sync.Mutex
	seq     *session.Sequencer
	pending *pendingDelegates
}

// Registry is the in-memory store of open configurator sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*liveSession)}
}

// Add registers a sequencer under a fresh session ID.
func (r *Registry) Add(seq *session.Sequencer, pending *pendingDelegates) *liveSession {
	ls := &liveSession{
		id:      uuid.New().String(),
		seq:     seq,
		pending: pending,
	}
	r.mu.Lock()
	r.sessions[ls.id] = ls
	r.mu.Unlock()
	return ls
}

// Get returns the session with the given ID, or nil.
func (r *Registry) Get(id string) *liveSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Remove drops a session from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
