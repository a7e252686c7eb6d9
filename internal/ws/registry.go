package ws

import "sync"

// Registry is the set of connected viewer session IDs.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]struct{})}
}

// Add records a session. Adding a known session is a no-op.
func (r *Registry) Add(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = struct{}{}
}

// Remove forgets a session. Removing an unknown session is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// IsEmpty reports whether no sessions are connected.
func (r *Registry) IsEmpty() bool {
	return r.Len() == 0
}

// Len returns the number of connected sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
