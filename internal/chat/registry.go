package chat

import "sync"

// Registry is the ordered set of broadcast-eligible sessions. The accept
// path inserts and every connection goroutine removes concurrently, so all
// access goes through the mutex.
type Registry struct {
	mu       sync.Mutex
	sessions []*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a session for broadcast. Adding a session twice is a no-op.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if existing == s {
			return
		}
	}
	r.sessions = append(r.sessions, s)
}

// Remove deregisters a session and reports whether it was present.
// Removing an absent session is a no-op, not an error.
func (r *Registry) Remove(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.sessions {
		if existing == s {
			r.sessions = append(r.sessions[:i], r.sessions[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot copies the current membership. Broadcasts iterate the snapshot
// so a slow recipient never blocks registry mutation.
func (r *Registry) Snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, len(r.sessions))
	copy(out, r.sessions)
	return out
}

// Len reports the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
