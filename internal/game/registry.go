package game

import (
	"sync"
)

// Registry owns the collection of live sessions and the player→session
// index that enforces one session per identity. It replaces the loose
// connection-keyed maps the rest of the system used to share.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byPlayer map[int64]string
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		byPlayer: make(map[int64]string),
	}
}

// Add registers a session and binds its creator's identity.
func (r *Registry) Add(s *Session, creatorID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	r.byPlayer[creatorID] = s.ID
}

// Bind indexes a newly seated player to a session.
func (r *Registry) Bind(playerID int64, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPlayer[playerID] = sessionID
}

// Unbind drops a player's index entry without touching the session.
func (r *Registry) Unbind(playerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byPlayer, playerID)
}

// Get returns a session by ID.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// SessionFor returns the session a player is seated in, if any.
func (r *Registry) SessionFor(playerID int64) (*Session, bool) {
	r.mu.RLock()
	id, ok := r.byPlayer[playerID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return r.Get(id)
}

// FirstFit scans for a public waiting session of the requested variant
// with a free slot. First fit, not best fit: no skill matching happens.
func (r *Registry) FirstFit(variant bool) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.Private || s.Variant != variant {
			continue
		}
		if s.HasFreeSlot() {
			return s, true
		}
	}
	return nil, false
}

// Remove deletes a session and every index entry pointing at it.
// Idempotent: removing an unknown ID does nothing.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return
	}
	delete(r.sessions, id)
	for playerID, sessionID := range r.byPlayer {
		if sessionID == id {
			delete(r.byPlayer, playerID)
		}
	}
}

// Range calls fn for every registered session. The snapshot is taken
// under the read lock; fn runs outside it so a slow session cannot block
// registry access.
func (r *Registry) Range(fn func(*Session)) {
	r.mu.RLock()
	snapshot := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()
	for _, s := range snapshot {
		fn(s)
	}
}

// Len reports how many sessions are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
