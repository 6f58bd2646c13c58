package realtime

import "sync"

// Registry maps a user id to that user's most recent authenticated connection.
// It is owned by whoever constructs it; there is no package level instance.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Conn)}
}

// Register stores conn for userID. Last connect wins: a previous connection
// for the same user is closed.
func (r *Registry) Register(userID string, conn *Conn) {
	r.mu.Lock()
	old, ok := r.conns[userID]
	r.conns[userID] = conn
	r.mu.Unlock()

	if ok && old != conn {
		_ = old.Close()
	}
}

// Unregister removes userID only if it still points at conn, so a stale
// close cannot evict a newer connection.
func (r *Registry) Unregister(userID string, conn *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.conns[userID]; ok && current == conn {
		delete(r.conns, userID)
		return true
	}
	return false
}

// Get returns the live connection for userID.
func (r *Registry) Get(userID string) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[userID]
	return c, ok
}

// Len reports the number of connected users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Send delivers event to userID's connection. It reports false with a nil
// error when the user has no open connection. A failed write drops the entry.
func (r *Registry) Send(userID string, event Event) (bool, error) {
	conn, ok := r.Get(userID)
	if !ok || conn.State() != StateAuthenticated {
		return false, nil
	}
	if err := conn.Send(event); err != nil {
		r.Unregister(userID, conn)
		return false, err
	}
	return true, nil
}
