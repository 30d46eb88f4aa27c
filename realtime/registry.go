package realtime

import "sync"

// Connection is one live duplex channel to a client. Session is the real
// implementation; tests register fakes. Handle identity is interface
// equality, which for pointer implementations is pointer identity.
type Connection interface {
	UserID() string
	Send(v any) error
}

// Registry is the process-local presence map: user ID -> live connection.
// At most one entry per user exists at any instant; a later Register for
// the same user silently supersedes the previous one (last writer wins).
//
// Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Connection
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Connection)}
}

// Register binds a user to its live connection, overwriting any previous
// binding for the same user.
func (r *Registry) Register(userID string, c Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = c
}

// Unregister removes the entry for the connection's user only if it still
// points at this exact handle. Comparing by handle rather than by user ID
// is what makes disconnects of superseded connections safe: the stale
// goroutine's cleanup can never clobber the entry of the connection that
// replaced it.
func (r *Registry) Unregister(c Connection) {
	if c == nil || c.UserID() == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.sessions[c.UserID()]; ok && current == c {
		delete(r.sessions, c.UserID())
	}
}

// Lookup returns the live connection for a user, if any.
func (r *Registry) Lookup(userID string) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.sessions[userID]
	return c, ok
}

// Count reports how many users currently have a live connection.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
