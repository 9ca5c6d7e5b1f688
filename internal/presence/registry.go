package presence

import (
	"sync"

	"github.com/google/uuid"
)

// Connection is the write side of a live client socket. Send must not block;
// implementations report a full buffer or a closed socket as an error.
type Connection interface {
	Send(payload []byte) error
	Close()
}

type entry struct {
	id   string
	conn Connection
}

// Registry maps a user to their single active connection. It is process-local
// state: it never persists and is simply empty after a restart, at which point
// delivery degrades to fetch-on-next-poll.
type Registry struct {
	mu      sync.RWMutex
	entries map[int64]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[int64]entry)}
}

// Register maps userID to conn and returns an entry id for the matching
// Unregister call. Last registration wins: a previous connection for the same
// user is closed and replaced, not fanned out to.
func (r *Registry) Register(userID int64, conn Connection) string {
	id := uuid.NewString()

	r.mu.Lock()
	previous, existed := r.entries[userID]
	r.entries[userID] = entry{id: id, conn: conn}
	r.mu.Unlock()

	if existed && previous.conn != conn {
		previous.conn.Close()
	}
	return id
}

// Unregister removes the mapping only if entryID still owns it, so a stale
// disconnect cannot evict a newer registration.
func (r *Registry) Unregister(userID int64, entryID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.entries[userID]; ok && current.id == entryID {
		delete(r.entries, userID)
	}
}

func (r *Registry) Lookup(userID int64) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	current, ok := r.entries[userID]
	if !ok {
		return nil, false
	}
	return current.conn, true
}
