package registry

import (
	"errors"
	"sync"

	"github.com/pokearena/arena/internal/logging"
	"github.com/pokearena/arena/internal/screen"
)

// Sentinel errors for registry lookups
var (
	// ErrNotFound means the client id has no live session. Callers treat
	// this as "already disconnected".
	ErrNotFound = errors.New("client not registered")
	// ErrClosed means the client's outbound channel has been closed
	ErrClosed = screen.ErrClosed
)

// Registry is the one piece of state shared across sessions: a map from
// client id to that session's outbound channel handle. Every mutation is a
// single map operation under one mutex; the lock is never held across
// channel sends, network I/O or rendering.
type Registry struct {
	mu       sync.Mutex
	sessions map[uint64]*screen.Outbound
	nextID   uint64
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		sessions: make(map[uint64]*screen.Outbound),
	}
}

// Register assigns the next monotonic client id to out and records the
// mapping. Ids are never reused within a process lifetime.
func (r *Registry) Register(out *screen.Outbound) uint64 {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.sessions[id] = out
	r.mu.Unlock()

	logging.LogSession(id, "session_registered")
	return id
}

// Unregister removes the mapping for id. Removing an unknown id is a no-op;
// the session is simply already gone.
func (r *Registry) Unregister(id uint64) {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		logging.LogSession(id, "session_unregistered")
	}
}

// Send hands bytes to one client's outbound channel without blocking.
// Unknown ids return ErrNotFound, closed channels ErrClosed. A full channel
// drops the payload and reports success, matching the flush policy: a slow
// peer never back-pressures the caller.
func (r *Registry) Send(id uint64, p []byte) error {
	r.mu.Lock()
	out, ok := r.sessions[id]
	r.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	switch err := out.TrySend(p); err {
	case nil, screen.ErrFull:
		return nil
	default:
		return err
	}
}

// Broadcast hands bytes to every live session. Sessions with a full or
// closed channel are skipped; their own supervisors handle teardown.
func (r *Registry) Broadcast(p []byte) {
	r.mu.Lock()
	outs := make([]*screen.Outbound, 0, len(r.sessions))
	for _, out := range r.sessions {
		outs = append(outs, out)
	}
	r.mu.Unlock()

	// Sends happen outside the lock
	for _, out := range outs {
		_ = out.TrySend(p)
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
