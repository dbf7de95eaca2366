// internal/lobby/registry.go
package lobby

import (
	"sync"

	"github.com/ratedrps/ratedrps-service/internal/models"
)

// Registry holds players who are connected but not yet matched.
//
// Connection handles are kept in a sync.Map so lookups and upserts for one player never
// contend with another. The wait queue is FIFO and guarded by its own mutex; every
// operation on it is O(n) at worst and never blocks on I/O.
type Registry struct {
	conns sync.Map // player id -> models.Conn

	mu     sync.Mutex
	queue  []models.Player
	queued map[string]struct{}
}

// NewRegistry returns an empty lobby.
func NewRegistry() *Registry {
	return &Registry{
		queued: make(map[string]struct{}),
	}
}

// Join upserts the player's connection and enqueues them unless they are already queued
// or currently in a match. It reports whether the player is in the wait queue afterwards.
func (r *Registry) Join(p models.Player, conn models.Conn, inMatch bool) bool {
	r.conns.Store(p.ID, conn)
	if inMatch {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.queued[p.ID]; !ok {
		r.queue = append(r.queue, p)
		r.queued[p.ID] = struct{}{}
	}
	return true
}

// Leave drops the player from both the connection map and the wait queue.
// It is a no-op when the player is not in the lobby.
func (r *Registry) Leave(playerID string) {
	r.conns.Delete(playerID)
	r.dequeue(playerID)
}

// LeaveConn is Leave restricted to a specific connection: it does nothing if the player has
// since re-joined on a different connection. It reports whether anything was removed.
func (r *Registry) LeaveConn(playerID string, conn models.Conn) bool {
	if !r.conns.CompareAndDelete(playerID, conn) {
		return false
	}
	r.dequeue(playerID)
	return true
}

func (r *Registry) dequeue(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.queued[playerID]; !ok {
		return
	}
	delete(r.queued, playerID)
	for i, p := range r.queue {
		if p.ID == playerID {
			r.queue = append(r.queue[:i], r.queue[i+1:]...)
			return
		}
	}
}

// DequeuePair atomically removes the two earliest queued players.
// ok is false, and the queue untouched, when fewer than two are waiting.
func (r *Registry) DequeuePair() (first, second models.Player, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) < 2 {
		return models.Player{}, models.Player{}, false
	}
	first, second = r.queue[0], r.queue[1]
	r.queue = r.queue[2:]
	delete(r.queued, first.ID)
	delete(r.queued, second.ID)
	return first, second, true
}

// Requeue puts a dequeued player back at the tail, provided they still have a connection
// in the lobby and are not already queued.
func (r *Registry) Requeue(p models.Player) bool {
	if _, ok := r.conns.Load(p.ID); !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.queued[p.ID]; ok {
		return false
	}
	r.queue = append(r.queue, p)
	r.queued[p.ID] = struct{}{}
	return true
}

// Conn returns the player's live lobby connection.
func (r *Registry) Conn(playerID string) (models.Conn, bool) {
	v, ok := r.conns.Load(playerID)
	if !ok {
		return nil, false
	}
	conn := v.(models.Conn)
	if conn.Closed() {
		return nil, false
	}
	return conn, true
}

// Conns snapshots every lobby connection, for broadcasts.
func (r *Registry) Conns() []models.Conn {
	var out []models.Conn
	r.conns.Range(func(_, v any) bool {
		out = append(out, v.(models.Conn))
		return true
	})
	return out
}

// Size is the current wait queue length.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Queued reports whether the player is in the wait queue.
func (r *Registry) Queued(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.queued[playerID]
	return ok
}

// Waiting returns the queue in order.
func (r *Registry) Waiting() []models.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Player, len(r.queue))
	copy(out, r.queue)
	return out
}
