package relay

import (
	"sync"
)

// Endpoint is a live transport handle capable of receiving a push frame.
// Send must not block indefinitely: implementations enqueue and report
// backpressure as an error. Close tears the transport down and must be
// safe to call more than once.
type Endpoint interface {
	Send(frame Outbound) error
	Close() error
}

// Registry maps a username to its single live endpoint. One instance is
// shared by every connection handler in the process; it starts empty and
// holds nothing durable.
//
// All mutation goes through Register/Unregister/Shutdown, and the map is
// never handed out. Critical sections are O(1) map operations only — no
// network I/O ever happens under the lock, which is why a single coarse
// mutex is enough.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string]Endpoint
}

func NewRegistry() *Registry {
	return &Registry{endpoints: make(map[string]Endpoint)}
}

// Register associates username with ep. Last register wins: if a previous
// endpoint existed it is displaced and returned so the caller can close
// the stale transport outside the lock. Returns nil when there was none.
func (r *Registry) Register(username string, ep Endpoint) Endpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.endpoints[username]
	r.endpoints[username] = ep
	if prev == ep {
		return nil
	}
	return prev
}

// Unregister removes username's entry, but only if it still points at ep.
// The guard matters for the supersede case: when a new connection has
// already replaced the entry, the old session's deferred cleanup must not
// tear down the new one's registration. No-op if absent.
//
// The return value says whether the entry was actually removed: false
// means the session was already superseded (or never registered), and its
// cleanup must not undo any side effects the newer session owns, presence
// included.
func (r *Registry) Unregister(username string, ep Endpoint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.endpoints[username]; ok && current == ep {
		delete(r.endpoints, username)
		return true
	}
	return false
}

// Lookup returns the live endpoint for username, if any.
func (r *Registry) Lookup(username string) (Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.endpoints[username]
	return ep, ok
}

// Online returns the usernames with a live endpoint right now.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.endpoints))
	for username := range r.endpoints {
		users = append(users, username)
	}
	return users
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.endpoints)
}

// Shutdown drops every registration and closes the displaced endpoints.
// The map is swapped under the lock; the closes happen after it is
// released.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	dropped := r.endpoints
	r.endpoints = make(map[string]Endpoint)
	r.mu.Unlock()

	for _, ep := range dropped {
		_ = ep.Close()
	}
}
