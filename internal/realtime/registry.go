// Package realtime manages live WebSocket connections: the upgrade path and
// the registry mapping identifiers to open channels.
package realtime

import (
	"sync"

	"github.com/DDmsngr/deepdrift-backend/pkg/relay"
)

// Registry is the single source of truth for "is X online". It maps an
// identifier to the sender half of its open channel. The registry indexes
// connections but does not own their lifecycle: entries are added when a
// session authenticates and removed by the owning session on disconnect.
//
// At most one entry exists per identifier. A new registration for the same
// identifier overwrites the prior one (last writer wins); the displaced
// channel is not closed here.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]relay.Sender
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]relay.Sender)}
}

// Register maps uid to sender, unconditionally replacing any existing entry.
func (r *Registry) Register(uid string, sender relay.Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[uid] = sender
}

// Unregister removes the mapping for uid only if it still points at exactly
// sender. This keeps a late disconnect of a superseded session from erasing
// a newer, valid registration. Reports whether an entry was removed.
func (r *Registry) Unregister(uid string, sender relay.Sender) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.conns[uid]; ok && current == sender {
		delete(r.conns, uid)
		return true
	}
	return false
}

// Lookup returns the live channel for uid, if any.
func (r *Registry) Lookup(uid string) (relay.Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sender, ok := r.conns[uid]
	return sender, ok
}

// Count returns the number of live registrations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
