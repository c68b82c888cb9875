package relay

import (
	"sync"

	"chatwire/internal/core/domain"
)

// ConnectionID identifies a live relay connection.
type ConnectionID string

// PresenceRegistry tracks which connection currently represents each
// authenticated user. It is process-local: every entry is lost on restart
// and a user is only reachable again after re-authenticating.
//
// The registry is owned by the Server and handed to connection handlers by
// reference; nothing else mutates it.
type PresenceRegistry struct {
	mu     sync.RWMutex
	byUser map[domain.UserID]ConnectionID
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		byUser: make(map[domain.UserID]ConnectionID),
	}
}

// Bind points userID at connID, unconditionally overwriting any prior
// binding. A superseded connection stays open but is no longer reachable
// for targeted forwards.
func (r *PresenceRegistry) Bind(userID domain.UserID, connID ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[userID] = connID
}

// Lookup returns the connection currently bound to userID.
func (r *PresenceRegistry) Lookup(userID domain.UserID) (ConnectionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.byUser[userID]
	return connID, ok
}

// Unbind removes the binding for userID, but only if it still points at
// connID. A connection superseded by a re-authentication must not tear
// down the newer binding when it finally disconnects.
func (r *PresenceRegistry) Unbind(userID domain.UserID, connID ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.byUser[userID]; ok && current == connID {
		delete(r.byUser, userID)
	}
}

// Size returns the number of bound users.
func (r *PresenceRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
