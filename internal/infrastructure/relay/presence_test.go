package relay

import (
	"testing"

	"chatwire/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestPresenceRegistry_BindAndLookup(t *testing.T) {
	registry := NewPresenceRegistry()

	registry.Bind(domain.UserID("alice"), ConnectionID("conn-1"))

	connID, ok := registry.Lookup(domain.UserID("alice"))
	assert.True(t, ok)
	assert.Equal(t, ConnectionID("conn-1"), connID)
	assert.Equal(t, 1, registry.Size())
}

func TestPresenceRegistry_LookupAbsent(t *testing.T) {
	registry := NewPresenceRegistry()

	_, ok := registry.Lookup(domain.UserID("nobody"))
	assert.False(t, ok)
}

func TestPresenceRegistry_RebindLastWins(t *testing.T) {
	registry := NewPresenceRegistry()

	registry.Bind(domain.UserID("alice"), ConnectionID("conn-1"))
	registry.Bind(domain.UserID("alice"), ConnectionID("conn-2"))

	connID, ok := registry.Lookup(domain.UserID("alice"))
	assert.True(t, ok)
	assert.Equal(t, ConnectionID("conn-2"), connID)
	assert.Equal(t, 1, registry.Size())
}

func TestPresenceRegistry_UnbindRemovesBinding(t *testing.T) {
	registry := NewPresenceRegistry()

	registry.Bind(domain.UserID("alice"), ConnectionID("conn-1"))
	registry.Unbind(domain.UserID("alice"), ConnectionID("conn-1"))

	_, ok := registry.Lookup(domain.UserID("alice"))
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Size())
}

// A connection superseded by a re-authentication must not remove the newer
// binding when it disconnects.
func TestPresenceRegistry_UnbindStaleConnectionKeepsNewBinding(t *testing.T) {
	registry := NewPresenceRegistry()

	registry.Bind(domain.UserID("alice"), ConnectionID("conn-1"))
	registry.Bind(domain.UserID("alice"), ConnectionID("conn-2"))

	registry.Unbind(domain.UserID("alice"), ConnectionID("conn-1"))

	connID, ok := registry.Lookup(domain.UserID("alice"))
	assert.True(t, ok)
	assert.Equal(t, ConnectionID("conn-2"), connID)
}
