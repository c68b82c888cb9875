package services

import (
	"context"
	"testing"
	"time"

	"chatwire/internal/core/domain"
	"chatwire/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, store *memory.Store, id, username string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:        domain.UserID(id),
		Username:  username,
		Status:    domain.StatusOffline,
		LastSeen:  time.Now().UTC(),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}
