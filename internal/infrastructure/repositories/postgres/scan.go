package postgres

import (
	"time"

	"chatwire/internal/core/domain"
)

// nullableUser scans user columns from the nullable side of a LEFT JOIN.
type nullableUser struct {
	id        *string
	username  *string
	firstName *string
	lastName  *string
	avatarURL *string
	status    *string
	lastSeen  *time.Time
	createdAt *time.Time
}

func (n *nullableUser) user() *domain.User {
	if n.id == nil {
		return nil
	}
	user := &domain.User{
		ID:       domain.UserID(*n.id),
		Username: *n.username,
	}
	if n.firstName != nil {
		user.FirstName = *n.firstName
	}
	if n.lastName != nil {
		user.LastName = *n.lastName
	}
	if n.avatarURL != nil {
		user.AvatarURL = *n.avatarURL
	}
	if n.status != nil {
		user.Status = domain.UserStatus(*n.status)
	}
	if n.lastSeen != nil {
		user.LastSeen = *n.lastSeen
	}
	if n.createdAt != nil {
		user.CreatedAt = *n.createdAt
	}
	return user
}
