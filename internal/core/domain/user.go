package domain

import "time"

type UserID string

type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusOffline UserStatus = "offline"
	StatusAway    UserStatus = "away"
	StatusBusy    UserStatus = "busy"
)

// ValidUserStatus reports whether s is one of the accepted status values.
func ValidUserStatus(s UserStatus) bool {
	switch s {
	case StatusOnline, StatusOffline, StatusAway, StatusBusy:
		return true
	}
	return false
}

type User struct {
	ID        UserID     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	Status    UserStatus `json:"status"`
	LastSeen  time.Time  `json:"last_seen"`
	CreatedAt time.Time  `json:"created_at"`

	// PasswordHash is never serialized; only the auth flow reads it.
	PasswordHash string `json:"-"`
}

// DisplayName is what other participants see in conversation lists and
// incoming call notifications.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserStats aggregates per-user activity counters.
type UserStats struct {
	MessageCount      int64 `json:"message_count"`
	ConversationCount int64 `json:"conversation_count"`
}
