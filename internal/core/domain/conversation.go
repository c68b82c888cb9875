package domain

import "time"

type ConversationID string

type ConversationType string

const (
	ConversationDirect ConversationType = "direct"
	ConversationGroup  ConversationType = "group"
)

type Conversation struct {
	ID        ConversationID   `json:"id"`
	Name      string           `json:"name,omitempty"`
	Type      ConversationType `json:"type"`
	CreatedBy UserID           `json:"created_by"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// ConversationSummary is a conversation enriched with the preview data the
// conversation list endpoint returns: last message, unread count and, for
// direct conversations, the other participant.
type ConversationSummary struct {
	Conversation
	LastMessage     string     `json:"last_message,omitempty"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`
	UnreadCount     int        `json:"unread_count"`
	Participant     *User      `json:"participant,omitempty"`
}
