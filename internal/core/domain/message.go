package domain

import "time"

type MessageID string

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
	MessageAudio MessageType = "audio"
	MessageVideo MessageType = "video"
)

// ValidMessageType reports whether t is an accepted message type.
func ValidMessageType(t MessageType) bool {
	switch t {
	case MessageText, MessageImage, MessageFile, MessageAudio, MessageVideo:
		return true
	}
	return false
}

type Message struct {
	ID             MessageID      `json:"id"`
	ConversationID ConversationID `json:"conversation_id"`
	SenderID       UserID         `json:"sender_id"`
	Content        string         `json:"content"`
	Type           MessageType    `json:"message_type"`
	FileURL        string         `json:"file_url,omitempty"`
	FileName       string         `json:"file_name,omitempty"`
	FileSize       int64          `json:"file_size,omitempty"`
	IsEdited       bool           `json:"is_edited"`
	EditedAt       *time.Time     `json:"edited_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`

	// Sender is populated by read paths that join user data.
	Sender *User `json:"sender,omitempty"`
}
