package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateConnectionID generates a unique relay connection ID.
func GenerateConnectionID() string {
	return GenerateID("conn")
}

// GenerateConversationID generates a unique conversation ID.
func GenerateConversationID() string {
	return GenerateID("conv")
}

// GenerateMessageID generates a unique message ID.
func GenerateMessageID() string {
	return GenerateID("msg")
}

// GenerateCallID generates a unique call ID.
func GenerateCallID() string {
	return GenerateID("call")
}

// GenerateUserID generates a unique user ID.
func GenerateUserID() string {
	return GenerateID("user")
}

// GenerateID generates a prefixed unique ID.
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.New().String())
}

// GenerateRequestID generates a unique request ID.
func GenerateRequestID() string {
	timestamp := time.Now().UnixNano()
	b := make([]byte, 4)
	rand.Read(b)
	return fmt.Sprintf("req_%d_%s", timestamp, hex.EncodeToString(b))
}
