package ports

import (
	"context"

	"chatwire/internal/core/domain"
)

type UserService interface {
	GetUser(ctx context.Context, id domain.UserID) (*domain.User, error)
	ListUsers(ctx context.Context, filter UserListFilter) ([]*domain.User, error)
	SearchUsers(ctx context.Context, requesterID domain.UserID, query string, limit int) ([]*domain.User, error)
	ListOnlineUsers(ctx context.Context, excludeID domain.UserID) ([]*domain.User, error)
	GetStatus(ctx context.Context, id domain.UserID) (domain.UserStatus, *domain.User, error)
	UpdateStatus(ctx context.Context, id domain.UserID, status domain.UserStatus) (*domain.User, error)
	GetStats(ctx context.Context, id domain.UserID) (*domain.UserStats, error)
}

type MessageService interface {
	ListConversations(ctx context.Context, userID domain.UserID) ([]*domain.ConversationSummary, error)
	// GetOrCreateDirectConversation finds the direct conversation between the
	// two users, creating it with both as participants when absent.
	GetOrCreateDirectConversation(ctx context.Context, userID, otherID domain.UserID) (*domain.Conversation, error)
	// ListMessages returns a page of messages oldest-first and marks the
	// conversation read for userID.
	ListMessages(ctx context.Context, convID domain.ConversationID, userID domain.UserID, limit, offset int) ([]*domain.Message, error)
	SendMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	EditMessage(ctx context.Context, id domain.MessageID, userID domain.UserID, content string) (*domain.Message, error)
	DeleteMessage(ctx context.Context, id domain.MessageID, userID domain.UserID) error
	MarkConversationRead(ctx context.Context, convID domain.ConversationID, userID domain.UserID) error
}

type CallService interface {
	CreateCall(ctx context.Context, callerID, receiverID domain.UserID, callType domain.CallType) (*domain.Call, error)
	// UpdateStatus applies a status transition: "answered" stamps the start
	// time, "ended" stamps the end time and computes the duration.
	UpdateStatus(ctx context.Context, id domain.CallID, userID domain.UserID, status domain.CallStatus) (*domain.Call, error)
	GetCall(ctx context.Context, id domain.CallID, userID domain.UserID) (*domain.Call, error)
	History(ctx context.Context, userID domain.UserID, limit, offset int) ([]*domain.Call, error)
	Stats(ctx context.Context, userID domain.UserID) (*domain.CallStats, error)
	DeleteCall(ctx context.Context, id domain.CallID, userID domain.UserID) error
}
