package ports

import (
	"context"

	"chatwire/internal/core/domain"
)

// UserListFilter narrows the user listing query.
type UserListFilter struct {
	ExcludeID domain.UserID
	Search    string
	Limit     int
	Offset    int
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, filter UserListFilter) ([]*domain.User, error)
	ListOnline(ctx context.Context, excludeID domain.UserID) ([]*domain.User, error)
	UpdateStatus(ctx context.Context, id domain.UserID, status domain.UserStatus) (*domain.User, error)
	Stats(ctx context.Context, id domain.UserID) (*domain.UserStats, error)
}

type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation, participants []domain.UserID) error
	GetByID(ctx context.Context, id domain.ConversationID) (*domain.Conversation, error)
	// FindDirect returns the existing direct conversation between two users,
	// or domain.ErrConversationNotFound.
	FindDirect(ctx context.Context, a, b domain.UserID) (*domain.Conversation, error)
	ListForUser(ctx context.Context, userID domain.UserID) ([]*domain.ConversationSummary, error)
	IsParticipant(ctx context.Context, id domain.ConversationID, userID domain.UserID) (bool, error)
	Touch(ctx context.Context, id domain.ConversationID) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id domain.MessageID) (*domain.Message, error)
	// ListByConversation returns messages oldest-first with joined sender data.
	ListByConversation(ctx context.Context, convID domain.ConversationID, limit, offset int) ([]*domain.Message, error)
	Update(ctx context.Context, msg *domain.Message) error
	Delete(ctx context.Context, id domain.MessageID) error
	// MarkRead records read receipts for every message in the conversation
	// not sent by userID and not already read by them.
	MarkRead(ctx context.Context, convID domain.ConversationID, userID domain.UserID) error
}

type CallRepository interface {
	Create(ctx context.Context, call *domain.Call) error
	GetByID(ctx context.Context, id domain.CallID) (*domain.Call, error)
	// History returns calls where userID is caller or receiver, newest first,
	// with joined caller/receiver data.
	History(ctx context.Context, userID domain.UserID, limit, offset int) ([]*domain.Call, error)
	Stats(ctx context.Context, userID domain.UserID) (*domain.CallStats, error)
	Update(ctx context.Context, call *domain.Call) error
	Delete(ctx context.Context, id domain.CallID) error
}
