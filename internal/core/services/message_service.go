package services

import (
	"context"
	"fmt"
	"time"

	"chatwire/internal/core/domain"
	"chatwire/internal/core/ports"
	"chatwire/pkg/utils"
)

type messageService struct {
	conversations ports.ConversationRepository
	messages      ports.MessageRepository
	users         ports.UserRepository
}

func NewMessageService(
	conversations ports.ConversationRepository,
	messages ports.MessageRepository,
	users ports.UserRepository,
) ports.MessageService {
	return &messageService{
		conversations: conversations,
		messages:      messages,
		users:         users,
	}
}

func (s *messageService) ListConversations(ctx context.Context, userID domain.UserID) ([]*domain.ConversationSummary, error) {
	return s.conversations.ListForUser(ctx, userID)
}

func (s *messageService) GetOrCreateDirectConversation(ctx context.Context, userID, otherID domain.UserID) (*domain.Conversation, error) {
	if userID == otherID {
		return nil, domain.ErrSelfTarget
	}

	// Make sure the other side exists before creating anything.
	if _, err := s.users.GetByID(ctx, otherID); err != nil {
		return nil, err
	}

	conv, err := s.conversations.FindDirect(ctx, userID, otherID)
	if err == nil {
		return conv, nil
	}
	if err != domain.ErrConversationNotFound {
		return nil, err
	}

	now := time.Now().UTC()
	conv = &domain.Conversation{
		ID:        domain.ConversationID(utils.GenerateConversationID()),
		Type:      domain.ConversationDirect,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.Create(ctx, conv, []domain.UserID{userID, otherID}); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

func (s *messageService) ListMessages(ctx context.Context, convID domain.ConversationID, userID domain.UserID, limit, offset int) ([]*domain.Message, error) {
	if err := s.requireParticipant(ctx, convID, userID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	msgs, err := s.messages.ListByConversation(ctx, convID, limit, offset)
	if err != nil {
		return nil, err
	}

	// Reading a page of history marks the conversation read, matching the
	// unread counters in the conversation list.
	if err := s.messages.MarkRead(ctx, convID, userID); err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}

	return msgs, nil
}

func (s *messageService) SendMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if err := s.requireParticipant(ctx, msg.ConversationID, msg.SenderID); err != nil {
		return nil, err
	}

	if msg.Type == "" {
		msg.Type = domain.MessageText
	}
	if !domain.ValidMessageType(msg.Type) {
		return nil, domain.ErrInvalidStatus
	}

	msg.ID = domain.MessageID(utils.GenerateMessageID())
	msg.CreatedAt = time.Now().UTC()

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	if err := s.conversations.Touch(ctx, msg.ConversationID); err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}

	sender, err := s.users.GetByID(ctx, msg.SenderID)
	if err == nil {
		msg.Sender = sender
	}
	return msg, nil
}

func (s *messageService) EditMessage(ctx context.Context, id domain.MessageID, userID domain.UserID, content string) (*domain.Message, error) {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, domain.ErrNotSender
	}

	now := time.Now().UTC()
	msg.Content = content
	msg.IsEdited = true
	msg.EditedAt = &now

	if err := s.messages.Update(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *messageService) DeleteMessage(ctx context.Context, id domain.MessageID, userID domain.UserID) error {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if msg.SenderID != userID {
		return domain.ErrNotSender
	}
	return s.messages.Delete(ctx, id)
}

func (s *messageService) MarkConversationRead(ctx context.Context, convID domain.ConversationID, userID domain.UserID) error {
	if err := s.requireParticipant(ctx, convID, userID); err != nil {
		return err
	}
	return s.messages.MarkRead(ctx, convID, userID)
}

func (s *messageService) requireParticipant(ctx context.Context, convID domain.ConversationID, userID domain.UserID) error {
	ok, err := s.conversations.IsParticipant(ctx, convID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotParticipant
	}
	return nil
}
