package memory

import (
	"context"
	"sort"

	"chatwire/internal/core/domain"
)

type MessageRepository struct {
	store *Store
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *msg
	stored.Sender = nil
	s.messages[msg.ID] = &stored
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id domain.MessageID) (*domain.Message, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	copied := *msg
	copied.Sender = s.userCopy(msg.SenderID)
	return &copied, nil
}

func (r *MessageRepository) ListByConversation(ctx context.Context, convID domain.ConversationID, limit, offset int) ([]*domain.Message, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var msgs []*domain.Message
	for _, msg := range s.messages {
		if msg.ConversationID != convID {
			continue
		}
		copied := *msg
		copied.Sender = s.userCopy(msg.SenderID)
		msgs = append(msgs, &copied)
	}

	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return paginate(msgs, limit, offset), nil
}

func (r *MessageRepository) Update(ctx context.Context, msg *domain.Message) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[msg.ID]; !ok {
		return domain.ErrMessageNotFound
	}
	stored := *msg
	stored.Sender = nil
	s.messages[msg.ID] = &stored
	return nil
}

func (r *MessageRepository) Delete(ctx context.Context, id domain.MessageID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[id]; !ok {
		return domain.ErrMessageNotFound
	}
	delete(s.messages, id)
	delete(s.reads, id)
	return nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, convID domain.ConversationID, userID domain.UserID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, msg := range s.messages {
		if msg.ConversationID != convID || msg.SenderID == userID {
			continue
		}
		readers, ok := s.reads[id]
		if !ok {
			readers = make(map[domain.UserID]struct{})
			s.reads[id] = readers
		}
		readers[userID] = struct{}{}
	}
	return nil
}
