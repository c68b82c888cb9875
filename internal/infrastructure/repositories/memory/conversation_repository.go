package memory

import (
	"context"
	"sort"
	"time"

	"chatwire/internal/core/domain"
)

type ConversationRepository struct {
	store *Store
}

func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation, participants []domain.UserID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *conv
	s.conversations[conv.ID] = &stored
	s.participants[conv.ID] = append([]domain.UserID(nil), participants...)
	return nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	copied := *conv
	return &copied, nil
}

func (r *ConversationRepository) FindDirect(ctx context.Context, a, b domain.UserID) (*domain.Conversation, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, conv := range s.conversations {
		if conv.Type != domain.ConversationDirect {
			continue
		}
		if s.isParticipant(id, a) && s.isParticipant(id, b) {
			copied := *conv
			return &copied, nil
		}
	}
	return nil, domain.ErrConversationNotFound
}

func (r *ConversationRepository) ListForUser(ctx context.Context, userID domain.UserID) ([]*domain.ConversationSummary, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summaries []*domain.ConversationSummary
	for id, conv := range s.conversations {
		if !s.isParticipant(id, userID) {
			continue
		}

		summary := &domain.ConversationSummary{Conversation: *conv}

		var last *domain.Message
		for _, msg := range s.messages {
			if msg.ConversationID != id {
				continue
			}
			if last == nil || msg.CreatedAt.After(last.CreatedAt) {
				last = msg
			}
			if msg.SenderID != userID {
				if _, read := s.reads[msg.ID][userID]; !read {
					summary.UnreadCount++
				}
			}
		}
		if last != nil {
			summary.LastMessage = last.Content
			t := last.CreatedAt
			summary.LastMessageTime = &t
		}

		if conv.Type == domain.ConversationDirect {
			for _, p := range s.participants[id] {
				if p != userID {
					summary.Participant = s.userCopy(p)
					break
				}
			}
		}
		summaries = append(summaries, summary)
	}

	// Most recently active first, conversations without messages last.
	sort.Slice(summaries, func(i, j int) bool {
		ti, tj := summaries[i].LastMessageTime, summaries[j].LastMessageTime
		switch {
		case ti == nil && tj == nil:
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
	return summaries, nil
}

func (r *ConversationRepository) IsParticipant(ctx context.Context, id domain.ConversationID, userID domain.UserID) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.conversations[id]; !ok {
		return false, domain.ErrConversationNotFound
	}
	return s.isParticipant(id, userID), nil
}

func (r *ConversationRepository) Touch(ctx context.Context, id domain.ConversationID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return domain.ErrConversationNotFound
	}
	conv.UpdatedAt = time.Now().UTC()
	return nil
}
