package memory

import (
	"sync"

	"chatwire/internal/core/domain"
)

// Store holds every entity in process memory under a single lock. Used when
// no database is configured and throughout the test suite. The per-entity
// repositories are views over the same store so that read paths can join
// across entities the way the SQL layer does.
type Store struct {
	mu sync.RWMutex

	users      map[domain.UserID]*domain.User
	byUsername map[string]domain.UserID

	conversations map[domain.ConversationID]*domain.Conversation
	participants  map[domain.ConversationID][]domain.UserID

	messages map[domain.MessageID]*domain.Message
	// reads tracks which users have read which messages.
	reads map[domain.MessageID]map[domain.UserID]struct{}

	calls map[domain.CallID]*domain.Call
}

func NewStore() *Store {
	return &Store{
		users:         make(map[domain.UserID]*domain.User),
		byUsername:    make(map[string]domain.UserID),
		conversations: make(map[domain.ConversationID]*domain.Conversation),
		participants:  make(map[domain.ConversationID][]domain.UserID),
		messages:      make(map[domain.MessageID]*domain.Message),
		reads:         make(map[domain.MessageID]map[domain.UserID]struct{}),
		calls:         make(map[domain.CallID]*domain.Call),
	}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

func (s *Store) Conversations() *ConversationRepository {
	return &ConversationRepository{store: s}
}

func (s *Store) Messages() *MessageRepository {
	return &MessageRepository{store: s}
}

func (s *Store) Calls() *CallRepository {
	return &CallRepository{store: s}
}

// userCopy returns a detached copy, nil when absent. Caller holds s.mu.
func (s *Store) userCopy(id domain.UserID) *domain.User {
	user, ok := s.users[id]
	if !ok {
		return nil
	}
	copied := *user
	return &copied
}

// isParticipant reports membership without taking the lock. Caller holds
// s.mu.
func (s *Store) isParticipant(convID domain.ConversationID, userID domain.UserID) bool {
	for _, p := range s.participants[convID] {
		if p == userID {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
