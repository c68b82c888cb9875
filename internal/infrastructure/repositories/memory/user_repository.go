package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"chatwire/internal/core/domain"
	"chatwire/internal/core/ports"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[user.Username]; exists {
		return domain.ErrUsernameTaken
	}

	stored := *user
	s.users[user.ID] = &stored
	s.byUsername[user.Username] = user.ID
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	user := s.userCopy(id)
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return s.userCopy(id), nil
}

func (r *UserRepository) List(ctx context.Context, filter ports.UserListFilter) ([]*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.User
	search := strings.ToLower(filter.Search)
	for _, user := range s.users {
		if user.ID == filter.ExcludeID {
			continue
		}
		if search != "" && !matchesSearch(user, search) {
			continue
		}
		copied := *user
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Username < matched[j].Username
	})
	return paginate(matched, filter.Limit, filter.Offset), nil
}

func (r *UserRepository) ListOnline(ctx context.Context, excludeID domain.UserID) ([]*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var online []*domain.User
	for _, user := range s.users {
		if user.ID == excludeID || user.Status != domain.StatusOnline {
			continue
		}
		copied := *user
		online = append(online, &copied)
	}

	sort.Slice(online, func(i, j int) bool {
		return online[i].Username < online[j].Username
	})
	return online, nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id domain.UserID, status domain.UserStatus) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Status = status
	user.LastSeen = time.Now().UTC()
	copied := *user
	return &copied, nil
}

func (r *UserRepository) Stats(ctx context.Context, id domain.UserID) (*domain.UserStats, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[id]; !ok {
		return nil, domain.ErrUserNotFound
	}

	stats := &domain.UserStats{}
	for _, msg := range s.messages {
		if msg.SenderID == id {
			stats.MessageCount++
		}
	}
	for convID := range s.conversations {
		if s.isParticipant(convID, id) {
			stats.ConversationCount++
		}
	}
	return stats, nil
}

func matchesSearch(user *domain.User, search string) bool {
	return strings.Contains(strings.ToLower(user.Username), search) ||
		strings.Contains(strings.ToLower(user.FirstName), search) ||
		strings.Contains(strings.ToLower(user.LastName), search)
}
