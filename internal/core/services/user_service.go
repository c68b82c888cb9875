package services

import (
	"context"
	"strings"
	"time"

	"chatwire/internal/core/domain"
	"chatwire/internal/core/ports"
	"chatwire/pkg/cache"
)

type userService struct {
	users ports.UserRepository

	// profileCache holds recently fetched user rows; profiles change rarely
	// and are re-read on every incoming call notification.
	profileCache *cache.Cache
}

func NewUserService(users ports.UserRepository) ports.UserService {
	return &userService{
		users:        users,
		profileCache: cache.New(30 * time.Second),
	}
}

func (s *userService) GetUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	if cached, ok := s.profileCache.Get(string(id)); ok {
		return cached.(*domain.User), nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.profileCache.Set(string(id), user)
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, filter ports.UserListFilter) ([]*domain.User, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.users.List(ctx, filter)
}

func (s *userService) SearchUsers(ctx context.Context, requesterID domain.UserID, query string, limit int) ([]*domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.User{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	return s.users.List(ctx, ports.UserListFilter{
		ExcludeID: requesterID,
		Search:    query,
		Limit:     limit,
	})
}

func (s *userService) ListOnlineUsers(ctx context.Context, excludeID domain.UserID) ([]*domain.User, error) {
	return s.users.ListOnline(ctx, excludeID)
}

func (s *userService) GetStatus(ctx context.Context, id domain.UserID) (domain.UserStatus, *domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return user.Status, user, nil
}

func (s *userService) UpdateStatus(ctx context.Context, id domain.UserID, status domain.UserStatus) (*domain.User, error) {
	if !domain.ValidUserStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	user, err := s.users.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.profileCache.Delete(string(id))
	return user, nil
}

func (s *userService) GetStats(ctx context.Context, id domain.UserID) (*domain.UserStats, error) {
	return s.users.Stats(ctx, id)
}
