package memory

import (
	"context"
	"sort"

	"chatwire/internal/core/domain"
)

type CallRepository struct {
	store *Store
}

func (r *CallRepository) Create(ctx context.Context, call *domain.Call) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *call
	stored.Caller = nil
	stored.Receiver = nil
	s.calls[call.ID] = &stored
	return nil
}

func (r *CallRepository) GetByID(ctx context.Context, id domain.CallID) (*domain.Call, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	call, ok := s.calls[id]
	if !ok {
		return nil, domain.ErrCallNotFound
	}
	return s.callCopy(call), nil
}

func (r *CallRepository) History(ctx context.Context, userID domain.UserID, limit, offset int) ([]*domain.Call, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var calls []*domain.Call
	for _, call := range s.calls {
		if call.CallerID != userID && call.ReceiverID != userID {
			continue
		}
		calls = append(calls, s.callCopy(call))
	}

	sort.Slice(calls, func(i, j int) bool {
		return calls[i].CreatedAt.After(calls[j].CreatedAt)
	})
	return paginate(calls, limit, offset), nil
}

func (r *CallRepository) Stats(ctx context.Context, userID domain.UserID) (*domain.CallStats, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.CallStats{}
	byType := make(map[domain.CallType]*domain.CallTypeStats)
	for _, call := range s.calls {
		if call.CallerID != userID && call.ReceiverID != userID {
			continue
		}
		stats.TotalCalls++
		if call.Status == domain.CallAnswered || call.Status == domain.CallEnded {
			if call.Duration > 0 {
				stats.SuccessfulCalls++
				stats.TotalDuration += call.Duration
			}
		}

		ts, ok := byType[call.Type]
		if !ok {
			ts = &domain.CallTypeStats{Type: call.Type}
			byType[call.Type] = ts
		}
		ts.Count++
		ts.TotalDuration += call.Duration
	}

	for _, ts := range byType {
		stats.CallsByType = append(stats.CallsByType, *ts)
	}
	sort.Slice(stats.CallsByType, func(i, j int) bool {
		return stats.CallsByType[i].Type < stats.CallsByType[j].Type
	})
	return stats, nil
}

func (r *CallRepository) Update(ctx context.Context, call *domain.Call) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.calls[call.ID]; !ok {
		return domain.ErrCallNotFound
	}
	stored := *call
	stored.Caller = nil
	stored.Receiver = nil
	s.calls[call.ID] = &stored
	return nil
}

func (r *CallRepository) Delete(ctx context.Context, id domain.CallID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.calls[id]; !ok {
		return domain.ErrCallNotFound
	}
	delete(s.calls, id)
	return nil
}

// callCopy returns a detached copy with joined user data. Caller holds s.mu.
func (s *Store) callCopy(call *domain.Call) *domain.Call {
	copied := *call
	copied.Caller = s.userCopy(call.CallerID)
	copied.Receiver = s.userCopy(call.ReceiverID)
	return &copied
}
