package services

import (
	"context"
	"fmt"
	"time"

	"chatwire/internal/core/domain"
	"chatwire/internal/core/ports"
	"chatwire/pkg/utils"
)

type callService struct {
	calls ports.CallRepository
	users ports.UserRepository
}

func NewCallService(calls ports.CallRepository, users ports.UserRepository) ports.CallService {
	return &callService{
		calls: calls,
		users: users,
	}
}

func (s *callService) CreateCall(ctx context.Context, callerID, receiverID domain.UserID, callType domain.CallType) (*domain.Call, error) {
	if callerID == receiverID {
		return nil, domain.ErrSelfTarget
	}
	if !domain.ValidCallType(callType) {
		return nil, domain.ErrInvalidStatus
	}

	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	call := &domain.Call{
		ID:         domain.CallID(utils.GenerateCallID()),
		CallerID:   callerID,
		ReceiverID: receiverID,
		Type:       callType,
		Status:     domain.CallInitiated,
		CreatedAt:  time.Now().UTC(),
		Caller:     caller,
		Receiver:   receiver,
	}
	if err := s.calls.Create(ctx, call); err != nil {
		return nil, fmt.Errorf("create call: %w", err)
	}
	return call, nil
}

func (s *callService) UpdateStatus(ctx context.Context, id domain.CallID, userID domain.UserID, status domain.CallStatus) (*domain.Call, error) {
	if !domain.ValidCallTransition(status) {
		return nil, domain.ErrInvalidStatus
	}

	call, err := s.calls.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !call.IsParticipant(userID) {
		return nil, domain.ErrCallNotFound
	}

	now := time.Now().UTC()
	call.Status = status

	// Answering stamps the start time once; ending an answered call stamps
	// the end time and derives the duration from the two.
	if status == domain.CallAnswered && call.StartTime == nil {
		call.StartTime = &now
	}
	if status == domain.CallEnded && call.StartTime != nil && call.EndTime == nil {
		call.EndTime = &now
		call.Duration = int64(now.Sub(*call.StartTime) / time.Second)
	}

	if err := s.calls.Update(ctx, call); err != nil {
		return nil, err
	}
	return call, nil
}

func (s *callService) GetCall(ctx context.Context, id domain.CallID, userID domain.UserID) (*domain.Call, error) {
	call, err := s.calls.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !call.IsParticipant(userID) {
		// A non-participant gets the same error as a missing call.
		return nil, domain.ErrCallNotFound
	}
	return call, nil
}

func (s *callService) History(ctx context.Context, userID domain.UserID, limit, offset int) ([]*domain.Call, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.calls.History(ctx, userID, limit, offset)
}

func (s *callService) Stats(ctx context.Context, userID domain.UserID) (*domain.CallStats, error) {
	return s.calls.Stats(ctx, userID)
}

func (s *callService) DeleteCall(ctx context.Context, id domain.CallID, userID domain.UserID) error {
	call, err := s.calls.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !call.IsParticipant(userID) {
		return domain.ErrCallNotFound
	}
	return s.calls.Delete(ctx, id)
}
