package services

import (
	"context"
	"testing"

	"chatwire/internal/core/domain"
	"chatwire/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCallService(store *memory.Store) *callService {
	return NewCallService(store.Calls(), store.Users()).(*callService)
}

func TestCreateCall_SelfCallRejected(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "alice")
	svc := newCallService(store)

	_, err := svc.CreateCall(context.Background(), "u1", "u1", domain.CallAudio)
	assert.ErrorIs(t, err, domain.ErrSelfTarget)
}

func TestCreateCall_UnknownReceiver(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "alice")
	svc := newCallService(store)

	_, err := svc.CreateCall(context.Background(), "u1", "nobody", domain.CallVideo)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCreateCall_InvalidTypeRejected(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "alice")
	seedUser(t, store, "u2", "bob")
	svc := newCallService(store)

	_, err := svc.CreateCall(context.Background(), "u1", "u2", "telepathy")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestCreateCall_StartsInitiatedWithParties(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "alice")
	seedUser(t, store, "u2", "bob")
	svc := newCallService(store)

	call, err := svc.CreateCall(context.Background(), "u1", "u2", domain.CallVideo)
	require.NoError(t, err)
	assert.Equal(t, domain.CallInitiated, call.Status)
	assert.Nil(t, call.StartTime)
	require.NotNil(t, call.Caller)
	require.NotNil(t, call.Receiver)
	assert.Equal(t, "alice", call.Caller.Username)
	assert.Equal(t, "bob", call.Receiver.Username)
}

func TestUpdateStatus_AnsweredStampsStartTimeOnce(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "alice")
	seedUser(t, store, "u2", "bob")
	svc := newCallService(store)

	call, err := svc.CreateCall(context.Background(), "u1", "u2", domain.CallAudio)
	require.NoError(t, err)

	answered, err := svc.UpdateStatus(context.Background(), call.ID, "u2", domain.CallAnswered)
	require.NoError(t, err)
	require.NotNil(t, answered.StartTime)
	started := *answered.StartTime

	again, err := svc.UpdateStatus(context.Background(), call.ID, "u2", domain.CallAnswered)
	require.NoError(t, err)
	assert.Equal(t, started, *again.StartTime)
}

func TestUpdateStatus_EndedComputesDuration(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "alice")
	seedUser(t, store, "u2", "bob")
	svc := newCallService(store)

	call, err := svc.CreateCall(context.Background(), "u1", "u2", domain.CallAudio)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), call.ID, "u2", domain.CallAnswered)
	require.NoError(t, err)

	ended, err := svc.UpdateStatus(context.Background(), call.ID, "u1", domain.CallEnded)
	require.NoError(t, err)
	require.NotNil(t, ended.EndTime)
	assert.GreaterOrEqual(t, ended.Duration, int64(0))
	assert.Equal(t, int64(ended.EndTime.Sub(*ended.StartTime).Seconds()), ended.Duration)
}

func TestUpdateStatus_RejectedLeavesNoTimes(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "alice")
	seedUser(t, store, "u2", "bob")
	svc := newCallService(store)

	call, err := svc.CreateCall(context.Background(), "u1", "u2", domain.CallAudio)
	require.NoError(t, err)

	rejected, err := svc.UpdateStatus(context.Background(), call.ID, "u2", domain.CallRejected)
	require.NoError(t, err)
	assert.Nil(t, rejected.StartTime)
	assert.Nil(t, rejected.EndTime)
	assert.Zero(t, rejected.Duration)
}

func TestUpdateStatus_InitiatedNotSettable(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "alice")
	seedUser(t, store, "u2", "bob")
	svc := newCallService(store)

	call, err := svc.CreateCall(context.Background(), "u1", "u2", domain.CallAudio)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), call.ID, "u1", domain.CallInitiated)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestGetCall_NonParticipantSeesNotFound(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "alice")
	seedUser(t, store, "u2", "bob")
	seedUser(t, store, "u3", "mallory")
	svc := newCallService(store)

	call, err := svc.CreateCall(context.Background(), "u1", "u2", domain.CallAudio)
	require.NoError(t, err)

	_, err = svc.GetCall(context.Background(), call.ID, "u3")
	assert.ErrorIs(t, err, domain.ErrCallNotFound)

	_, err = svc.UpdateStatus(context.Background(), call.ID, "u3", domain.CallEnded)
	assert.ErrorIs(t, err, domain.ErrCallNotFound)

	err = svc.DeleteCall(context.Background(), call.ID, "u3")
	assert.ErrorIs(t, err, domain.ErrCallNotFound)
}

func TestHistory_NewestFirst(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "alice")
	seedUser(t, store, "u2", "bob")
	seedUser(t, store, "u3", "carol")
	svc := newCallService(store)

	first, err := svc.CreateCall(context.Background(), "u1", "u2", domain.CallAudio)
	require.NoError(t, err)
	second, err := svc.CreateCall(context.Background(), "u3", "u1", domain.CallVideo)
	require.NoError(t, err)

	history, err := svc.History(context.Background(), "u1", 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	// u2 only took part in the first call.
	history, err = svc.History(context.Background(), "u2", 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, first.ID, history[0].ID)
}

func TestStats_CountsAnsweredCallsOnly(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "alice")
	seedUser(t, store, "u2", "bob")
	svc := newCallService(store)

	answered, err := svc.CreateCall(context.Background(), "u1", "u2", domain.CallAudio)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), answered.ID, "u2", domain.CallAnswered)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), answered.ID, "u1", domain.CallEnded)
	require.NoError(t, err)

	missed, err := svc.CreateCall(context.Background(), "u1", "u2", domain.CallVideo)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), missed.ID, "u2", domain.CallMissed)
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalCalls)
	require.Len(t, stats.CallsByType, 2)
}
