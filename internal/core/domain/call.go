package domain

import "time"

type CallID string

type CallType string

const (
	CallAudio CallType = "audio"
	CallVideo CallType = "video"
)

// ValidCallType reports whether t is an accepted call type.
func ValidCallType(t CallType) bool {
	return t == CallAudio || t == CallVideo
}

type CallStatus string

const (
	CallInitiated CallStatus = "initiated"
	CallRinging   CallStatus = "ringing"
	CallAnswered  CallStatus = "answered"
	CallEnded     CallStatus = "ended"
	CallMissed    CallStatus = "missed"
	CallRejected  CallStatus = "rejected"
)

// ValidCallTransition reports whether s is a status a client may set on an
// existing call record. "initiated" is only ever set on creation.
func ValidCallTransition(s CallStatus) bool {
	switch s {
	case CallRinging, CallAnswered, CallEnded, CallMissed, CallRejected:
		return true
	}
	return false
}

// Call is the persisted call record. The relay itself holds no call state;
// status transitions arrive through the REST layer after signaling.
type Call struct {
	ID         CallID     `json:"id"`
	CallerID   UserID     `json:"caller_id"`
	ReceiverID UserID     `json:"receiver_id"`
	Type       CallType   `json:"call_type"`
	Status     CallStatus `json:"status"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Duration   int64      `json:"duration"` // seconds, answered calls only
	CreatedAt  time.Time  `json:"created_at"`

	// Caller and Receiver are populated by read paths that join user data.
	Caller   *User `json:"caller,omitempty"`
	Receiver *User `json:"receiver,omitempty"`
}

// IsParticipant reports whether userID is either side of the call.
func (c *Call) IsParticipant(userID UserID) bool {
	return c.CallerID == userID || c.ReceiverID == userID
}

// CallStats aggregates a user's call history.
type CallStats struct {
	TotalCalls      int64           `json:"total_calls"`
	SuccessfulCalls int64           `json:"successful_calls"`
	TotalDuration   int64           `json:"total_duration"`
	CallsByType     []CallTypeStats `json:"calls_by_type"`
}

type CallTypeStats struct {
	Type          CallType `json:"type"`
	Count         int64    `json:"count"`
	TotalDuration int64    `json:"total_duration"`
}
