package relay

import (
	"encoding/json"
	"time"

	"chatwire/internal/core/domain"
)

// Inbound event types.
const (
	EventAuthenticate = "authenticate"
	EventJoinRoom     = "join_room"
	EventSendMessage  = "send_message"
	EventTyping       = "typing"
	EventStopTyping   = "stop_typing"
	EventCallUser     = "call_user"
	EventCallAccepted = "call_accepted"
	EventCallRejected = "call_rejected"
	EventCallEnded    = "call_ended"
	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "ice_candidate"
)

// Outbound event types.
const (
	EventAuthenticated  = "authenticated"
	EventAuthError      = "auth_error"
	EventReceiveMessage = "receive_message"
	EventUserTyping     = "user_typing"
	EventUserStopTyping = "user_stop_typing"
	EventIncomingCall   = "incoming_call"
	EventError          = "error"
)

// Envelope is the wire format in both directions: a type tag and a payload
// whose shape depends on the type.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ICEServer mirrors the TURN/STUN entries handed to clients on a
// successful authenticate, matching webrtc.ICEServer's JSON shape.
type ICEServer struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

// Inbound payloads.

type AuthenticatePayload struct {
	Token string `json:"token"`
}

type JoinRoomPayload struct {
	RoomID string `json:"room_id"`
}

type SendMessagePayload struct {
	RoomID string `json:"room_id"`
	Text   string `json:"text"`
}

type TypingPayload struct {
	RoomID string `json:"room_id"`
}

type CallUserPayload struct {
	TargetUserID domain.UserID   `json:"target_user_id"`
	CallerName   string          `json:"caller_name"`
	CallType     domain.CallType `json:"call_type"`
}

type CallAnswerbackPayload struct {
	CallerID domain.UserID `json:"caller_id"`
}

type CallEndedPayload struct {
	TargetUserID domain.UserID `json:"target_user_id"`
}

type OfferPayload struct {
	TargetUserID domain.UserID   `json:"target_user_id"`
	Offer        json.RawMessage `json:"offer"`
}

type AnswerPayload struct {
	CallerID domain.UserID   `json:"caller_id"`
	Answer   json.RawMessage `json:"answer"`
}

type ICECandidatePayload struct {
	TargetUserID domain.UserID   `json:"target_user_id"`
	Candidate    json.RawMessage `json:"candidate"`
}

// Outbound payloads.

type AuthenticatedPayload struct {
	UserID     domain.UserID `json:"user_id"`
	ICEServers []ICEServer   `json:"ice_servers,omitempty"`
}

type AuthErrorPayload struct {
	Message string `json:"message"`
}

type ReceiveMessagePayload struct {
	RoomID    string        `json:"room_id"`
	SenderID  domain.UserID `json:"sender_id,omitempty"`
	Text      string        `json:"text"`
	Timestamp time.Time     `json:"timestamp"`
}

type UserTypingPayload struct {
	UserID domain.UserID `json:"user_id"`
	RoomID string        `json:"room_id"`
}

type IncomingCallPayload struct {
	CallerID   domain.UserID   `json:"caller_id"`
	CallerName string          `json:"caller_name"`
	CallType   domain.CallType `json:"call_type"`
}

type CallAcceptedPayload struct {
	TargetUserID domain.UserID `json:"target_user_id"`
}

type CallRejectedPayload struct {
	TargetUserID domain.UserID `json:"target_user_id"`
}

type CallEndedNotifyPayload struct {
	UserID domain.UserID `json:"user_id"`
}

type OfferNotifyPayload struct {
	Offer    json.RawMessage `json:"offer"`
	CallerID domain.UserID   `json:"caller_id"`
}

type AnswerNotifyPayload struct {
	Answer       json.RawMessage `json:"answer"`
	TargetUserID domain.UserID   `json:"target_user_id"`
}

type ICECandidateNotifyPayload struct {
	Candidate json.RawMessage `json:"candidate"`
	UserID    domain.UserID   `json:"user_id"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// encodeEvent marshals an outbound envelope. Marshal failures are
// programming errors on our own payload types, so the error is swallowed
// into an empty frame rather than propagated per-send.
func encodeEvent(eventType string, payload interface{}) []byte {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	data, err := json.Marshal(Envelope{Type: eventType, Payload: raw})
	if err != nil {
		return nil
	}
	return data
}
