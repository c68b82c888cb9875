package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chatwire/internal/core/domain"
	"chatwire/internal/core/services"
	"chatwire/internal/infrastructure/monitoring"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Server, services.AuthService) {
	t.Helper()

	auth := services.NewAuthService("test-secret", time.Hour, time.Hour)
	collector := monitoring.NewRelayCollector(prometheus.NewRegistry())
	return NewServer(auth, collector, zap.NewNop().Sugar(), Options{
		ICEServers: []ICEServer{{URLs: []string{"stun:stun.example.org:3478"}}},
	}), auth
}

// connect registers an unauthenticated client with a buffered send channel
// so handlers can run without a live websocket.
func connect(s *Server, id string) *client {
	c := newClient(ConnectionID(id), nil, 16)
	s.register(c)
	return c
}

func authenticate(t *testing.T, s *Server, auth services.AuthService, c *client, userID string) {
	t.Helper()

	token, err := auth.GenerateToken(domain.UserID(userID), userID)
	require.NoError(t, err)

	payload, _ := json.Marshal(AuthenticatePayload{Token: token})
	require.NoError(t, s.handleEvent(c, Envelope{Type: EventAuthenticate, Payload: payload}))

	env := readFrame(t, c)
	require.Equal(t, EventAuthenticated, env.Type)
}

// readFrame pops one queued frame, failing the test when none is pending.
func readFrame(t *testing.T, c *client) Envelope {
	t.Helper()

	select {
	case frame := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	default:
		t.Fatal("no frame queued")
		return Envelope{}
	}
}

func assertNoFrame(t *testing.T, c *client) {
	t.Helper()

	select {
	case frame := <-c.send:
		t.Fatalf("unexpected frame queued: %s", frame)
	default:
	}
}

func marshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestAuthenticate_BindsUserAndReturnsICEServers(t *testing.T) {
	s, auth := newTestServer(t)
	c := connect(s, "conn-1")

	token, err := auth.GenerateToken(domain.UserID("alice"), "alice")
	require.NoError(t, err)

	err = s.handleEvent(c, Envelope{
		Type:    EventAuthenticate,
		Payload: marshal(t, AuthenticatePayload{Token: token}),
	})
	require.NoError(t, err)

	env := readFrame(t, c)
	require.Equal(t, EventAuthenticated, env.Type)

	var payload AuthenticatedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, domain.UserID("alice"), payload.UserID)
	require.Len(t, payload.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.example.org:3478"}, payload.ICEServers[0].URLs)

	connID, ok := s.registry.Lookup(domain.UserID("alice"))
	assert.True(t, ok)
	assert.Equal(t, ConnectionID("conn-1"), connID)
}

func TestAuthenticate_InvalidTokenLeavesConnectionOpen(t *testing.T) {
	s, _ := newTestServer(t)
	c := connect(s, "conn-1")

	err := s.handleEvent(c, Envelope{
		Type:    EventAuthenticate,
		Payload: marshal(t, AuthenticatePayload{Token: "garbage"}),
	})
	require.NoError(t, err)

	env := readFrame(t, c)
	assert.Equal(t, EventAuthError, env.Type)
	assert.Equal(t, 0, s.registry.Size())

	// The connection is still registered and may retry.
	s.mu.RLock()
	_, stillThere := s.clients[c.id]
	s.mu.RUnlock()
	assert.True(t, stillThere)
}

func TestReauthenticate_LastConnectionWins(t *testing.T) {
	s, auth := newTestServer(t)
	first := connect(s, "conn-1")
	second := connect(s, "conn-2")

	authenticate(t, s, auth, first, "alice")
	authenticate(t, s, auth, second, "alice")

	caller := connect(s, "conn-3")
	authenticate(t, s, auth, caller, "bob")

	err := s.handleEvent(caller, Envelope{
		Type:    EventCallUser,
		Payload: marshal(t, CallUserPayload{TargetUserID: "alice", CallerName: "Bob", CallType: "video"}),
	})
	require.NoError(t, err)

	assertNoFrame(t, first)
	env := readFrame(t, second)
	assert.Equal(t, EventIncomingCall, env.Type)
}

func TestCallUser_ForwardsIncomingCall(t *testing.T) {
	s, auth := newTestServer(t)
	caller := connect(s, "conn-1")
	callee := connect(s, "conn-2")
	authenticate(t, s, auth, caller, "alice")
	authenticate(t, s, auth, callee, "bob")

	err := s.handleEvent(caller, Envelope{
		Type:    EventCallUser,
		Payload: marshal(t, CallUserPayload{TargetUserID: "bob", CallerName: "Alice", CallType: "audio"}),
	})
	require.NoError(t, err)

	env := readFrame(t, callee)
	require.Equal(t, EventIncomingCall, env.Type)

	var payload IncomingCallPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, domain.UserID("alice"), payload.CallerID)
	assert.Equal(t, "Alice", payload.CallerName)
	assert.Equal(t, domain.CallAudio, payload.CallType)
}

// A targeted event whose recipient is offline is dropped without any
// feedback to the sender.
func TestCallUser_OfflineTargetDroppedSilently(t *testing.T) {
	s, auth := newTestServer(t)
	caller := connect(s, "conn-1")
	authenticate(t, s, auth, caller, "alice")

	err := s.handleEvent(caller, Envelope{
		Type:    EventCallUser,
		Payload: marshal(t, CallUserPayload{TargetUserID: "ghost", CallerName: "Alice", CallType: "audio"}),
	})
	require.NoError(t, err)

	assertNoFrame(t, caller)
}

func TestCallAccepted_ForwardsToCaller(t *testing.T) {
	s, auth := newTestServer(t)
	caller := connect(s, "conn-1")
	callee := connect(s, "conn-2")
	authenticate(t, s, auth, caller, "alice")
	authenticate(t, s, auth, callee, "bob")

	err := s.handleEvent(callee, Envelope{
		Type:    EventCallAccepted,
		Payload: marshal(t, CallAnswerbackPayload{CallerID: "alice"}),
	})
	require.NoError(t, err)

	env := readFrame(t, caller)
	require.Equal(t, EventCallAccepted, env.Type)

	var payload CallAcceptedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, domain.UserID("bob"), payload.TargetUserID)
}

func TestCallEnded_ForwardsToTarget(t *testing.T) {
	s, auth := newTestServer(t)
	a := connect(s, "conn-1")
	b := connect(s, "conn-2")
	authenticate(t, s, auth, a, "alice")
	authenticate(t, s, auth, b, "bob")

	err := s.handleEvent(a, Envelope{
		Type:    EventCallEnded,
		Payload: marshal(t, CallEndedPayload{TargetUserID: "bob"}),
	})
	require.NoError(t, err)

	env := readFrame(t, b)
	require.Equal(t, EventCallEnded, env.Type)

	var payload CallEndedNotifyPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, domain.UserID("alice"), payload.UserID)
}

// SDP blobs pass through untouched.
func TestOffer_ForwardsBlobVerbatim(t *testing.T) {
	s, auth := newTestServer(t)
	caller := connect(s, "conn-1")
	callee := connect(s, "conn-2")
	authenticate(t, s, auth, caller, "alice")
	authenticate(t, s, auth, callee, "bob")

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0 fake"}`)
	err := s.handleEvent(caller, Envelope{
		Type:    EventOffer,
		Payload: marshal(t, OfferPayload{TargetUserID: "bob", Offer: offer}),
	})
	require.NoError(t, err)

	env := readFrame(t, callee)
	require.Equal(t, EventOffer, env.Type)

	var payload OfferNotifyPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.JSONEq(t, string(offer), string(payload.Offer))
	assert.Equal(t, domain.UserID("alice"), payload.CallerID)
}

func TestAnswer_ForwardsToCaller(t *testing.T) {
	s, auth := newTestServer(t)
	caller := connect(s, "conn-1")
	callee := connect(s, "conn-2")
	authenticate(t, s, auth, caller, "alice")
	authenticate(t, s, auth, callee, "bob")

	answer := json.RawMessage(`{"type":"answer","sdp":"v=0 fake"}`)
	err := s.handleEvent(callee, Envelope{
		Type:    EventAnswer,
		Payload: marshal(t, AnswerPayload{CallerID: "alice", Answer: answer}),
	})
	require.NoError(t, err)

	env := readFrame(t, caller)
	require.Equal(t, EventAnswer, env.Type)

	var payload AnswerNotifyPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.JSONEq(t, string(answer), string(payload.Answer))
	assert.Equal(t, domain.UserID("bob"), payload.TargetUserID)
}

func TestICECandidate_Forwards(t *testing.T) {
	s, auth := newTestServer(t)
	a := connect(s, "conn-1")
	b := connect(s, "conn-2")
	authenticate(t, s, auth, a, "alice")
	authenticate(t, s, auth, b, "bob")

	candidate := json.RawMessage(`{"candidate":"candidate:1 1 udp 2130706431 192.0.2.1 54321 typ host"}`)
	err := s.handleEvent(a, Envelope{
		Type:    EventICECandidate,
		Payload: marshal(t, ICECandidatePayload{TargetUserID: "bob", Candidate: candidate}),
	})
	require.NoError(t, err)

	env := readFrame(t, b)
	require.Equal(t, EventICECandidate, env.Type)

	var payload ICECandidateNotifyPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, domain.UserID("alice"), payload.UserID)
}

func TestRoomBroadcast_ExcludesSender(t *testing.T) {
	s, auth := newTestServer(t)
	a := connect(s, "conn-1")
	b := connect(s, "conn-2")
	outsider := connect(s, "conn-3")
	authenticate(t, s, auth, a, "alice")
	authenticate(t, s, auth, b, "bob")
	authenticate(t, s, auth, outsider, "carol")

	join := marshal(t, JoinRoomPayload{RoomID: "room-1"})
	require.NoError(t, s.handleEvent(a, Envelope{Type: EventJoinRoom, Payload: join}))
	require.NoError(t, s.handleEvent(b, Envelope{Type: EventJoinRoom, Payload: join}))

	err := s.handleEvent(a, Envelope{
		Type:    EventSendMessage,
		Payload: marshal(t, SendMessagePayload{RoomID: "room-1", Text: "hi"}),
	})
	require.NoError(t, err)

	env := readFrame(t, b)
	require.Equal(t, EventReceiveMessage, env.Type)

	var payload ReceiveMessagePayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, domain.UserID("alice"), payload.SenderID)
	assert.Equal(t, "hi", payload.Text)

	assertNoFrame(t, a)
	assertNoFrame(t, outsider)
}

func TestTyping_BroadcastToRoom(t *testing.T) {
	s, auth := newTestServer(t)
	a := connect(s, "conn-1")
	b := connect(s, "conn-2")
	authenticate(t, s, auth, a, "alice")
	authenticate(t, s, auth, b, "bob")

	join := marshal(t, JoinRoomPayload{RoomID: "room-1"})
	require.NoError(t, s.handleEvent(a, Envelope{Type: EventJoinRoom, Payload: join}))
	require.NoError(t, s.handleEvent(b, Envelope{Type: EventJoinRoom, Payload: join}))

	typing := marshal(t, TypingPayload{RoomID: "room-1"})
	require.NoError(t, s.handleEvent(a, Envelope{Type: EventTyping, Payload: typing}))

	env := readFrame(t, b)
	assert.Equal(t, EventUserTyping, env.Type)

	require.NoError(t, s.handleEvent(a, Envelope{Type: EventStopTyping, Payload: typing}))

	env = readFrame(t, b)
	assert.Equal(t, EventUserStopTyping, env.Type)
}

func TestDisconnect_UnbindsAndEmptiesRoom(t *testing.T) {
	s, auth := newTestServer(t)
	c := connect(s, "conn-1")
	authenticate(t, s, auth, c, "alice")

	join := marshal(t, JoinRoomPayload{RoomID: "room-1"})
	require.NoError(t, s.handleEvent(c, Envelope{Type: EventJoinRoom, Payload: join}))

	s.disconnect(c)

	_, ok := s.registry.Lookup(domain.UserID("alice"))
	assert.False(t, ok)

	s.mu.RLock()
	_, roomExists := s.rooms["room-1"]
	clientCount := len(s.clients)
	s.mu.RUnlock()
	assert.False(t, roomExists)
	assert.Equal(t, 0, clientCount)
}

func TestDisconnect_UnauthenticatedTouchesNoBindings(t *testing.T) {
	s, auth := newTestServer(t)
	bound := connect(s, "conn-1")
	authenticate(t, s, auth, bound, "alice")

	stranger := connect(s, "conn-2")
	s.disconnect(stranger)

	connID, ok := s.registry.Lookup(domain.UserID("alice"))
	assert.True(t, ok)
	assert.Equal(t, ConnectionID("conn-1"), connID)
}

func TestDisconnect_SupersededConnectionKeepsNewBinding(t *testing.T) {
	s, auth := newTestServer(t)
	first := connect(s, "conn-1")
	second := connect(s, "conn-2")
	authenticate(t, s, auth, first, "alice")
	authenticate(t, s, auth, second, "alice")

	s.disconnect(first)

	connID, ok := s.registry.Lookup(domain.UserID("alice"))
	assert.True(t, ok)
	assert.Equal(t, ConnectionID("conn-2"), connID)
}

func TestHandleEvent_UnknownTypeRejected(t *testing.T) {
	s, _ := newTestServer(t)
	c := connect(s, "conn-1")

	err := s.handleEvent(c, Envelope{Type: "launch_missiles", Payload: json.RawMessage(`{}`)})
	assert.Error(t, err)
}

// End to end over a real websocket: dial, authenticate, receive the
// authenticated reply.
func TestHandleWebSocket_AuthenticateRoundTrip(t *testing.T) {
	s, auth := newTestServer(t)

	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.HandleWebSocket(w, r)
	}))
	defer testServer.Close()

	wsURL := "ws" + testServer.URL[4:] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	token, err := auth.GenerateToken(domain.UserID("alice"), "alice")
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(Envelope{
		Type:    EventAuthenticate,
		Payload: marshal(t, AuthenticatePayload{Token: token}),
	}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, EventAuthenticated, env.Type)
}
