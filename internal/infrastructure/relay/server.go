package relay

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"chatwire/internal/core/domain"
	"chatwire/internal/core/services"
	"chatwire/internal/infrastructure/monitoring"
	"chatwire/pkg/utils"
	"chatwire/pkg/validation"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Options tunes connection handling.
type Options struct {
	PingInterval time.Duration
	PongTimeout  time.Duration
	WriteTimeout time.Duration
	SendBuffer   int
	ICEServers   []ICEServer
}

func defaultOptions() Options {
	return Options{
		PingInterval: 30 * time.Second,
		PongTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
		SendBuffer:   32,
	}
}

// Server is the signaling relay: it owns the presence registry and the
// room index, and forwards chat and call-setup events between connections.
// Forwarding is fire-and-forget; a targeted event whose recipient is not
// bound in the registry is dropped without telling the sender.
type Server struct {
	auth    services.AuthService
	metrics *monitoring.RelayCollector
	opts    Options

	registry *PresenceRegistry

	mu      sync.RWMutex
	clients map[ConnectionID]*client
	rooms   map[string]map[ConnectionID]*client

	logger *zap.SugaredLogger
}

func NewServer(auth services.AuthService, metrics *monitoring.RelayCollector, logger *zap.SugaredLogger, opts Options) *Server {
	def := defaultOptions()
	if opts.PingInterval <= 0 {
		opts.PingInterval = def.PingInterval
	}
	if opts.PongTimeout <= 0 {
		opts.PongTimeout = def.PongTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = def.WriteTimeout
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = def.SendBuffer
	}

	return &Server{
		auth:     auth,
		metrics:  metrics,
		opts:     opts,
		registry: NewPresenceRegistry(),
		clients:  make(map[ConnectionID]*client),
		rooms:    make(map[string]map[ConnectionID]*client),
		logger:   logger,
	}
}

// HandleWebSocket upgrades the request and runs the connection until it
// closes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	c := newClient(ConnectionID(utils.GenerateConnectionID()), conn, s.opts.SendBuffer)
	s.register(c)
	s.logger.Infow("connection opened", "conn_id", c.id)

	go c.writePump(s.opts.PingInterval, s.opts.WriteTimeout)
	s.readLoop(c)
	s.disconnect(c)
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	s.metrics.ConnectionOpened()
}

func (s *Server) readLoop(c *client) {
	c.conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
		return nil
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Infow("read error", "conn_id", c.id, "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))

		if err := s.handleEvent(c, env); err != nil {
			s.logger.Infow("event rejected", "conn_id", c.id, "type", env.Type, "error", err)
			c.enqueue(encodeEvent(EventError, ErrorPayload{Message: err.Error()}))
		}
	}
}

// disconnect tears down a closed connection: leaves every joined room,
// releases the presence binding when the connection was authenticated, and
// drops the client. An unauthenticated connection never touches the
// registry.
func (s *Server) disconnect(c *client) {
	close(c.done)

	s.mu.Lock()
	delete(s.clients, c.id)
	for roomID := range c.joined {
		s.leaveRoomLocked(roomID, c)
	}
	roomCount := len(s.rooms)
	s.mu.Unlock()

	if userID := c.getUserID(); userID != "" {
		s.registry.Unbind(userID, c.id)
	}

	s.metrics.ConnectionClosed()
	s.metrics.SetUsersOnline(s.registry.Size())
	s.metrics.SetRoomsActive(roomCount)
	s.logger.Infow("connection closed", "conn_id", c.id, "user_id", c.getUserID())
}

// handleEvent dispatches one inbound envelope. Errors returned here are
// protocol errors reported to the sender; a missing forward target is not
// an error.
func (s *Server) handleEvent(c *client, env Envelope) error {
	if env.Type == "" {
		return fmt.Errorf("event type is required")
	}
	s.metrics.RecordEvent(env.Type)

	switch env.Type {
	case EventAuthenticate:
		return s.handleAuthenticate(c, env.Payload)
	case EventJoinRoom:
		return s.handleJoinRoom(c, env.Payload)
	case EventSendMessage:
		return s.handleSendMessage(c, env.Payload)
	case EventTyping:
		return s.handleTyping(c, env.Payload, EventUserTyping)
	case EventStopTyping:
		return s.handleTyping(c, env.Payload, EventUserStopTyping)
	case EventCallUser:
		return s.handleCallUser(c, env.Payload)
	case EventCallAccepted:
		return s.handleCallAnswerback(c, env.Payload, EventCallAccepted)
	case EventCallRejected:
		return s.handleCallAnswerback(c, env.Payload, EventCallRejected)
	case EventCallEnded:
		return s.handleCallEnded(c, env.Payload)
	case EventOffer:
		return s.handleOffer(c, env.Payload)
	case EventAnswer:
		return s.handleAnswer(c, env.Payload)
	case EventICECandidate:
		return s.handleICECandidate(c, env.Payload)
	default:
		return fmt.Errorf("unknown event type: %s", env.Type)
	}
}

// handleAuthenticate runs the per-connection handshake. Failure leaves the
// connection open and unauthenticated; success binds the user in the
// registry, superseding any previous connection for the same user without
// closing it.
func (s *Server) handleAuthenticate(c *client, raw json.RawMessage) error {
	var payload AuthenticatePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid authenticate payload: %w", err)
	}

	claims, err := s.auth.ValidateToken(payload.Token)
	if err != nil {
		s.metrics.RecordAuthFailure()
		c.enqueue(encodeEvent(EventAuthError, AuthErrorPayload{Message: "invalid token"}))
		return nil
	}

	c.setUserID(claims.UserID)
	s.registry.Bind(claims.UserID, c.id)
	s.metrics.SetUsersOnline(s.registry.Size())

	c.enqueue(encodeEvent(EventAuthenticated, AuthenticatedPayload{
		UserID:     claims.UserID,
		ICEServers: s.opts.ICEServers,
	}))
	s.logger.Infow("authenticated", "conn_id", c.id, "user_id", claims.UserID)
	return nil
}

func (s *Server) handleJoinRoom(c *client, raw json.RawMessage) error {
	var payload JoinRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid join_room payload: %w", err)
	}
	if err := validation.ValidateRoomID(payload.RoomID); err != nil {
		return err
	}

	s.mu.Lock()
	room, ok := s.rooms[payload.RoomID]
	if !ok {
		room = make(map[ConnectionID]*client)
		s.rooms[payload.RoomID] = room
	}
	room[c.id] = c
	c.joined[payload.RoomID] = struct{}{}
	roomCount := len(s.rooms)
	s.mu.Unlock()

	s.metrics.SetRoomsActive(roomCount)
	s.logger.Infow("joined room", "conn_id", c.id, "room_id", payload.RoomID)
	return nil
}

func (s *Server) handleSendMessage(c *client, raw json.RawMessage) error {
	var payload SendMessagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid send_message payload: %w", err)
	}
	if payload.RoomID == "" {
		return fmt.Errorf("room_id is required")
	}

	s.broadcastToRoom(payload.RoomID, c, encodeEvent(EventReceiveMessage, ReceiveMessagePayload{
		RoomID:    payload.RoomID,
		SenderID:  c.getUserID(),
		Text:      payload.Text,
		Timestamp: time.Now().UTC(),
	}))
	return nil
}

func (s *Server) handleTyping(c *client, raw json.RawMessage, outType string) error {
	var payload TypingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid typing payload: %w", err)
	}
	if payload.RoomID == "" {
		return fmt.Errorf("room_id is required")
	}

	s.broadcastToRoom(payload.RoomID, c, encodeEvent(outType, UserTypingPayload{
		UserID: c.getUserID(),
		RoomID: payload.RoomID,
	}))
	return nil
}

func (s *Server) handleCallUser(c *client, raw json.RawMessage) error {
	var payload CallUserPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid call_user payload: %w", err)
	}
	if payload.TargetUserID == "" {
		return fmt.Errorf("target_user_id is required")
	}

	s.forwardToUser(EventCallUser, payload.TargetUserID, encodeEvent(EventIncomingCall, IncomingCallPayload{
		CallerID:   c.getUserID(),
		CallerName: payload.CallerName,
		CallType:   payload.CallType,
	}))
	return nil
}

func (s *Server) handleCallAnswerback(c *client, raw json.RawMessage, outType string) error {
	var payload CallAnswerbackPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid %s payload: %w", outType, err)
	}
	if payload.CallerID == "" {
		return fmt.Errorf("caller_id is required")
	}

	var frame []byte
	if outType == EventCallAccepted {
		frame = encodeEvent(outType, CallAcceptedPayload{TargetUserID: c.getUserID()})
	} else {
		frame = encodeEvent(outType, CallRejectedPayload{TargetUserID: c.getUserID()})
	}
	s.forwardToUser(outType, payload.CallerID, frame)
	return nil
}

func (s *Server) handleCallEnded(c *client, raw json.RawMessage) error {
	var payload CallEndedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid call_ended payload: %w", err)
	}
	if payload.TargetUserID == "" {
		return fmt.Errorf("target_user_id is required")
	}

	s.forwardToUser(EventCallEnded, payload.TargetUserID, encodeEvent(EventCallEnded, CallEndedNotifyPayload{
		UserID: c.getUserID(),
	}))
	return nil
}

func (s *Server) handleOffer(c *client, raw json.RawMessage) error {
	var payload OfferPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid offer payload: %w", err)
	}
	if payload.TargetUserID == "" {
		return fmt.Errorf("target_user_id is required")
	}

	// The offer blob is forwarded untouched: the relay never inspects SDP.
	s.forwardToUser(EventOffer, payload.TargetUserID, encodeEvent(EventOffer, OfferNotifyPayload{
		Offer:    payload.Offer,
		CallerID: c.getUserID(),
	}))
	return nil
}

func (s *Server) handleAnswer(c *client, raw json.RawMessage) error {
	var payload AnswerPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid answer payload: %w", err)
	}
	if payload.CallerID == "" {
		return fmt.Errorf("caller_id is required")
	}

	s.forwardToUser(EventAnswer, payload.CallerID, encodeEvent(EventAnswer, AnswerNotifyPayload{
		Answer:       payload.Answer,
		TargetUserID: c.getUserID(),
	}))
	return nil
}

func (s *Server) handleICECandidate(c *client, raw json.RawMessage) error {
	var payload ICECandidatePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid ice_candidate payload: %w", err)
	}
	if payload.TargetUserID == "" {
		return fmt.Errorf("target_user_id is required")
	}

	s.forwardToUser(EventICECandidate, payload.TargetUserID, encodeEvent(EventICECandidate, ICECandidateNotifyPayload{
		Candidate: payload.Candidate,
		UserID:    c.getUserID(),
	}))
	return nil
}

// forwardToUser delivers one frame to the connection bound to userID. An
// unbound user means the frame is dropped: the sender is not told, only
// the metric moves.
func (s *Server) forwardToUser(eventType string, userID domain.UserID, frame []byte) {
	connID, ok := s.registry.Lookup(userID)
	if !ok {
		s.metrics.RecordDroppedForward(eventType)
		s.logger.Debugw("forward dropped, target offline", "type", eventType, "target_user_id", userID)
		return
	}

	s.mu.RLock()
	target, exists := s.clients[connID]
	s.mu.RUnlock()

	if !exists {
		s.metrics.RecordDroppedForward(eventType)
		return
	}
	if !target.enqueue(frame) {
		s.metrics.RecordDroppedForward(eventType)
	}
}

// broadcastToRoom delivers a frame to every room member except the sender.
func (s *Server) broadcastToRoom(roomID string, sender *client, frame []byte) {
	s.mu.RLock()
	room := s.rooms[roomID]
	members := make([]*client, 0, len(room))
	for _, member := range room {
		if member.id != sender.id {
			members = append(members, member)
		}
	}
	s.mu.RUnlock()

	for _, member := range members {
		member.enqueue(frame)
	}
}

// leaveRoomLocked removes c from a room and deletes the room when it
// empties. Caller holds s.mu.
func (s *Server) leaveRoomLocked(roomID string, c *client) {
	room, ok := s.rooms[roomID]
	if !ok {
		return
	}
	delete(room, c.id)
	if len(room) == 0 {
		delete(s.rooms, roomID)
	}
}

// HealthCheck reports connection and presence counts.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	connectionCount := len(s.clients)
	roomCount := len(s.rooms)
	s.mu.RUnlock()

	response := map[string]interface{}{
		"status":       "healthy",
		"timestamp":    time.Now().Unix(),
		"connections":  connectionCount,
		"users_online": s.registry.Size(),
		"rooms":        roomCount,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
