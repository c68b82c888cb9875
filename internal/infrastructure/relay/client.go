package relay

import (
	"sync"
	"time"

	"chatwire/internal/core/domain"

	"github.com/gorilla/websocket"
)

// client is one live relay connection. Its user identity is empty until
// the authenticate handshake succeeds; once set it is never cleared, which
// makes unbinding on disconnect an O(1) reverse lookup.
type client struct {
	id   ConnectionID
	conn *websocket.Conn

	// send buffers outbound frames for the write pump. A full buffer drops
	// the frame: forwarding is best-effort. The channel is never closed;
	// done signals the write pump to exit so a concurrent enqueue from
	// another connection's forward cannot hit a closed channel.
	send chan []byte
	done chan struct{}

	mu     sync.RWMutex
	userID domain.UserID

	// rooms this connection has joined, maintained by the server's room
	// index and mirrored here for disconnect cleanup.
	joined map[string]struct{}
}

func newClient(id ConnectionID, conn *websocket.Conn, sendBuffer int) *client {
	return &client{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		joined: make(map[string]struct{}),
	}
}

func (c *client) setUserID(id domain.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = id
}

func (c *client) getUserID() domain.UserID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// enqueue hands a frame to the write pump without blocking. Returns false
// when the frame was dropped because the client cannot keep up.
func (c *client) enqueue(frame []byte) bool {
	if frame == nil {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// writePump serializes all writes to the connection: queued frames plus
// periodic pings. It exits when the client is torn down or a write fails.
func (c *client) writePump(pingInterval, writeTimeout time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeTimeout))
			return

		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
