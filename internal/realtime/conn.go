package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn wraps a single websocket connection together with the liveness flag
// used by the heartbeat sweep and the user identity bound by the handshake.
type Conn struct {
	ws *websocket.Conn

	mu     sync.Mutex
	userID string
	alive  bool
	closed bool

	writeTimeout time.Duration
}

func newConn(ws *websocket.Conn, writeTimeout time.Duration) *Conn {
	return &Conn{
		ws:           ws,
		alive:        true,
		writeTimeout: writeTimeout,
	}
}

// UserID returns the bound user identity, or "" before a successful handshake.
func (c *Conn) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Conn) bindUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
}

func (c *Conn) markAlive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = true
}

// consumeAlive reports whether the peer answered since the last ping and
// clears the flag for the next heartbeat cycle.
func (c *Conn) consumeAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	was := c.alive
	c.alive = false
	return was
}

// Send writes a text frame. It reports false when the connection is closed
// or the write fails; callers treat that as a skipped delivery.
func (c *Conn) Send(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
		return false
	}
	return true
}

// Ping sends a ping control frame.
func (c *Conn) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
}

// Close terminates the underlying channel. The reader loop notices the
// closed transport and runs the normal unregister path.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	_ = c.ws.Close()
}

// IsOpen reports whether Close has been called.
func (c *Conn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}
