package realtime

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"time"

	"projectflow-api/internal/auth"

	"github.com/gorilla/websocket"
)

// Config controls the gateway's heartbeat and write behavior.
type Config struct {
	// HeartbeatInterval is the period of the liveness sweep. A connection
	// that misses two consecutive pings is force-closed, so silent peers
	// are detected within one to two intervals.
	HeartbeatInterval time.Duration
	WriteTimeout      time.Duration
}

// DefaultConfig reads WS_HEARTBEAT_SECONDS (default 30).
func DefaultConfig() Config {
	interval := 30 * time.Second
	if v := os.Getenv("WS_HEARTBEAT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			interval = time.Duration(secs) * time.Second
		}
	}
	return Config{
		HeartbeatInterval: interval,
		WriteTimeout:      5 * time.Second,
	}
}

// Gateway owns the connection registry, runs the authentication handshake on
// every new connection, sweeps dead peers, and fans events out to users. It
// is constructed once at startup and injected into the handlers that produce
// events.
type Gateway struct {
	cfg  Config
	hub  *Hub
	stop chan struct{}
	done chan struct{}
}

// NewGateway creates a gateway with an empty registry. Call Start to begin
// the heartbeat sweep.
func NewGateway(cfg Config) *Gateway {
	return &Gateway{
		cfg:  cfg,
		hub:  NewHub(),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Hub exposes the registry, mainly for tests and diagnostics.
func (g *Gateway) Hub() *Hub {
	return g.hub
}

// Start launches the heartbeat sweep.
func (g *Gateway) Start() {
	go g.heartbeatLoop()
}

// Shutdown stops the heartbeat and closes every tracked connection.
func (g *Gateway) Shutdown() {
	close(g.stop)
	<-g.done
	for _, c := range g.hub.AllConnections() {
		c.Close()
		g.hub.Untrack(c)
	}
}

func (g *Gateway) heartbeatLoop() {
	defer close(g.done)
	ticker := time.NewTicker(g.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

// sweep terminates connections that did not answer the previous ping and
// pings the rest. Unregistering is left to the reader loop, which exits once
// the transport is closed.
func (g *Gateway) sweep() {
	for _, c := range g.hub.AllConnections() {
		if !c.consumeAlive() {
			log.Printf("websocket: terminating unresponsive connection (user=%q)", c.UserID())
			c.Close()
			continue
		}
		if err := c.Ping(); err != nil {
			// Ping failed; the reader loop will exit on its next read.
			log.Printf("websocket: ping failed (user=%q): %v", c.UserID(), err)
		}
	}
}

// clientMessage is the only inbound application frame the gateway parses.
type clientMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type authSuccessMessage struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type authFailedMessage struct {
	Type string `json:"type"`
}

// HandleConnection takes ownership of an upgraded websocket connection. It
// tracks the connection, runs the handshake protocol, and blocks reading
// frames until the peer goes away. Callers run it on the connection's own
// goroutine.
func (g *Gateway) HandleConnection(ws *websocket.Conn) {
	c := newConn(ws, g.cfg.WriteTimeout)
	ws.SetReadLimit(4096)
	ws.SetPongHandler(func(string) error {
		c.markAlive()
		return nil
	})

	g.hub.Track(c)
	defer func() {
		g.hub.Untrack(c)
		c.Close()
	}()

	authenticated := false
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			// Normal close or transport error; cleanup happens in the defer.
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("websocket: ignoring malformed message: %v", err)
			continue
		}

		if msg.Type != "auth" {
			// Pre-auth traffic other than the handshake is ignored, and the
			// gateway has no other inbound application messages.
			continue
		}
		if authenticated {
			// Repeated handshake on a bound connection is ignored.
			continue
		}

		claims, err := auth.ValidateToken(msg.Token)
		if err != nil {
			reply, _ := json.Marshal(authFailedMessage{Type: "auth_failed"})
			c.Send(reply)
			return
		}

		c.bindUser(claims.UserID)
		g.hub.Register(claims.UserID, c)
		authenticated = true

		reply, _ := json.Marshal(authSuccessMessage{Type: "auth_success", UserID: claims.UserID})
		c.Send(reply)
	}
}

// SendToUser delivers an event to every live connection of one user. The
// payload is serialized once; connections that are no longer open are
// skipped silently.
func (g *Gateway) SendToUser(userID string, evt Envelope) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("websocket: failed to marshal %s event: %v", evt.Type, err)
		return
	}
	g.sendRaw(userID, data)
}

// SendToUsers delivers the identical serialized payload to every connection
// of every listed user. There is no ordering or atomicity guarantee across
// users.
func (g *Gateway) SendToUsers(userIDs []string, evt Envelope) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("websocket: failed to marshal %s event: %v", evt.Type, err)
		return
	}
	for _, userID := range userIDs {
		g.sendRaw(userID, data)
	}
}

// Broadcast delivers an event to every tracked connection, including ones
// that never authenticated. Used for server-wide announcements only.
func (g *Gateway) Broadcast(evt Envelope) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("websocket: failed to marshal %s event: %v", evt.Type, err)
		return
	}
	for _, c := range g.hub.AllConnections() {
		c.Send(data)
	}
}

func (g *Gateway) sendRaw(userID string, data []byte) {
	for _, c := range g.hub.ConnectionsFor(userID) {
		c.Send(data)
	}
}

// EmitTicketCreated implements Publisher.
func (g *Gateway) EmitTicketCreated(userIDs []string, data TicketPayload) {
	g.SendToUsers(userIDs, Envelope{Type: EventTicketCreated, Data: data})
}

// EmitTicketUpdate implements Publisher.
func (g *Gateway) EmitTicketUpdate(userIDs []string, data TicketPayload) {
	g.SendToUsers(userIDs, Envelope{Type: EventTicketUpdate, Data: data})
}

// EmitMeetingNotification implements Publisher.
func (g *Gateway) EmitMeetingNotification(userIDs []string, data MeetingPayload) {
	g.SendToUsers(userIDs, Envelope{Type: EventMeetingNotification, Data: data})
}

// EmitNotification implements Publisher.
func (g *Gateway) EmitNotification(userID string, data NotificationPayload) {
	g.SendToUser(userID, Envelope{Type: EventNotification, Data: data})
}

var _ Publisher = (*Gateway)(nil)
