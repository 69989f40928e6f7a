package realtime

import (
	"sync"
)

// Hub maintains the set of live connections and the user-id index used for
// targeted delivery. Unauthenticated connections are tracked (the heartbeat
// sweeps them too) but appear under no user entry until the handshake binds
// them.
type Hub struct {
	mu              sync.RWMutex
	conns           map[*Conn]struct{}
	userIdToClients map[string]map[*Conn]struct{}
}

// NewHub creates an empty connection registry.
func NewHub() *Hub {
	return &Hub{
		conns:           make(map[*Conn]struct{}),
		userIdToClients: make(map[string]map[*Conn]struct{}),
	}
}

// Track adds a connection to the all-connection set before authentication.
func (h *Hub) Track(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

// Untrack removes a connection entirely, including any user binding.
func (h *Hub) Untrack(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c)
	if userID := c.UserID(); userID != "" {
		h.removeLocked(userID, c)
	}
}

// Register adds a connection under a user ID.
func (h *Hub) Register(userID string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
	if _, ok := h.userIdToClients[userID]; !ok {
		h.userIdToClients[userID] = make(map[*Conn]struct{})
	}
	h.userIdToClients[userID][c] = struct{}{}
}

// Unregister removes a connection from a user's set; if the set becomes
// empty the user entry is removed immediately.
func (h *Hub) Unregister(userID string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(userID, c)
}

func (h *Hub) removeLocked(userID string, c *Conn) {
	if clients, ok := h.userIdToClients[userID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.userIdToClients, userID)
		}
	}
}

// ConnectionsFor returns the live connections bound to a user. The result is
// a snapshot; it is never nil.
func (h *Hub) ConnectionsFor(userID string) []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := h.userIdToClients[userID]
	out := make([]*Conn, 0, len(clients))
	for c := range clients {
		out = append(out, c)
	}
	return out
}

// AllConnections returns a snapshot of every tracked connection, including
// ones that never completed the handshake.
func (h *Hub) AllConnections() []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		out = append(out, c)
	}
	return out
}

// HasUser reports whether a user has at least one live connection.
func (h *Hub) HasUser(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.userIdToClients[userID]
	return ok
}

// ConnCount returns the number of tracked connections.
func (h *Hub) ConnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
