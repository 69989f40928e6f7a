package handlers

import (
	"log"
	"net/http"

	"projectflow-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at Gin level; allow upgrade from any origin here
		return true
	},
}

// WebSocketHandler upgrades the connection and hands it to the gateway.
// The route is public: authentication happens over the socket itself via the
// {"type":"auth","token":...} handshake, not via the HTTP request.
type WebSocketHandler struct {
	Gateway *realtime.Gateway
}

// Handle serves GET /ws.
func (h *WebSocketHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("websocket upgrade error:", err)
		return
	}
	h.Gateway.HandleConnection(conn)
}
