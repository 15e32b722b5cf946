package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/matchpulse/betengine/internal/stream"
)

// WebSocketHandler attaches subscribers to the broadcast hub.
type WebSocketHandler struct {
	hub *stream.Hub
}

func NewWebSocketHandler(hub *stream.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleWebSocket upgrades the connection. The upgrader writes its own
// error response on failure, so nothing more to send here.
// GET /ws
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	if err := h.hub.ServeWS(c.Writer, c.Request); err != nil {
		logrus.WithError(err).Warn("WebSocket upgrade failed")
	}
}
