package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-service/internal/realtime"
)

// RealtimeHandler upgrades /ws and hands sockets to the relay.
type RealtimeHandler struct {
	server *realtime.Server
}

// NewRealtimeHandler constructs handler.
func NewRealtimeHandler(server *realtime.Server) *RealtimeHandler {
	return &RealtimeHandler{server: server}
}

// Upgrade rejects plain HTTP requests to /ws.
func (h *RealtimeHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve handles an upgraded connection until it closes.
func (h *RealtimeHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		h.server.Serve(conn)
	})
}
