package handlers

import (
	"campus_essentials/internal/ws"
	"campus_essentials/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const localChannelUser = "channel_user_id"

type RealtimeHandler struct {
	hub *ws.Hub
}

func NewRealtimeHandler(hub *ws.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Upgrade ensures the client is trying to upgrade to WebSocket and carries
// the authenticated id over to the connection.
func (h *RealtimeHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals(localChannelUser, middleware.UserID(c))
	return c.Next()
}

// Handler returns the websocket handler. The channel starts anonymous and
// joins its delivery group on a join frame.
func (h *RealtimeHandler) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(localChannelUser).(uint)
		if userID == 0 {
			conn.Close()
			return
		}
		ws.NewClient(h.hub, conn, userID).Serve()
	})
}
