package server

import (
	"log/slog"

	"auconnect/internal/middleware"
	"auconnect/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler upgrades authenticated requests and streams the user's
// notifications until the socket closes.
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket rejected",
				slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if s.hub == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
				Error: "Realtime notifications are unavailable",
			})
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}
