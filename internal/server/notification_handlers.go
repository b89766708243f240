package server

import (
	"log/slog"

	"auconnect/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// ListNotifications godoc
// @Summary List the current user's notifications, newest first
// @Tags notifications
// @Produce json
// @Success 200 {array} models.NotificationView
// @Failure 401 {object} models.ErrorResponse
// @Router /notifications [get]
func (s *Server) ListNotifications(c *fiber.Ctx) error {
	views, err := s.notificationService.ListForUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(views)
}

// GetUnreadCount godoc
// @Summary Count unread notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /notifications/unread-count [get]
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	count, err := s.notificationService.UnreadCount(c.UserContext(), currentUserID(c))
	if err != nil {
		// Failures degrade to a zero count.
		middleware.Logger.WarnContext(c.UserContext(), "unread count failed", slog.String("error", err.Error()))
		return c.JSON(fiber.Map{"count": 0})
	}
	return c.JSON(fiber.Map{"count": count})
}

// MarkNotificationRead godoc
// @Summary Mark one notification read
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications/{id} [patch]
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.notificationService.MarkRead(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// MarkAllNotificationsRead godoc
// @Summary Mark every notification read
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /notifications/mark-all-read [patch]
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	updated, err := s.notificationService.MarkAllRead(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "updated": updated})
}
