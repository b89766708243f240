package server

import (
	"github.com/gofiber/fiber/v2"
)

// SendConnectionRequest godoc
// @Summary Send a connection request
// @Tags connections
// @Produce json
// @Param userId path int true "Target user ID"
// @Success 201 {object} models.Connection
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/{userId} [post]
func (s *Server) SendConnectionRequest(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	conn, err := s.connectionService.SendRequest(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conn)
}

// AcceptConnectionRequest godoc
// @Summary Accept a pending connection request
// @Tags connections
// @Produce json
// @Param requestId path int true "Connection request ID"
// @Success 200 {object} models.Connection
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/requests/{requestId}/accept [post]
func (s *Server) AcceptConnectionRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	conn, err := s.connectionService.AcceptRequest(c.UserContext(), currentUserID(c), requestID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conn)
}
