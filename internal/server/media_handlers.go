package server

import (
	"auconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FetchMedia godoc
// @Summary Get a short-lived read URL for an uploaded blob
// @Tags media
// @Produce json
// @Param blobName query string true "Blob name"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /fetch-media [get]
func (s *Server) FetchMedia(c *fiber.Ctx) error {
	if s.media == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: "Media storage is not configured",
		})
	}

	url, err := s.media.PresignRead(c.UserContext(), c.Query("blobName"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}
