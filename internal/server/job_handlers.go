package server

import (
	"auconnect/internal/models"
	"auconnect/internal/service"
	"auconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ApplyToJobRequest carries the optional details of an application. It is
// accepted as JSON or as form fields.
type ApplyToJobRequest struct {
	ResumeLetter   string `json:"resumeLetter" form:"resumeLetter" validate:"max=5000"`
	ExpectedSalary *int64 `json:"expectedSalary" form:"expectedSalary" validate:"omitempty,gte=0"`
	Availability   string `json:"availability" form:"availability" validate:"max=200"`
}

// ApplyToJobResponse identifies the stored application.
type ApplyToJobResponse struct {
	Success       bool `json:"success"`
	ApplicationID uint `json:"applicationId"`
}

// ApplyToJob godoc
// @Summary Apply to a job post
// @Description Records an application and notifies the author of the job post.
// @Tags jobs
// @Accept json
// @Produce json
// @Param jobPostId path int true "Job post ID"
// @Param request body ApplyToJobRequest false "Application details"
// @Success 200 {object} ApplyToJobResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{jobPostId}/apply [post]
func (s *Server) ApplyToJob(c *fiber.Ctx) error {
	jobPostID, err := s.parseID(c, "jobPostId")
	if err != nil {
		return nil
	}

	var req ApplyToJobRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
		}
	}
	if err := validation.Struct(req); err != nil {
		return respondError(c, err)
	}

	app, err := s.jobService.ApplyToJob(c.UserContext(), service.ApplyToJobInput{
		UserID:         currentUserID(c),
		JobPostID:      jobPostID,
		ResumeLetter:   req.ResumeLetter,
		ExpectedSalary: req.ExpectedSalary,
		Availability:   req.Availability,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(ApplyToJobResponse{Success: true, ApplicationID: app.ID})
}
