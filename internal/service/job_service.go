package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"auconnect/internal/middleware"
	"auconnect/internal/models"
	"auconnect/internal/observability"
	"auconnect/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const maxResumeLetterLen = 5000

type JobService struct {
	jobRepo       repository.JobPostRepository
	appRepo       repository.JobApplicationRepository
	userRepo      repository.UserRepository
	notifications NotificationCreator
}

type ApplyToJobInput struct {
	UserID         uint
	JobPostID      uint
	ResumeLetter   string
	ExpectedSalary *int64
	Availability   string
}

func NewJobService(
	jobRepo repository.JobPostRepository,
	appRepo repository.JobApplicationRepository,
	userRepo repository.UserRepository,
	notifications NotificationCreator,
) *JobService {
	return &JobService{
		jobRepo:       jobRepo,
		appRepo:       appRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// ApplyToJob records an application to an open job post and notifies the
// author of the owning post. The notification entity is the job post id.
func (s *JobService) ApplyToJob(ctx context.Context, in ApplyToJobInput) (app *models.JobApplication, err error) {
	ctx, span := observability.StartSpan(ctx, "JobService.ApplyToJob",
		attribute.Int("job_post.id", int(in.JobPostID)))
	defer func() { observability.EndSpan(span, err) }()

	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	letter := strings.TrimSpace(in.ResumeLetter)
	if utf8.RuneCountInString(letter) > maxResumeLetterLen {
		return nil, models.NewValidationError("Resume letter too long (max 5000 characters)")
	}
	if in.ExpectedSalary != nil && *in.ExpectedSalary < 0 {
		return nil, models.NewValidationError("Expected salary cannot be negative")
	}

	job, err := s.jobRepo.GetByID(ctx, in.JobPostID)
	if err != nil {
		return nil, err
	}
	switch job.Status {
	case models.JobStatusClosed:
		return nil, models.NewValidationError("Job Already Closed")
	case models.JobStatusFilled:
		return nil, models.NewValidationError("Number of Job Positions Already Filled")
	}

	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, models.NewUnauthorizedError("Authentication required")
		}
		return nil, err
	}

	existing, err := s.appRepo.GetByApplicant(ctx, job.ID, in.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("Already applied")
	}

	app = &models.JobApplication{
		JobPostID:      job.ID,
		ApplicantID:    in.UserID,
		ResumeLetter:   letter,
		ExpectedSalary: in.ExpectedSalary,
		Availability:   strings.TrimSpace(in.Availability),
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		// A concurrent request may have won the unique index.
		if again, lookupErr := s.appRepo.GetByApplicant(ctx, job.ID, in.UserID); lookupErr == nil && again != nil {
			return nil, models.NewValidationError("Already applied")
		}
		return nil, err
	}

	s.notify(ctx, job.Post.UserID, in.UserID, job.ID)
	return app, nil
}

func (s *JobService) notify(ctx context.Context, recipientID, fromUserID, jobPostID uint) {
	if s.notifications == nil || recipientID == 0 || recipientID == fromUserID {
		return
	}
	entityID := jobPostID
	if _, err := s.notifications.CreateNotification(ctx, CreateNotificationInput{
		RecipientID: recipientID,
		FromUserID:  fromUserID,
		Type:        models.NotificationJobApplication,
		EntityID:    &entityID,
	}); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to create job application notification",
			slog.Uint64("job_post_id", uint64(jobPostID)),
			slog.String("error", err.Error()),
		)
	}
}
