package repository

import (
	"context"
	"errors"

	"auconnect/internal/models"

	"gorm.io/gorm"
)

// JobApplicationRepository defines the interface for job application storage.
type JobApplicationRepository interface {
	Create(ctx context.Context, app *models.JobApplication) error
	// GetByApplicant returns applicantID's application to jobPostID, or nil if
	// there is none.
	GetByApplicant(ctx context.Context, jobPostID, applicantID uint) (*models.JobApplication, error)
}

type jobApplicationRepository struct {
	db *gorm.DB
}

// NewJobApplicationRepository creates a new JobApplicationRepository
func NewJobApplicationRepository(db *gorm.DB) JobApplicationRepository {
	return &jobApplicationRepository{db: db}
}

func (r *jobApplicationRepository) Create(ctx context.Context, app *models.JobApplication) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *jobApplicationRepository) GetByApplicant(ctx context.Context, jobPostID, applicantID uint) (*models.JobApplication, error) {
	var app models.JobApplication
	if err := r.db.WithContext(ctx).
		Where("job_post_id = ? AND applicant_id = ?", jobPostID, applicantID).
		First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &app, nil
}
