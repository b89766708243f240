package repository

import (
	"context"
	"errors"

	"auconnect/internal/models"

	"gorm.io/gorm"
)

// JobPostRepository defines the interface for job posting lookups.
type JobPostRepository interface {
	Create(ctx context.Context, job *models.JobPost) error
	// GetByID returns the job post with its owning Post loaded.
	GetByID(ctx context.Context, id uint) (*models.JobPost, error)
	// PostIDsByJobPostIDs maps job post ids to their owning post ids. Unknown
	// ids are absent from the result.
	PostIDsByJobPostIDs(ctx context.Context, ids []uint) (map[uint]uint, error)
}

type jobPostRepository struct {
	db *gorm.DB
}

// NewJobPostRepository creates a new JobPostRepository
func NewJobPostRepository(db *gorm.DB) JobPostRepository {
	return &jobPostRepository{db: db}
}

func (r *jobPostRepository) Create(ctx context.Context, job *models.JobPost) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *jobPostRepository) GetByID(ctx context.Context, id uint) (*models.JobPost, error) {
	var job models.JobPost
	if err := r.db.WithContext(ctx).Preload("Post").First(&job, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Job post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &job, nil
}

func (r *jobPostRepository) PostIDsByJobPostIDs(ctx context.Context, ids []uint) (map[uint]uint, error) {
	result := make(map[uint]uint, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.JobPost
	if err := r.db.WithContext(ctx).
		Select("id", "post_id").
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	for _, row := range rows {
		result[row.ID] = row.PostID
	}
	return result, nil
}
