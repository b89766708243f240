package repository

import (
	"context"
	"errors"

	"auconnect/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// ListByUser returns up to limit posts authored by userID, newest first,
	// strictly after the cursor position when after is set.
	ListByUser(ctx context.Context, userID uint, after *models.Post, limit int) ([]*models.Post, error)
	// IncrementShareCount atomically bumps the share counter and returns the
	// updated post.
	IncrementShareCount(ctx context.Context, id uint) (*models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User", withDeletedUsers).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	post.Username = post.User.Username
	post.ProfilePic = post.User.ProfilePic
	return &post, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, after *models.Post, limit int) ([]*models.Post, error) {
	q := r.db.WithContext(ctx).
		Preload("User", withDeletedUsers).
		Where("user_id = ?", userID)
	if after != nil {
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))",
			after.CreatedAt, after.CreatedAt, after.ID)
	}

	var posts []*models.Post
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, p := range posts {
		p.Username = p.User.Username
		p.ProfilePic = p.User.ProfilePic
	}
	return posts, nil
}

func (r *postRepository) IncrementShareCount(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ?", id).
			UpdateColumn("share_count", gorm.Expr("share_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return tx.Select("id", "user_id", "share_count").First(&post, id).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}
