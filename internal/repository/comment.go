// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"auconnect/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	// CreateWithCounter inserts comment and increments the post's comment
	// count in one transaction.
	CreateWithCounter(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	// GetCursor resolves a pagination cursor, including soft-deleted rows.
	GetCursor(ctx context.Context, id uint) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID uint, after *models.Comment, limit int) ([]*models.Comment, error)
	ListReplies(ctx context.Context, parentID uint, after *models.Comment, limit int) ([]*models.Comment, error)
	CountReplies(ctx context.Context, commentIDs []uint) (map[uint]int64, error)
	// Delete soft-deletes comment and decrements the post's comment count.
	Delete(ctx context.Context, comment *models.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) CreateWithCounter(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", comment.PostID)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User", withDeletedUsers).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) GetCursor(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Unscoped().
		Select("id", "post_id", "parent_id", "created_at").
		First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListTopLevel returns up to limit top-level comments of postID, newest
// first, strictly after the cursor position when after is set.
func (r *commentRepository) ListTopLevel(ctx context.Context, postID uint, after *models.Comment, limit int) ([]*models.Comment, error) {
	q := r.db.WithContext(ctx).
		Preload("User", withDeletedUsers).
		Where("post_id = ? AND parent_id IS NULL", postID)
	if after != nil {
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))",
			after.CreatedAt, after.CreatedAt, after.ID)
	}

	var comments []*models.Comment
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// ListReplies returns up to limit direct replies to parentID, oldest first,
// strictly after the cursor position when after is set.
func (r *commentRepository) ListReplies(ctx context.Context, parentID uint, after *models.Comment, limit int) ([]*models.Comment, error) {
	q := r.db.WithContext(ctx).
		Preload("User", withDeletedUsers).
		Where("parent_id = ?", parentID)
	if after != nil {
		q = q.Where("(created_at > ? OR (created_at = ? AND id > ?))",
			after.CreatedAt, after.CreatedAt, after.ID)
	}

	var comments []*models.Comment
	if err := q.Order("created_at ASC").Order("id ASC").Limit(limit).Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// CountReplies returns the number of live direct replies per comment id.
// Ids without replies are absent from the map.
func (r *commentRepository) CountReplies(ctx context.Context, commentIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(commentIDs))
	if len(commentIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ParentID uint
		Count    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("parent_id, COUNT(*) AS count").
		Where("parent_id IN ?", commentIDs).
		Group("parent_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	for _, row := range rows {
		counts[row.ParentID] = row.Count
	}
	return counts, nil
}

func (r *commentRepository) Delete(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Comment{}, comment.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Comment", comment.ID)
		}
		return tx.Model(&models.Post{}).
			Where("id = ? AND comment_count > 0", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - ?", 1)).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	return nil
}
