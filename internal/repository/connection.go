package repository

import (
	"context"
	"errors"

	"auconnect/internal/models"

	"gorm.io/gorm"
)

// ConnectionRepository defines the interface for connection data operations
type ConnectionRepository interface {
	Create(ctx context.Context, conn *models.Connection) error
	GetByID(ctx context.Context, id uint) (*models.Connection, error)
	// GetBetweenUsers returns the connection linking the two users in either
	// direction, or nil if there is none.
	GetBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Connection, error)
	UpdateStatus(ctx context.Context, id uint, status models.ConnectionStatus) error
}

type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	if err := r.db.WithContext(ctx).Create(conn).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *connectionRepository) GetByID(ctx context.Context, id uint) (*models.Connection, error) {
	var conn models.Connection
	if err := r.db.WithContext(ctx).Preload("Requester").Preload("Addressee").First(&conn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Connection", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &conn, nil
}

func (r *connectionRepository) GetBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Connection, error) {
	var conn models.Connection
	if err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			userID1, userID2, userID2, userID1).
		First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &conn, nil
}

func (r *connectionRepository) UpdateStatus(ctx context.Context, id uint, status models.ConnectionStatus) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
