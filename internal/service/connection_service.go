package service

import (
	"context"
	"log/slog"

	"auconnect/internal/middleware"
	"auconnect/internal/models"
	"auconnect/internal/repository"
)

// ConnectionService manages connection requests between users.
type ConnectionService struct {
	connRepo      repository.ConnectionRepository
	userRepo      repository.UserRepository
	notifications NotificationCreator
}

// NewConnectionService returns a new ConnectionService.
func NewConnectionService(
	connRepo repository.ConnectionRepository,
	userRepo repository.UserRepository,
	notifications NotificationCreator,
) *ConnectionService {
	return &ConnectionService{
		connRepo:      connRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// SendRequest creates a pending connection from userID to targetUserID and
// notifies the target.
func (s *ConnectionService) SendRequest(ctx context.Context, userID, targetUserID uint) (*models.Connection, error) {
	if userID == targetUserID {
		return nil, models.NewValidationError("Cannot send a connection request to yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return nil, err
	}

	existing, err := s.connRepo.GetBetweenUsers(ctx, userID, targetUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.ConnectionStatusAccepted:
			return nil, models.NewValidationError("You are already connected")
		default:
			if existing.RequesterID == userID {
				return nil, models.NewValidationError("Connection request already sent")
			}
			return nil, models.NewValidationError("You already have a pending connection request from this user")
		}
	}

	conn := &models.Connection{
		RequesterID: userID,
		AddresseeID: targetUserID,
		Status:      models.ConnectionStatusPending,
	}
	if err := s.connRepo.Create(ctx, conn); err != nil {
		return nil, err
	}

	s.notify(ctx, targetUserID, userID, models.NotificationConnectionRequest)
	return s.connRepo.GetByID(ctx, conn.ID)
}

// AcceptRequest accepts a pending request addressed to userID and notifies
// the requester.
func (s *ConnectionService) AcceptRequest(ctx context.Context, userID, requestID uint) (*models.Connection, error) {
	conn, err := s.connRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if conn.AddresseeID != userID {
		return nil, models.NewForbiddenError("You can only accept connection requests sent to you")
	}
	if conn.Status != models.ConnectionStatusPending {
		return nil, models.NewValidationError("Connection request is not pending")
	}

	if err := s.connRepo.UpdateStatus(ctx, requestID, models.ConnectionStatusAccepted); err != nil {
		return nil, err
	}

	s.notify(ctx, conn.RequesterID, userID, models.NotificationConnectionAccepted)
	return s.connRepo.GetByID(ctx, requestID)
}

// notify records a connection event. The entity is the acting user.
func (s *ConnectionService) notify(ctx context.Context, recipientID, fromUserID uint, typ models.NotificationType) {
	if s.notifications == nil || recipientID == fromUserID {
		return
	}
	entityID := fromUserID
	if _, err := s.notifications.CreateNotification(ctx, CreateNotificationInput{
		RecipientID: recipientID,
		FromUserID:  fromUserID,
		Type:        typ,
		EntityID:    &entityID,
	}); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to create connection notification",
			slog.String("type", string(typ)),
			slog.String("error", err.Error()),
		)
	}
}
