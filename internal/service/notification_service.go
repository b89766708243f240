package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"auconnect/internal/email"
	"auconnect/internal/middleware"
	"auconnect/internal/models"
	"auconnect/internal/observability"
	"auconnect/internal/repository"
	"auconnect/internal/tasks"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

const unreadCountTTL = 30 * time.Second

// Publisher pushes a payload to a user's realtime channel.
type Publisher interface {
	PublishJSON(ctx context.Context, userID uint, v any) error
}

// TaskSubmitter hands work to a background queue. Submit reports whether the
// task was accepted.
type TaskSubmitter interface {
	Submit(ctx context.Context, name string, fn tasks.Task) bool
}

type CreateNotificationInput struct {
	RecipientID uint
	FromUserID  uint
	Type        models.NotificationType
	EntityID    *uint
}

// NotificationServiceDeps wires a NotificationService. Publisher, Cache,
// Mailer and Tasks are optional.
type NotificationServiceDeps struct {
	Notifications repository.NotificationRepository
	Users         repository.UserRepository
	JobPosts      repository.JobPostRepository
	Publisher     Publisher
	Cache         *redis.Client
	Mailer        email.Sender
	Tasks         TaskSubmitter
	AppURL        string
}

type NotificationService struct {
	repo      repository.NotificationRepository
	users     repository.UserRepository
	jobPosts  repository.JobPostRepository
	publisher Publisher
	cache     *redis.Client
	mailer    email.Sender
	queue     TaskSubmitter
	appURL    string

	emailDisabledOnce sync.Once
}

func NewNotificationService(deps NotificationServiceDeps) *NotificationService {
	return &NotificationService{
		repo:      deps.Notifications,
		users:     deps.Users,
		jobPosts:  deps.JobPosts,
		publisher: deps.Publisher,
		cache:     deps.Cache,
		mailer:    deps.Mailer,
		queue:     deps.Tasks,
		appURL:    strings.TrimRight(deps.AppURL, "/"),
	}
}

// CreateNotification stores a notification for in.RecipientID. It does not
// filter self-notifications; callers skip those. Realtime delivery and email
// are best-effort and never fail the call.
func (s *NotificationService) CreateNotification(ctx context.Context, in CreateNotificationInput) (n *models.Notification, err error) {
	ctx, span := observability.StartSpan(ctx, "NotificationService.CreateNotification",
		attribute.String("notification.type", string(in.Type)))
	defer func() { observability.EndSpan(span, err) }()

	if !in.Type.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("Invalid notification type %q", in.Type))
	}
	if in.RecipientID == 0 || in.FromUserID == 0 {
		return nil, models.NewValidationError("Recipient and sender are required")
	}

	n = &models.Notification{
		UserID:     in.RecipientID,
		FromUserID: in.FromUserID,
		Type:       in.Type,
		EntityID:   in.EntityID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	observability.NotificationsCreated.WithLabelValues(string(in.Type)).Inc()

	s.invalidateUnread(ctx, in.RecipientID)
	s.publish(ctx, n)
	if in.Type.SendsEmail() {
		s.enqueueEmail(ctx, n)
	}

	return n, nil
}

func (s *NotificationService) publish(ctx context.Context, n *models.Notification) {
	if s.publisher == nil {
		return
	}
	view := models.NotificationView{Notification: *n}
	if from, err := s.users.GetByID(ctx, n.FromUserID); err == nil {
		view.FromUser = from.Summary()
	} else {
		view.FromUser = models.UserSummary{ID: n.FromUserID}
	}
	if err := s.publisher.PublishJSON(ctx, n.UserID, view); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			slog.Uint64("notification_id", uint64(n.ID)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *NotificationService) enqueueEmail(ctx context.Context, n *models.Notification) {
	if s.mailer == nil || !s.mailer.IsConfigured() || s.queue == nil {
		s.emailDisabledOnce.Do(func() {
			middleware.Logger.WarnContext(ctx, "email is not configured, notification emails are disabled")
		})
		observability.EmailsSent.WithLabelValues("skipped").Inc()
		return
	}

	notification := *n
	s.queue.Submit(ctx, "email:"+strings.ToLower(string(n.Type)), func(ctx context.Context) error {
		return s.sendEmail(ctx, &notification)
	})
}

func (s *NotificationService) sendEmail(ctx context.Context, n *models.Notification) error {
	recipient, err := s.users.GetByID(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("load recipient: %w", err)
	}
	sender, err := s.users.GetByID(ctx, n.FromUserID)
	if err != nil {
		return fmt.Errorf("load sender: %w", err)
	}
	if recipient.Email == "" {
		return errors.New("recipient has no email address")
	}

	data := email.ConnectionData{
		RecipientName:    recipient.Username,
		SenderName:       sender.Username,
		SenderProfileURL: s.appURL + "/profile/" + url.PathEscape(sender.Username),
		NotificationsURL: s.appURL + "/notifications",
	}

	var msg email.Message
	switch n.Type {
	case models.NotificationConnectionRequest:
		msg, err = email.ConnectionRequestMessage(recipient.Email, data)
	case models.NotificationConnectionAccepted:
		msg, err = email.ConnectionAcceptedMessage(recipient.Email, data)
	default:
		return fmt.Errorf("no email template for %s", n.Type)
	}
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		observability.EmailsSent.WithLabelValues("failed").Inc()
		return fmt.Errorf("send %s email: %w", n.Type, err)
	}
	observability.EmailsSent.WithLabelValues("sent").Inc()
	return nil
}

// ListForUser returns every notification addressed to userID, newest first.
// JOB_APPLICATION rows store a job post id; it is rewritten to the owning
// post id, or cleared when the job post no longer exists.
func (s *NotificationService) ListForUser(ctx context.Context, userID uint) ([]models.NotificationView, error) {
	rows, err := s.repo.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	var jobPostIDs []uint
	for _, n := range rows {
		if n.Type == models.NotificationJobApplication && n.EntityID != nil {
			jobPostIDs = append(jobPostIDs, *n.EntityID)
		}
	}

	var postIDs map[uint]uint
	if len(jobPostIDs) > 0 {
		postIDs, err = s.jobPosts.PostIDsByJobPostIDs(ctx, jobPostIDs)
		if err != nil {
			return nil, err
		}
	}

	views := make([]models.NotificationView, 0, len(rows))
	for _, n := range rows {
		if n.Type == models.NotificationJobApplication && n.EntityID != nil {
			if postID, ok := postIDs[*n.EntityID]; ok {
				n.EntityID = &postID
			} else {
				n.EntityID = nil
			}
		}
		views = append(views, models.NotificationView{
			Notification: *n,
			FromUser:     n.FromUser.Summary(),
		})
	}
	return views, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	if err := s.repo.MarkRead(ctx, userID, notificationID); err != nil {
		return err
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.invalidateUnread(ctx, userID)
	return n, nil
}

// UnreadCount returns the number of unread notifications for userID, served
// from Redis when a fresh value is cached.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	key := unreadCountKey(userID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			if count, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
				return count, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			middleware.Logger.WarnContext(ctx, "unread count cache read failed", slog.String("error", err.Error()))
		}
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, count, unreadCountTTL).Err(); err != nil {
			middleware.Logger.WarnContext(ctx, "unread count cache write failed", slog.String("error", err.Error()))
		}
	}
	return count, nil
}

func (s *NotificationService) invalidateUnread(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, unreadCountKey(userID)).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "unread count cache invalidation failed", slog.String("error", err.Error()))
	}
}

func unreadCountKey(userID uint) string {
	return "notifications:unread:" + strconv.FormatUint(uint64(userID), 10)
}
