// Package service contains the business logic behind the HTTP handlers.
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

const maxCommentLen = 10000

// Page size bounds for comment listings.
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// NotificationCreator records a notification for a user.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, in CreateNotificationInput) (*models.Notification, error)
}

type CommentService struct {
	commentRepo   repository.CommentRepository
	postRepo      repository.PostRepository
	userRepo      repository.UserRepository
	notifications NotificationCreator
}

type CreateCommentInput struct {
	UserID   uint
	PostID   uint
	Content  string
	ParentID *uint
}

// ListCommentsInput selects one page of a listing. CommentID is the parent
// whose replies are listed and is ignored for top-level listings.
type ListCommentsInput struct {
	PostID    uint
	CommentID uint
	Cursor    *uint
	Limit     int
}

type DeleteCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notifications NotificationCreator,
) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		postRepo:      postRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// CreateComment adds a comment, or a reply when in.ParentID is set, and
// notifies the post or parent author. Notification failures are logged and do
// not affect the result.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (comment *models.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "CommentService.CreateComment",
		attribute.Int("post.id", int(in.PostID)))
	defer func() { observability.EndSpan(span, err) }()

	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.CommentsDisabled {
		return nil, models.NewValidationError("Comments are disabled for this post")
	}

	var parent *models.Comment
	if in.ParentID != nil {
		parent, err = s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewNotFoundError("Comment", *in.ParentID)
		}
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, models.NewUnauthorizedError("Authentication required")
		}
		return nil, err
	}

	comment = &models.Comment{
		PostID:   in.PostID,
		ParentID: in.ParentID,
		UserID:   in.UserID,
		Content:  content,
	}
	if err := s.commentRepo.CreateWithCounter(ctx, comment); err != nil {
		return nil, err
	}

	comment.User = *author
	comment.Username = author.Username
	comment.ProfilePic = author.ProfilePic
	comment.ReplyCount = 0

	if parent != nil {
		observability.CommentsCreated.WithLabelValues("reply").Inc()
		s.notify(ctx, parent.UserID, in.UserID, models.NotificationCommentReplied, post.ID)
	} else {
		observability.CommentsCreated.WithLabelValues("comment").Inc()
		s.notify(ctx, post.UserID, in.UserID, models.NotificationPostCommented, post.ID)
	}

	return comment, nil
}

func (s *CommentService) notify(ctx context.Context, recipientID, fromUserID uint, typ models.NotificationType, postID uint) {
	if s.notifications == nil || recipientID == fromUserID {
		return
	}
	entityID := postID
	if _, err := s.notifications.CreateNotification(ctx, CreateNotificationInput{
		RecipientID: recipientID,
		FromUserID:  fromUserID,
		Type:        typ,
		EntityID:    &entityID,
	}); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to create comment notification",
			slog.String("type", string(typ)),
			slog.Uint64("recipient_id", uint64(recipientID)),
			slog.String("error", err.Error()),
		)
	}
}

// ListTopLevelComments returns one page of a post's top-level comments,
// newest first.
func (s *CommentService) ListTopLevelComments(ctx context.Context, in ListCommentsInput) (*models.CommentPage, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	after, err := s.resolveCursor(ctx, in.Cursor, func(c *models.Comment) bool {
		return c.PostID == in.PostID && c.ParentID == nil
	})
	if err != nil {
		return nil, err
	}

	limit := NormalizePageSize(in.Limit)
	rows, err := s.commentRepo.ListTopLevel(ctx, in.PostID, after, limit+1)
	if err != nil {
		return nil, err
	}
	return s.assemblePage(ctx, rows, limit)
}

// ListReplies returns one page of the direct replies to in.CommentID, oldest
// first.
func (s *CommentService) ListReplies(ctx context.Context, in ListCommentsInput) (*models.CommentPage, error) {
	parent, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if parent.PostID != in.PostID {
		return nil, models.NewNotFoundError("Comment", in.CommentID)
	}

	after, err := s.resolveCursor(ctx, in.Cursor, func(c *models.Comment) bool {
		return c.PostID == in.PostID && c.ParentID != nil && *c.ParentID == in.CommentID
	})
	if err != nil {
		return nil, err
	}

	limit := NormalizePageSize(in.Limit)
	rows, err := s.commentRepo.ListReplies(ctx, in.CommentID, after, limit+1)
	if err != nil {
		return nil, err
	}
	return s.assemblePage(ctx, rows, limit)
}

// resolveCursor maps a cursor id to its position. Deleted comments still
// resolve; a cursor outside the listing described by belongs is rejected.
func (s *CommentService) resolveCursor(ctx context.Context, cursor *uint, belongs func(*models.Comment) bool) (*models.Comment, error) {
	if cursor == nil {
		return nil, nil
	}
	c, err := s.commentRepo.GetCursor(ctx, *cursor)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, models.NewValidationError("Invalid cursor")
		}
		return nil, err
	}
	if !belongs(c) {
		return nil, models.NewValidationError("Invalid cursor")
	}
	return c, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}
	if comment.PostID != in.PostID {
		return models.NewNotFoundError("Comment", in.CommentID)
	}
	if comment.UserID != in.UserID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, comment)
}

// NormalizePageSize clamps a requested page size to (0, MaxPageSize].
func NormalizePageSize(n int) int {
	switch {
	case n <= 0:
		return DefaultPageSize
	case n > MaxPageSize:
		return MaxPageSize
	default:
		return n
	}
}
