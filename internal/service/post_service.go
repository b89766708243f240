package service

import (
	"context"
	"log/slog"

	"auconnect/internal/middleware"
	"auconnect/internal/models"
	"auconnect/internal/repository"
)

type PostService struct {
	postRepo      repository.PostRepository
	userRepo      repository.UserRepository
	notifications NotificationCreator
}

// SharePostInput records a share of PostID. SharedByUserID names the owner of
// a shared link; when it resolves to a user, that user is credited instead
// of the requester.
type SharePostInput struct {
	UserID         uint
	PostID         uint
	SharedByUserID *uint
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notifications NotificationCreator,
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// ListUserPostsInput selects one page of the posts authored by UserID.
type ListUserPostsInput struct {
	UserID uint
	Cursor *uint
	Limit  int
}

func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// SharePost increments the share counter and notifies the post author. It
// returns the updated share count.
func (s *PostService) SharePost(ctx context.Context, in SharePostInput) (int64, error) {
	if in.UserID == 0 {
		return 0, models.NewUnauthorizedError("Authentication required")
	}

	actorID := in.UserID
	if in.SharedByUserID != nil && *in.SharedByUserID != in.UserID {
		if sharer, err := s.userRepo.GetByID(ctx, *in.SharedByUserID); err == nil {
			actorID = sharer.ID
		} else if models.ErrorCode(err) != models.CodeNotFound {
			return 0, err
		}
	}

	post, err := s.postRepo.IncrementShareCount(ctx, in.PostID)
	if err != nil {
		return 0, err
	}

	if s.notifications != nil && post.UserID != actorID {
		entityID := post.ID
		if _, err := s.notifications.CreateNotification(ctx, CreateNotificationInput{
			RecipientID: post.UserID,
			FromUserID:  actorID,
			Type:        models.NotificationPostShared,
			EntityID:    &entityID,
		}); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to create share notification",
				slog.Uint64("post_id", uint64(post.ID)),
				slog.String("error", err.Error()),
			)
		}
	}

	return post.ShareCount, nil
}

// ListUserPosts returns one page of a user's posts for their profile, newest
// first. The cursor is the id of the last post of the previous page.
func (s *PostService) ListUserPosts(ctx context.Context, in ListUserPostsInput) (*models.PostPage, error) {
	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	var after *models.Post
	if in.Cursor != nil {
		cursor, err := s.postRepo.GetByID(ctx, *in.Cursor)
		if err != nil {
			if models.ErrorCode(err) == models.CodeNotFound {
				return nil, models.NewValidationError("Invalid cursor")
			}
			return nil, err
		}
		if cursor.UserID != in.UserID {
			return nil, models.NewValidationError("Invalid cursor")
		}
		after = cursor
	}

	limit := NormalizePageSize(in.Limit)
	rows, err := s.postRepo.ListByUser(ctx, in.UserID, after, limit+1)
	if err != nil {
		return nil, err
	}

	page := &models.PostPage{Posts: rows}
	if len(rows) > limit {
		page.Posts = rows[:limit]
		next := page.Posts[limit-1].ID
		page.NextCursor = &next
	}
	if page.Posts == nil {
		page.Posts = []*models.Post{}
	}
	return page, nil
}
