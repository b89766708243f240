package server

import (
	"auconnect/internal/models"
	"auconnect/internal/service"
	"auconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SharePostRequest optionally names the owner of the shared link.
type SharePostRequest struct {
	SharedByUserID *uint `json:"sharedByUserId" validate:"omitempty,gt=0"`
}

// GetPost godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// SharePost godoc
// @Summary Record a share of a post
// @Tags posts
// @Accept json
// @Produce json
// @Param postId path int true "Post ID"
// @Param request body SharePostRequest false "Share attribution"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/share [post]
func (s *Server) SharePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	// An empty or unparsable body is accepted; attribution is optional.
	var req SharePostRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			req = SharePostRequest{}
		}
	}
	if err := validation.Struct(req); err != nil {
		return respondError(c, err)
	}

	shareCount, err := s.postService.SharePost(c.UserContext(), service.SharePostInput{
		UserID:         currentUserID(c),
		PostID:         postID,
		SharedByUserID: req.SharedByUserID,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"shareCount": shareCount,
	})
}

// PostListResponse is one page of a user's posts.
type PostListResponse struct {
	Posts      []*models.Post `json:"posts"`
	NextCursor *uint          `json:"nextCursor"`
}

// ListUserPosts godoc
// @Summary List the posts shown on a user's profile, newest first
// @Tags posts
// @Produce json
// @Param userId path int true "User ID"
// @Param cursor query int false "Id of the last post of the previous page"
// @Param limit query int false "Page size (default 10, max 50)"
// @Success 200 {object} PostListResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{userId}/posts [get]
func (s *Server) ListUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	cursor, err := parseCursor(c)
	if err != nil {
		return nil
	}

	page, err := s.postService.ListUserPosts(c.UserContext(), service.ListUserPostsInput{
		UserID: userID,
		Cursor: cursor,
		Limit:  parsePageSize(c),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(PostListResponse{Posts: page.Posts, NextCursor: page.NextCursor})
}
