package server

import (
	"auconnect/internal/models"
	"auconnect/internal/service"
	"auconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CreateCommentRequest is the body of a comment or reply.
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,max=10000"`
	ParentID *uint  `json:"parentId" validate:"omitempty,gt=0"`
}

// CommentListResponse is one page of top-level comments.
type CommentListResponse struct {
	Comments   []*models.Comment `json:"comments"`
	NextCursor *uint             `json:"nextCursor"`
}

// ReplyListResponse is one page of replies.
type ReplyListResponse struct {
	Replies    []*models.Comment `json:"replies"`
	NextCursor *uint             `json:"nextCursor"`
}

// CreateComment godoc
// @Summary Create a comment or reply
// @Tags comments
// @Accept json
// @Produce json
// @Param postId path int true "Post ID"
// @Param request body CreateCommentRequest true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	var req CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return respondError(c, err)
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:   currentUserID(c),
		PostID:   postID,
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ListComments godoc
// @Summary List top-level comments of a post, newest first
// @Tags comments
// @Produce json
// @Param postId path int true "Post ID"
// @Param cursor query int false "Id of the last comment of the previous page"
// @Param limit query int false "Page size (default 10, max 50)"
// @Success 200 {object} CommentListResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/comments [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	cursor, err := parseCursor(c)
	if err != nil {
		return nil
	}

	page, err := s.commentService.ListTopLevelComments(c.UserContext(), service.ListCommentsInput{
		PostID: postID,
		Cursor: cursor,
		Limit:  parsePageSize(c),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(CommentListResponse{Comments: page.Comments, NextCursor: page.NextCursor})
}

// ListReplies godoc
// @Summary List replies to a comment, oldest first
// @Tags comments
// @Produce json
// @Param postId path int true "Post ID"
// @Param commentId path int true "Parent comment ID"
// @Param cursor query int false "Id of the last reply of the previous page"
// @Param limit query int false "Page size (default 10, max 50)"
// @Success 200 {object} ReplyListResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/comments/{commentId}/replies [get]
func (s *Server) ListReplies(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	cursor, err := parseCursor(c)
	if err != nil {
		return nil
	}

	page, err := s.commentService.ListReplies(c.UserContext(), service.ListCommentsInput{
		PostID:    postID,
		CommentID: commentID,
		Cursor:    cursor,
		Limit:     parsePageSize(c),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(ReplyListResponse{Replies: page.Comments, NextCursor: page.NextCursor})
}

// DeleteComment godoc
// @Summary Delete own comment
// @Tags comments
// @Produce json
// @Param postId path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    currentUserID(c),
		PostID:    postID,
		CommentID: commentID,
	}); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}
