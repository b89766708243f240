package service

import (
	"context"

	"auconnect/internal/models"
)

// assemblePage shapes rows fetched with limit+1 into a page: the extra row
// only signals that another page exists. Reply counts for the page come from
// a single grouped query.
func (s *CommentService) assemblePage(ctx context.Context, rows []*models.Comment, limit int) (*models.CommentPage, error) {
	page := &models.CommentPage{Comments: make([]*models.Comment, 0, limit)}
	if len(rows) == 0 {
		return page, nil
	}

	if len(rows) > limit {
		rows = rows[:limit]
		next := rows[len(rows)-1].ID
		page.NextCursor = &next
	}

	ids := make([]uint, len(rows))
	for i, c := range rows {
		ids[i] = c.ID
	}
	counts, err := s.commentRepo.CountReplies(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, c := range rows {
		c.ReplyCount = counts[c.ID]
		c.Username = c.User.Username
		c.ProfilePic = c.User.ProfilePic
		page.Comments = append(page.Comments, c)
	}
	return page, nil
}
