package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a top-level comment on a post (ParentID nil) or a reply to
// another comment on the same post. Deleting a comment leaves its replies in
// place.
type Comment struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	PostID     uint           `gorm:"not null;index:idx_comments_thread,priority:1" json:"postId"`
	ParentID   *uint          `gorm:"index:idx_comments_thread,priority:2" json:"parentId"`
	UserID     uint           `gorm:"not null;index" json:"userId"`
	User       User           `gorm:"foreignKey:UserID" json:"-"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	Username   string         `gorm:"-" json:"username"`
	ProfilePic string         `gorm:"-" json:"profilePic"`
	ReplyCount int64          `gorm:"-" json:"replyCount"`
	CreatedAt  time.Time      `gorm:"index:idx_comments_thread,priority:3" json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsReply reports whether c answers another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// CommentPage is one page of a cursor-paginated comment listing.
// NextCursor is nil when no further rows exist.
type CommentPage struct {
	Comments   []*Comment
	NextCursor *uint
}
