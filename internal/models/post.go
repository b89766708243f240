package models

import (
	"time"

	"gorm.io/datatypes"
)

// PostVisibility controls who can see a post.
type PostVisibility string

const (
	VisibilityEveryone PostVisibility = "everyone"
	VisibilityFriends  PostVisibility = "friends"
	VisibilityOnlyMe   PostVisibility = "only-me"
)

// Post types accepted by the feed.
const (
	PostTypeDiscussion = "discussion"
	PostTypeMedia      = "media"
	PostTypeArticle    = "article"
)

// PostMedia references a blob attached to a post. Only the blob name is
// stored; readers resolve it to a short-lived signed URL.
type PostMedia struct {
	BlobName string `json:"blobName"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	MimeType string `json:"mimetype,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// Post is a feed entry. Counters are only changed with SQL-side increments.
type Post struct {
	ID               uint                           `gorm:"primaryKey" json:"id"`
	UserID           uint                           `gorm:"not null;index" json:"userId"`
	User             User                           `gorm:"foreignKey:UserID" json:"-"`
	PostType         string                         `gorm:"type:varchar(20);not null;default:'discussion'" json:"postType"`
	Title            string                         `json:"title,omitempty"`
	Content          string                         `gorm:"type:text" json:"content"`
	Media            datatypes.JSONSlice[PostMedia] `json:"media"`
	Visibility       PostVisibility                 `gorm:"type:varchar(20);not null;default:'everyone'" json:"visibility"`
	CommentsDisabled bool                           `gorm:"not null;default:false" json:"commentsDisabled"`
	LikeCount        int64                          `gorm:"not null;default:0" json:"likeCount"`
	CommentCount     int64                          `gorm:"not null;default:0" json:"commentCount"`
	ShareCount       int64                          `gorm:"not null;default:0" json:"shareCount"`
	Username         string                         `gorm:"-" json:"username"`
	ProfilePic       string                         `gorm:"-" json:"profilePic"`
	CreatedAt        time.Time                      `gorm:"index" json:"createdAt"`
	UpdatedAt        time.Time                      `json:"updatedAt"`
}

// PostPage is one page of a user's posts, newest first.
type PostPage struct {
	Posts      []*Post
	NextCursor *uint
}

// JobStatus is the hiring state of a job posting.
type JobStatus string

const (
	JobStatusOpen   JobStatus = "OPEN"
	JobStatusClosed JobStatus = "CLOSED"
	JobStatusFilled JobStatus = "FILLED"
)

// JobPost is the job-specific part of a post. JOB_APPLICATION notifications
// reference it by ID.
type JobPost struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	PostID             uint      `gorm:"not null;uniqueIndex" json:"postId"`
	Post               Post      `gorm:"foreignKey:PostID" json:"-"`
	JobTitle           string    `gorm:"not null" json:"jobTitle"`
	CompanyName        string    `json:"companyName,omitempty"`
	PositionsAvailable int       `gorm:"not null;default:1" json:"positionsAvailable"`
	Status             JobStatus `gorm:"type:varchar(16);not null;default:'OPEN'" json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
