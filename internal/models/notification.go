package models

import "time"

// NotificationType enumerates the events a user can be notified about.
type NotificationType string

const (
	NotificationConnectionRequest  NotificationType = "CONNECTION_REQUEST"
	NotificationConnectionAccepted NotificationType = "CONNECTION_ACCEPTED"
	NotificationPostLiked          NotificationType = "POST_LIKED"
	NotificationPostCommented      NotificationType = "POST_COMMENTED"
	NotificationCommentReplied     NotificationType = "COMMENT_REPLIED"
	NotificationPostShared         NotificationType = "POST_SHARED"
	NotificationPostVoted          NotificationType = "POST_VOTED"
	NotificationJobApplication     NotificationType = "JOB_APPLICATION"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationConnectionRequest,
		NotificationConnectionAccepted,
		NotificationPostLiked,
		NotificationPostCommented,
		NotificationCommentReplied,
		NotificationPostShared,
		NotificationPostVoted,
		NotificationJobApplication:
		return true
	}
	return false
}

// SendsEmail reports whether a notification of type t also triggers an email.
func (t NotificationType) SendsEmail() bool {
	return t == NotificationConnectionRequest || t == NotificationConnectionAccepted
}

// Notification is an event addressed to UserID. EntityID is polymorphic: its
// meaning depends on Type. It holds a post ID for post and comment events, a
// job post ID for JOB_APPLICATION and a user ID for connection events.
// Listings translate the job post ID to its owning post ID.
type Notification struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     uint             `gorm:"not null;index:idx_notifications_inbox,priority:1" json:"userId"`
	FromUserID uint             `gorm:"not null" json:"fromUserId"`
	FromUser   User             `gorm:"foreignKey:FromUserID" json:"-"`
	Type       NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	EntityID   *uint            `json:"entityId"`
	IsRead     bool             `gorm:"not null;default:false;index:idx_notifications_inbox,priority:2" json:"isRead"`
	CreatedAt  time.Time        `gorm:"index" json:"createdAt"`
}

// NotificationView is a notification as returned to its recipient.
type NotificationView struct {
	Notification
	FromUser UserSummary `json:"fromUser"`
}
