// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an AU Connect member. Accounts are created by the OAuth sign-in
// flow; this service only reads them.
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Username   string         `gorm:"not null;index" json:"username"`
	Email      string         `gorm:"uniqueIndex;not null" json:"-"`
	ProfilePic string         `json:"profilePic"`
	Title      string         `json:"title,omitempty"`
	About      string         `gorm:"type:text" json:"about,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserSummary is the author/sender block embedded in API responses.
type UserSummary struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic"`
}

// Summary returns the public display fields of u.
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		ProfilePic: u.ProfilePic,
	}
}
