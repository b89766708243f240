package repository

import "gorm.io/gorm"

// withDeletedUsers includes soft-deleted accounts in author preloads.
func withDeletedUsers(tx *gorm.DB) *gorm.DB {
	return tx.Unscoped()
}
