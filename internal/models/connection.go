package models

import "time"

// ConnectionStatus represents the state of a connection request.
type ConnectionStatus string

const (
	// ConnectionStatusPending indicates a request awaiting the addressee.
	ConnectionStatusPending ConnectionStatus = "pending"
	// ConnectionStatusAccepted indicates two connected users.
	ConnectionStatusAccepted ConnectionStatus = "accepted"
)

// Connection links two users. Direction matters while pending: the
// addressee is the only one who can accept.
type Connection struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RequesterID uint             `gorm:"not null;uniqueIndex:idx_connection_users" json:"requesterId"`
	AddresseeID uint             `gorm:"not null;uniqueIndex:idx_connection_users" json:"addresseeId"`
	Status      ConnectionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`

	Requester User `gorm:"foreignKey:RequesterID" json:"-"`
	Addressee User `gorm:"foreignKey:AddresseeID" json:"-"`
}

// TableName specifies the table name for GORM
func (Connection) TableName() string {
	return "connections"
}
