package models

import "time"

// DeleteLog records physically deleted listings for audit
type DeleteLog struct {
	ID        uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind      ListingKind `gorm:"type:varchar(10);not null;index" json:"kind"`
	ListingID uint        `gorm:"not null;index" json:"listing_id"`
	Title     string      `gorm:"type:text" json:"title"`
	OwnerID   uint        `json:"owner_id"`
	RemovedAt *time.Time  `gorm:"type:datetime" json:"removed_at,omitempty"`
	DeletedAt time.Time   `gorm:"type:datetime;not null;autoCreateTime;index" json:"deleted_at"`
	Reason    string      `gorm:"type:varchar(50);not null" json:"reason"`
}

// TableName specifies the table name
func (DeleteLog) TableName() string {
	return "delete_logs"
}

// DeleteReason constants
const (
	DeleteReasonExpired   = "retention_expired"
	DeleteReasonModerated = "moderation"
	DeleteReasonManual    = "manual_deletion"
)
