package models

import "time"

// ListingChange records a mutation on a listing (price edits, status
// transitions, moderation actions). Used by the admin recent-changes view.
type ListingChange struct {
	ID         uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind       ListingKind `gorm:"type:varchar(10);not null;index:idx_change_listing" json:"kind"`
	ListingID  uint        `gorm:"not null;index:idx_change_listing,priority:2" json:"listing_id"`
	ActorID    uint        `gorm:"not null" json:"actor_id"`
	ChangeType string      `gorm:"type:varchar(50);not null" json:"change_type"`
	OldValue   string      `gorm:"type:text" json:"old_value,omitempty"`
	NewValue   string      `gorm:"type:text" json:"new_value,omitempty"`
	Note       string      `gorm:"type:text" json:"note,omitempty"`
	DetectedAt time.Time   `gorm:"type:datetime;not null;autoCreateTime;index" json:"detected_at"`
}

// TableName specifies the table name
func (ListingChange) TableName() string {
	return "listing_changes"
}

// ChangeType constants
const (
	ChangeTypePrice     = "price_changed"
	ChangeTypeStatus    = "status_changed"
	ChangeTypeRemoved   = "listing_removed"
	ChangeTypeModerated = "listing_moderated"
)
