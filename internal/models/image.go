package models

import "time"

// ListingImage is an image attached to a listing. Exactly one of PropertyID
// and VehicleID is set. Image bytes are stored base64-encoded in the Data
// column together with the declared content type.
type ListingImage struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID  *uint     `gorm:"index" json:"property_id,omitempty"`
	VehicleID   *uint     `gorm:"index" json:"vehicle_id,omitempty"`
	ContentType string    `gorm:"type:varchar(50);not null" json:"content_type"`
	Data        string    `gorm:"type:longtext;not null" json:"data,omitempty"`
	SortOrder   int       `gorm:"not null;default:0;index" json:"sort_order"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (ListingImage) TableName() string {
	return "listing_images"
}

// Ref returns the listing this image belongs to
func (i *ListingImage) Ref() ListingRef {
	return ListingRef{PropertyID: i.PropertyID, VehicleID: i.VehicleID}
}
