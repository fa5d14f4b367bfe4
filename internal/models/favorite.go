package models

import "time"

// Favorite is the join entity between a user and a listing. The composite
// unique indexes enforce at most one favorite per (user, listing) pair;
// MySQL permits multiple NULLs in a unique index, so the two indexes do not
// collide across kinds.
type Favorite struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_fav_property,priority:1;uniqueIndex:idx_fav_vehicle,priority:1" json:"user_id"`
	PropertyID *uint     `gorm:"uniqueIndex:idx_fav_property,priority:2" json:"property_id,omitempty"`
	VehicleID  *uint     `gorm:"uniqueIndex:idx_fav_vehicle,priority:2" json:"vehicle_id,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Property *Property `gorm:"foreignKey:PropertyID;references:ID" json:"property,omitempty"`
	Vehicle  *Vehicle  `gorm:"foreignKey:VehicleID;references:ID" json:"vehicle,omitempty"`
}

// TableName specifies the table name
func (Favorite) TableName() string {
	return "favorites"
}

// Ref returns the favorited listing reference
func (f *Favorite) Ref() ListingRef {
	return ListingRef{PropertyID: f.PropertyID, VehicleID: f.VehicleID}
}
