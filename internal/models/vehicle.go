package models

import "time"

// Vehicle is a vehicle listing
type Vehicle struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID     uint   `gorm:"not null;index" json:"owner_id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	ListingType string `gorm:"type:varchar(10);not null;default:'sale';index" json:"listing_type"` // sale or rent

	// Filterable attributes
	Price        float64 `gorm:"type:decimal(14,2);not null;index" json:"price"`
	Currency     string  `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	City         string  `gorm:"type:varchar(100);index" json:"city,omitempty"`
	Make         string  `gorm:"type:varchar(100);index" json:"make,omitempty"`
	Model        string  `gorm:"type:varchar(100);index" json:"model,omitempty"`
	Year         *int    `gorm:"type:int;index" json:"year,omitempty"`
	Mileage      *int    `gorm:"type:int" json:"mileage,omitempty"`
	FuelType     string  `gorm:"type:varchar(20)" json:"fuel_type,omitempty"`
	Transmission string  `gorm:"type:varchar(20)" json:"transmission,omitempty"`

	// Status management
	Status    ListingStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	Version   int           `gorm:"not null;default:0" json:"version"`
	RemovedAt *time.Time    `gorm:"type:datetime" json:"removed_at,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index:idx_vehicles_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`

	Images []ListingImage `gorm:"foreignKey:VehicleID;references:ID" json:"images,omitempty"`
}

// TableName specifies the table name
func (Vehicle) TableName() string {
	return "vehicles"
}

func (v *Vehicle) ListingID() uint              { return v.ID }
func (v *Vehicle) Kind() ListingKind            { return ListingKindVehicle }
func (v *Vehicle) Owner() uint                  { return v.OwnerID }
func (v *Vehicle) CurrentStatus() ListingStatus { return v.Status }
func (v *Vehicle) CurrentVersion() int          { return v.Version }

// IsRemoved reports whether the vehicle has been soft-removed
func (v *Vehicle) IsRemoved() bool {
	return v.RemovedAt != nil
}
