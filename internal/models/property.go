package models

import "time"

// Property is a real estate listing
type Property struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID     uint   `gorm:"not null;index" json:"owner_id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	ListingType string `gorm:"type:varchar(10);not null;default:'sale';index" json:"listing_type"` // sale or rent

	// Filterable attributes
	Price     float64  `gorm:"type:decimal(14,2);not null;index" json:"price"`
	Currency  string   `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	City      string   `gorm:"type:varchar(100);index" json:"city,omitempty"`
	Address   string   `gorm:"type:text" json:"address,omitempty"`
	Rooms     *int     `gorm:"type:int;index" json:"rooms,omitempty"`
	Area      *float64 `gorm:"type:decimal(10,2)" json:"area,omitempty"`
	Floor     *int     `gorm:"type:int" json:"floor,omitempty"`
	YearBuilt *int     `gorm:"type:int" json:"year_built,omitempty"`

	// Status management
	Status    ListingStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	Version   int           `gorm:"not null;default:0" json:"version"`
	RemovedAt *time.Time    `gorm:"type:datetime" json:"removed_at,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index:idx_properties_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`

	Images []ListingImage `gorm:"foreignKey:PropertyID;references:ID" json:"images,omitempty"`
}

// TableName specifies the table name
func (Property) TableName() string {
	return "properties"
}

func (p *Property) ListingID() uint              { return p.ID }
func (p *Property) Kind() ListingKind            { return ListingKindProperty }
func (p *Property) Owner() uint                  { return p.OwnerID }
func (p *Property) CurrentStatus() ListingStatus { return p.Status }
func (p *Property) CurrentVersion() int          { return p.Version }

// IsRemoved reports whether the property has been soft-removed
func (p *Property) IsRemoved() bool {
	return p.RemovedAt != nil
}
