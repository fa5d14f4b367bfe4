package history

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"marketplace-portal/internal/models"
)

// Service records listing change history for the moderation feed.
type Service struct {
	db *gorm.DB
}

// NewService creates a new history service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RecordStatusChange logs a status transition
func (s *Service) RecordStatusChange(l models.Listing, actorID uint, from, to models.ListingStatus) error {
	if s.db == nil {
		return nil
	}
	change := &models.ListingChange{
		Kind:       l.Kind(),
		ListingID:  l.ListingID(),
		ActorID:    actorID,
		ChangeType: models.ChangeTypeStatus,
		OldValue:   string(from),
		NewValue:   string(to),
		DetectedAt: time.Now(),
	}
	return s.db.Create(change).Error
}

// RecordPriceChange logs a price update when the value actually moved
func (s *Service) RecordPriceChange(l models.Listing, actorID uint, oldPrice, newPrice float64) error {
	if s.db == nil || oldPrice == newPrice {
		return nil
	}
	change := &models.ListingChange{
		Kind:       l.Kind(),
		ListingID:  l.ListingID(),
		ActorID:    actorID,
		ChangeType: models.ChangeTypePrice,
		OldValue:   fmt.Sprintf("%.2f", oldPrice),
		NewValue:   fmt.Sprintf("%.2f", newPrice),
		DetectedAt: time.Now(),
	}
	return s.db.Create(change).Error
}

// RecordRemoval logs a listing removal
func (s *Service) RecordRemoval(l models.Listing, actorID uint, note string) error {
	if s.db == nil {
		return nil
	}
	change := &models.ListingChange{
		Kind:       l.Kind(),
		ListingID:  l.ListingID(),
		ActorID:    actorID,
		ChangeType: models.ChangeTypeRemoved,
		OldValue:   string(l.CurrentStatus()),
		Note:       note,
		DetectedAt: time.Now(),
	}
	return s.db.Create(change).Error
}

// RecordModeration logs an admin takedown or restore
func (s *Service) RecordModeration(l models.Listing, adminID uint, note string) error {
	if s.db == nil {
		return nil
	}
	change := &models.ListingChange{
		Kind:       l.Kind(),
		ListingID:  l.ListingID(),
		ActorID:    adminID,
		ChangeType: models.ChangeTypeModerated,
		OldValue:   string(l.CurrentStatus()),
		Note:       note,
		DetectedAt: time.Now(),
	}
	return s.db.Create(change).Error
}

// RecentChanges returns the latest change records, newest first
func (s *Service) RecentChanges(limit int) ([]models.ListingChange, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var changes []models.ListingChange
	err := s.db.Order("detected_at DESC").Limit(limit).Find(&changes).Error
	return changes, err
}

// ChangesForListing returns the history of one listing, newest first
func (s *Service) ChangesForListing(kind models.ListingKind, listingID uint) ([]models.ListingChange, error) {
	if s.db == nil {
		return nil, nil
	}
	var changes []models.ListingChange
	err := s.db.Where("kind = ? AND listing_id = ?", kind, listingID).
		Order("detected_at DESC").
		Find(&changes).Error
	return changes, err
}
