package cleanup

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"marketplace-portal/internal/models"
)

// Service handles physical deletion of old removed listings
type Service struct {
	db *gorm.DB
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CleanupConfig holds configuration for cleanup operations
type CleanupConfig struct {
	RetentionDays    int  // Days to keep removed listings before physical deletion (default: 90)
	MaxDeletionCount int  // Maximum number of listings to delete in one run (safety limit)
	DryRun           bool // If true, only log what would be deleted without actually deleting
}

// DefaultCleanupConfig returns default configuration
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		RetentionDays:    90,
		MaxDeletionCount: 10000,
		DryRun:           false,
	}
}

// CleanupResult holds the result of a cleanup operation
type CleanupResult struct {
	TargetCount     int       `json:"target_count"`  // Number of listings eligible for deletion
	DeletedCount    int       `json:"deleted_count"` // Number of listings actually deleted
	ErrorCount      int       `json:"error_count"`   // Number of errors encountered
	DryRun          bool      `json:"dry_run"`       // Whether this was a dry run
	ExecutedAt      time.Time `json:"executed_at"`   // When the cleanup was executed
	DeletedListings []string  `json:"deleted_listings"`
	Errors          []string  `json:"errors,omitempty"`
}

// FindExpiredListings finds listings that are eligible for physical deletion:
// soft-removed longer ago than retentionDays.
func (s *Service) FindExpiredListings(retentionDays int) ([]models.Listing, error) {
	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	var properties []models.Property
	if err := s.db.Where("removed_at IS NOT NULL AND removed_at < ?", cutoffDate).
		Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to find expired properties: %w", err)
	}

	var vehicles []models.Vehicle
	if err := s.db.Where("removed_at IS NOT NULL AND removed_at < ?", cutoffDate).
		Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to find expired vehicles: %w", err)
	}

	listings := make([]models.Listing, 0, len(properties)+len(vehicles))
	for i := range properties {
		listings = append(listings, &properties[i])
	}
	for i := range vehicles {
		listings = append(listings, &vehicles[i])
	}

	log.Printf("[Cleanup] found %d listings expired before %s", len(listings), cutoffDate.Format("2006-01-02"))
	return listings, nil
}

// PhysicallyDelete performs physical deletion of expired listings
func (s *Service) PhysicallyDelete(config CleanupConfig) (*CleanupResult, error) {
	result := &CleanupResult{
		DryRun:     config.DryRun,
		ExecutedAt: time.Now(),
	}

	expired, err := s.FindExpiredListings(config.RetentionDays)
	if err != nil {
		return nil, err
	}

	result.TargetCount = len(expired)

	if result.TargetCount == 0 {
		log.Println("[Cleanup] no expired listings found for deletion")
		return result, nil
	}

	// Safety check: abort if too many listings would be deleted
	if result.TargetCount > config.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d listings exceed max deletion limit of %d",
			result.TargetCount, config.MaxDeletionCount)
	}

	log.Printf("[Cleanup] starting: %d listings to delete (retention: %d days, dry-run: %v)",
		result.TargetCount, config.RetentionDays, config.DryRun)

	for _, l := range expired {
		key := fmt.Sprintf("%s-%d", l.Kind(), l.ListingID())

		if config.DryRun {
			log.Printf("[Cleanup] [DRY-RUN] would delete %s", key)
			result.DeletedListings = append(result.DeletedListings, key)
			result.DeletedCount++
			continue
		}

		if err := s.deleteOne(l); err != nil {
			errMsg := fmt.Sprintf("failed to delete %s: %v", key, err)
			log.Printf("[Cleanup] ERROR: %s", errMsg)
			result.Errors = append(result.Errors, errMsg)
			result.ErrorCount++
			continue
		}

		log.Printf("[Cleanup] physically deleted %s", key)
		result.DeletedListings = append(result.DeletedListings, key)
		result.DeletedCount++
	}

	log.Printf("[Cleanup] completed: %d/%d deleted, %d errors (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.ErrorCount, config.DryRun)

	return result, nil
}

// deleteOne removes a single listing and its dependents in one transaction,
// leaving a delete log row behind.
func (s *Service) deleteOne(l models.Listing) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		deleteLog := models.DeleteLog{
			Kind:      l.Kind(),
			ListingID: l.ListingID(),
			OwnerID:   l.Owner(),
			Reason:    models.DeleteReasonExpired,
		}

		switch v := l.(type) {
		case *models.Property:
			deleteLog.Title = v.Title
			deleteLog.RemovedAt = v.RemovedAt
			if err := tx.Create(&deleteLog).Error; err != nil {
				return err
			}
			if err := tx.Where("property_id = ?", v.ID).Delete(&models.ListingImage{}).Error; err != nil {
				return err
			}
			if err := tx.Where("property_id = ?", v.ID).Delete(&models.Favorite{}).Error; err != nil {
				return err
			}
			return tx.Delete(v).Error
		case *models.Vehicle:
			deleteLog.Title = v.Title
			deleteLog.RemovedAt = v.RemovedAt
			if err := tx.Create(&deleteLog).Error; err != nil {
				return err
			}
			if err := tx.Where("vehicle_id = ?", v.ID).Delete(&models.ListingImage{}).Error; err != nil {
				return err
			}
			if err := tx.Where("vehicle_id = ?", v.ID).Delete(&models.Favorite{}).Error; err != nil {
				return err
			}
			return tx.Delete(v).Error
		default:
			return fmt.Errorf("unknown listing type %T", l)
		}
	})
}

// GetDeleteStats returns statistics about deleted listings
func (s *Service) GetDeleteStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	// Total delete logs
	var totalDeleted int64
	if err := s.db.Model(&models.DeleteLog{}).Count(&totalDeleted).Error; err != nil {
		return nil, err
	}
	stats["total_deleted"] = totalDeleted

	// Delete logs by reason
	var reasonCounts []struct {
		Reason string
		Count  int64
	}
	if err := s.db.Model(&models.DeleteLog{}).
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, err
	}

	reasonMap := make(map[string]int64)
	for _, rc := range reasonCounts {
		reasonMap[rc.Reason] = rc.Count
	}
	stats["by_reason"] = reasonMap

	// Recent deletions (last 30 days)
	var recentDeleted int64
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	if err := s.db.Model(&models.DeleteLog{}).
		Where("deleted_at >= ?", thirtyDaysAgo).
		Count(&recentDeleted).Error; err != nil {
		return nil, err
	}
	stats["deleted_last_30_days"] = recentDeleted

	// Soft-removed listings still inside the retention window
	var removedProperties, removedVehicles int64
	if err := s.db.Model(&models.Property{}).
		Where("removed_at IS NOT NULL").
		Count(&removedProperties).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Vehicle{}).
		Where("removed_at IS NOT NULL").
		Count(&removedVehicles).Error; err != nil {
		return nil, err
	}
	stats["currently_removed"] = removedProperties + removedVehicles

	return stats, nil
}

// GetRecentDeleteLogs returns recent delete log entries
func (s *Service) GetRecentDeleteLogs(limit int) ([]models.DeleteLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []models.DeleteLog
	err := s.db.Order("deleted_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
