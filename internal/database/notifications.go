package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"marketplace-portal/internal/models"
)

// NotificationStore abstracts persistence for preferences and the
// delivery queue.
type NotificationStore interface {
	UpsertPreference(ctx context.Context, pref *models.NotificationPreference) error
	PreferenceFor(ctx context.Context, userID uint) (*models.NotificationPreference, error)

	Enqueue(ctx context.Context, item *models.NotificationQueue) error
	NextPending(ctx context.Context, limit int) ([]models.NotificationQueue, error)
	Save(ctx context.Context, item *models.NotificationQueue) error
	QueueStats(ctx context.Context) (map[string]int64, error)
}

// NotificationRepo is the GORM implementation of NotificationStore.
type NotificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) UpsertPreference(ctx context.Context, pref *models.NotificationPreference) error {
	var existing models.NotificationPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", pref.UserID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return translate(r.db.WithContext(ctx).Create(pref).Error)
	}
	if err != nil {
		return err
	}
	pref.ID = existing.ID
	pref.CreatedAt = existing.CreatedAt
	return translate(r.db.WithContext(ctx).Save(pref).Error)
}

// PreferenceFor returns the user's preferences, falling back to the
// defaults (everything enabled) when they never saved any.
func (r *NotificationRepo) PreferenceFor(ctx context.Context, userID uint) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.NotificationPreference{
			UserID:          userID,
			OnMessage:       true,
			OnFavoriteShift: true,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *NotificationRepo) Enqueue(ctx context.Context, item *models.NotificationQueue) error {
	if item.Status == "" {
		item.Status = models.QueueStatusPending
	}
	return translate(r.db.WithContext(ctx).Create(item).Error)
}

// NextPending returns the next deliverable batch: pending items first,
// then failed ones whose retry time has come.
func (r *NotificationRepo) NextPending(ctx context.Context, limit int) ([]models.NotificationQueue, error) {
	if limit <= 0 {
		limit = 10
	}
	var items []models.NotificationQueue
	err := r.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND next_retry_at <= ?)",
			models.QueueStatusPending, models.QueueStatusFailed, time.Now()).
		Order("created_at ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *NotificationRepo) Save(ctx context.Context, item *models.NotificationQueue) error {
	return translate(r.db.WithContext(ctx).Save(item).Error)
}

func (r *NotificationRepo) QueueStats(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.NotificationQueue{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	stats := make(map[string]int64, len(rows))
	for _, rw := range rows {
		stats[rw.Status] = rw.Count
	}
	return stats, nil
}
