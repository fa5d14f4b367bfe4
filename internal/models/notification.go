package models

import "time"

// NotificationPreference holds a user's per-event notification toggles.
// Rows are upserted; a missing row means all defaults (everything on).
type NotificationPreference struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	OnMessage       bool      `gorm:"not null;default:true" json:"on_message"`
	OnFavoriteShift bool      `gorm:"not null;default:true" json:"on_favorite_shift"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

// Notification event types
const (
	NotifyTypeMessage       = "message.received"
	NotifyTypeFavoriteShift = "favorite.status_changed"
)

// NotificationQueue holds pending notification deliveries. The worker polls
// pending rows, publishes them to the event exchange and marks them done,
// retrying failures with backoff.
type NotificationQueue struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipientID uint       `gorm:"not null;index:idx_notify_recipient" json:"recipient_id"`
	Type        string     `gorm:"type:varchar(50);not null" json:"type"`
	Payload     string     `gorm:"type:text" json:"payload,omitempty"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_notify_status" json:"status"`
	Attempts    int        `gorm:"default:0" json:"attempts"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	NextRetryAt *time.Time `gorm:"index:idx_notify_retry" json:"next_retry_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName specifies the table name
func (NotificationQueue) TableName() string {
	return "notification_queue"
}

// Queue status constants
const (
	QueueStatusPending       = "pending"
	QueueStatusProcessing    = "processing"
	QueueStatusDone          = "done"
	QueueStatusFailed        = "failed"
	QueueStatusPermanentFail = "permanent_fail" // recipient gone or payload unusable
)

// MaxDeliveryAttempts before marking a notification as permanently failed
const MaxDeliveryAttempts = 5

// GetNextRetryDelay calculates exponential backoff for delivery retries
func GetNextRetryDelay(attempts int) time.Duration {
	// 1min, 5min, 15min, 1h, 4h
	delays := []time.Duration{
		1 * time.Minute,
		5 * time.Minute,
		15 * time.Minute,
		1 * time.Hour,
		4 * time.Hour,
	}

	if attempts >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[attempts]
}
