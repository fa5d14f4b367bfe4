package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"marketplace-portal/internal/models"
)

// ConversationStore abstracts persistence for conversations and messages.
type ConversationStore interface {
	ByID(ctx context.Context, id string) (*models.Conversation, error)
	FindByTriple(ctx context.Context, buyerID, sellerID uint, ref models.ListingRef) (*models.Conversation, error)
	Create(ctx context.Context, c *models.Conversation) error
	ListForUser(ctx context.Context, userID uint) ([]models.Conversation, error)

	AppendMessage(ctx context.Context, m *models.Message) error
	Messages(ctx context.Context, conversationID string) ([]models.Message, error)
	LastMessage(ctx context.Context, conversationID string) (*models.Message, error)
	MarkRead(ctx context.Context, conversationID string, viewerID uint) (int64, error)
	UnreadInConversation(ctx context.Context, conversationID string, viewerID uint) (int64, error)
	TotalUnread(ctx context.Context, userID uint) (int64, error)
	CountMessagesSince(ctx context.Context, since time.Time) (int64, error)
}

// ConversationRepo is the GORM implementation of ConversationStore.
type ConversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

func (r *ConversationRepo) ByID(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&conv).Error
	if err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

// FindByTriple looks up the conversation for a (buyer, seller, listing)
// combination. Returns ErrNotFound when no conversation exists yet.
func (r *ConversationRepo) FindByTriple(ctx context.Context, buyerID, sellerID uint, ref models.ListingRef) (*models.Conversation, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).Where("buyer_id = ? AND seller_id = ?", buyerID, sellerID)
	if ref.Kind() == models.ListingKindVehicle {
		q = q.Where("vehicle_id = ?", *ref.VehicleID)
	} else {
		q = q.Where("property_id = ?", *ref.PropertyID)
	}
	var conv models.Conversation
	if err := q.First(&conv).Error; err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

// Create inserts a new conversation. A concurrent insert of the same
// (buyer, seller, listing) triple hits the unique index and returns
// ErrConflict; callers re-run the lookup.
func (r *ConversationRepo) Create(ctx context.Context, c *models.Conversation) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

// ListForUser returns every conversation the user participates in,
// most recently active first.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

// AppendMessage inserts a message and bumps the conversation's
// last_message_at in one transaction.
func (r *ConversationRepo) AppendMessage(ctx context.Context, m *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", m.ConversationID).
			Update("last_message_at", m.CreatedAt).Error
	})
}

func (r *ConversationRepo) Messages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *ConversationRepo) LastMessage(ctx context.Context, conversationID string) (*models.Message, error) {
	var msg models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

// MarkRead flags every message sent by the other party as read.
// The viewer's own messages are never touched.
func (r *ConversationRepo) MarkRead(ctx context.Context, conversationID string, viewerID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, viewerID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *ConversationRepo) UnreadInConversation(ctx context.Context, conversationID string, viewerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, viewerID, false).
		Count(&count).Error
	return count, err
}

// TotalUnread counts unread messages addressed to the user across every
// conversation they participate in, whichever side they are on.
func (r *ConversationRepo) TotalUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("(conversations.buyer_id = ? OR conversations.seller_id = ?)", userID, userID).
		Where("messages.sender_id <> ? AND messages.is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *ConversationRepo) CountMessagesSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}
