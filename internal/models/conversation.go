package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a message thread between one buyer and one seller about one
// listing. The composite unique indexes close the find-or-create race: two
// concurrent first-contact requests for the same triple collapse onto one row
// at the storage layer.
type Conversation struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	BuyerID       uint      `gorm:"not null;index;uniqueIndex:idx_conv_property,priority:1;uniqueIndex:idx_conv_vehicle,priority:1" json:"buyer_id"`
	SellerID      uint      `gorm:"not null;index;uniqueIndex:idx_conv_property,priority:2;uniqueIndex:idx_conv_vehicle,priority:2" json:"seller_id"`
	PropertyID    *uint     `gorm:"uniqueIndex:idx_conv_property,priority:3" json:"property_id,omitempty"`
	VehicleID     *uint     `gorm:"uniqueIndex:idx_conv_vehicle,priority:3" json:"vehicle_id,omitempty"`
	LastMessageAt time.Time `gorm:"type:datetime;not null;index:idx_conv_recency,sort:desc" json:"last_message_at"`
	CreatedAt     time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`

	Messages []Message `gorm:"foreignKey:ConversationID;references:ID" json:"messages,omitempty"`
}

// TableName specifies the table name
func (Conversation) TableName() string {
	return "conversations"
}

// NewConversation builds a conversation with a fresh UUID for the triple.
// Validate the ref before calling.
func NewConversation(buyerID, sellerID uint, ref ListingRef) *Conversation {
	return &Conversation{
		ID:            uuid.New().String(),
		BuyerID:       buyerID,
		SellerID:      sellerID,
		PropertyID:    ref.PropertyID,
		VehicleID:     ref.VehicleID,
		LastMessageAt: time.Now(),
	}
}

// Ref returns the listing this conversation is about
func (c *Conversation) Ref() ListingRef {
	return ListingRef{PropertyID: c.PropertyID, VehicleID: c.VehicleID}
}

// HasParticipant reports whether userID is the buyer or the seller
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.BuyerID == userID || c.SellerID == userID
}

// OtherParticipant returns the participant that is not userID
func (c *Conversation) OtherParticipant(userID uint) uint {
	if c.BuyerID == userID {
		return c.SellerID
	}
	return c.BuyerID
}

// Message belongs to exactly one conversation. IsRead flips to true when the
// non-sender opens the conversation.
type Message struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID string    `gorm:"type:varchar(36);not null;index" json:"conversation_id"`
	SenderID       uint      `gorm:"not null;index" json:"sender_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	IsRead         bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt      time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (Message) TableName() string {
	return "messages"
}
