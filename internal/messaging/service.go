package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"marketplace-portal/internal/database"
	"marketplace-portal/internal/models"
)

// maxContentLength caps a single message body
const maxContentLength = 4000

// ConversationSummary is a conversation annotated for inbox listings.
type ConversationSummary struct {
	Conversation models.Conversation `json:"conversation"`
	LastMessage  *models.Message     `json:"last_message,omitempty"`
	UnreadCount  int64               `json:"unread_count"`
}

// ConversationDetail is a full thread as returned when a participant
// opens a conversation.
type ConversationDetail struct {
	Conversation models.Conversation `json:"conversation"`
	Messages     []models.Message    `json:"messages"`
}

// Service implements conversation resolution and message threads.
type Service struct {
	conversations database.ConversationStore
	listings      database.ListingStore
	users         database.UserStore
	notifications database.NotificationStore
}

// NewService constructs a messaging Service.
func NewService(
	conversations database.ConversationStore,
	listings database.ListingStore,
	users database.UserStore,
	notifications database.NotificationStore,
) *Service {
	return &Service{
		conversations: conversations,
		listings:      listings,
		users:         users,
		notifications: notifications,
	}
}

// StartConversation resolves the conversation for (buyer, seller, listing),
// creating it when none exists, and appends the buyer's message. Repeated
// contact attempts on the same listing collapse to the same thread.
func (s *Service) StartConversation(ctx context.Context, buyerID, sellerID uint, ref models.ListingRef, content string) (*models.Conversation, *models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, models.Validationf("message content is required")
	}
	if len(content) > maxContentLength {
		return nil, nil, models.Validationf("message content exceeds %d characters", maxContentLength)
	}
	if buyerID == sellerID {
		return nil, nil, models.Validationf("cannot start a conversation with yourself")
	}
	if err := ref.Validate(); err != nil {
		return nil, nil, err
	}

	if _, err := s.users.ByID(ctx, sellerID); err != nil {
		return nil, nil, err
	}

	listing, err := s.listings.Resolve(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	ref = models.RefTo(listing)

	conv, err := s.resolveConversation(ctx, buyerID, sellerID, ref)
	if err != nil {
		return nil, nil, err
	}

	msg, err := s.append(ctx, conv, buyerID, content)
	if err != nil {
		return nil, nil, err
	}
	return conv, msg, nil
}

// resolveConversation finds or creates the thread for the triple. A lost
// insert race hits the unique index; the winner's row is re-read.
func (s *Service) resolveConversation(ctx context.Context, buyerID, sellerID uint, ref models.ListingRef) (*models.Conversation, error) {
	conv, err := s.conversations.FindByTriple(ctx, buyerID, sellerID, ref)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	conv = models.NewConversation(buyerID, sellerID, ref)
	err = s.conversations.Create(ctx, conv)
	if errors.Is(err, database.ErrConflict) {
		return s.conversations.FindByTriple(ctx, buyerID, sellerID, ref)
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// Send appends a message to an existing conversation.
func (s *Service) Send(ctx context.Context, conversationID string, senderID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.Validationf("message content is required")
	}
	if len(content) > maxContentLength {
		return nil, models.Validationf("message content exceeds %d characters", maxContentLength)
	}

	conv, err := s.conversations.ByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, models.ErrForbidden
	}

	return s.append(ctx, conv, senderID, content)
}

func (s *Service) append(ctx context.Context, conv *models.Conversation, senderID uint, content string) (*models.Message, error) {
	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := s.conversations.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.notifyRecipient(ctx, conv, msg)
	return msg, nil
}

// notifyRecipient enqueues a message notification for the other participant,
// honoring their preferences. Failures are logged, never surfaced: delivery
// is best effort and must not fail the send.
func (s *Service) notifyRecipient(ctx context.Context, conv *models.Conversation, msg *models.Message) {
	recipientID := conv.OtherParticipant(msg.SenderID)

	pref, err := s.notifications.PreferenceFor(ctx, recipientID)
	if err != nil {
		log.Printf("[Messaging] preference lookup failed recipient=%d: %v", recipientID, err)
		return
	}
	if !pref.OnMessage {
		return
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"conversation_id": conv.ID,
		"sender_id":       msg.SenderID,
		"preview":         preview(msg.Content),
	})
	item := &models.NotificationQueue{
		RecipientID: recipientID,
		Type:        models.NotifyTypeMessage,
		Payload:     string(payload),
	}
	if err := s.notifications.Enqueue(ctx, item); err != nil {
		log.Printf("[Messaging] notification enqueue failed recipient=%d: %v", recipientID, err)
	}
}

func preview(content string) string {
	const max = 120
	if len(content) <= max {
		return content
	}
	// back up to a rune boundary so multibyte text is never cut mid-rune
	cut := max
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}

// Read marks every message from the other participant as read. Invoked when
// a participant opens the thread.
func (s *Service) Read(ctx context.Context, conversationID string, viewerID uint) error {
	conv, err := s.conversations.ByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(viewerID) {
		return models.ErrForbidden
	}
	_, err = s.conversations.MarkRead(ctx, conversationID, viewerID)
	return err
}

// Detail returns the full thread and marks the other party's messages read.
func (s *Service) Detail(ctx context.Context, conversationID string, viewerID uint) (*ConversationDetail, error) {
	conv, err := s.conversations.ByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(viewerID) {
		return nil, models.ErrForbidden
	}

	if _, err := s.conversations.MarkRead(ctx, conversationID, viewerID); err != nil {
		return nil, err
	}

	msgs, err := s.conversations.Messages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return &ConversationDetail{Conversation: *conv, Messages: msgs}, nil
}

// ListForUser returns all of the user's conversations, most recent first,
// each annotated with its last message and unread count.
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]ConversationSummary, error) {
	convs, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary := ConversationSummary{Conversation: conv}

		last, err := s.conversations.LastMessage(ctx, conv.ID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		summary.LastMessage = last

		unread, err := s.conversations.UnreadInConversation(ctx, conv.ID, userID)
		if err != nil {
			return nil, err
		}
		summary.UnreadCount = unread

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// UnreadCount returns the total number of unread messages addressed to the
// user across all conversations, in either role.
func (s *Service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.conversations.TotalUnread(ctx, userID)
}
