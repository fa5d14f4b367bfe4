package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-portal/internal/messaging"
	"marketplace-portal/internal/models"
	"marketplace-portal/internal/observability"
)

// MessageHandler handles conversations and messages
type MessageHandler struct {
	svc *messaging.Service
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(svc *messaging.Service) *MessageHandler {
	return &MessageHandler{svc: svc}
}

type startConversationRequest struct {
	SellerID   uint   `json:"seller_id" binding:"required"`
	PropertyID *uint  `json:"property_id"`
	VehicleID  *uint  `json:"vehicle_id"`
	Message    string `json:"message" binding:"required"`
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// StartConversation resolves (or creates) the thread for a listing and
// appends the buyer's message.
func (h *MessageHandler) StartConversation(c *gin.Context) {
	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "seller_id and message are required")
		return
	}

	ref := models.ListingRef{PropertyID: req.PropertyID, VehicleID: req.VehicleID}
	conv, msg, err := h.svc.StartConversation(c.Request.Context(), currentUserID(c), req.SellerID, ref, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	observability.IncMessageSent()

	respondOK(c, http.StatusCreated, gin.H{
		"conversation": conv,
		"message":      msg,
	})
}

// ListConversations returns the caller's inbox, most recent first
func (h *MessageHandler) ListConversations(c *gin.Context) {
	summaries, err := h.svc.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, summaries)
}

// GetConversation returns the full thread. Opening the thread marks the
// other party's messages as read.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	detail, err := h.svc.Detail(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, detail)
}

// SendMessage appends a message to an existing conversation
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "content is required")
		return
	}

	msg, err := h.svc.Send(c.Request.Context(), c.Param("id"), currentUserID(c), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	observability.IncMessageSent()

	respondOK(c, http.StatusCreated, msg)
}

// UnreadCount returns the caller's total unread message count
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	count, err := h.svc.UnreadCount(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"count": count})
}
