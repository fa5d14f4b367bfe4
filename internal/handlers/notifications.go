package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-portal/internal/database"
)

// NotificationHandler handles notification preferences
type NotificationHandler struct {
	store database.NotificationStore
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(store database.NotificationStore) *NotificationHandler {
	return &NotificationHandler{store: store}
}

type preferencesRequest struct {
	OnMessage       *bool `json:"on_message"`
	OnFavoriteShift *bool `json:"on_favorite_shift"`
}

// GetPreferences returns the caller's notification preferences
func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	pref, err := h.store.PreferenceFor(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, pref)
}

// UpdatePreferences upserts the caller's notification preferences.
// Omitted fields keep their current value.
func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	pref, err := h.store.PreferenceFor(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if req.OnMessage != nil {
		pref.OnMessage = *req.OnMessage
	}
	if req.OnFavoriteShift != nil {
		pref.OnFavoriteShift = *req.OnFavoriteShift
	}
	pref.UserID = currentUserID(c)

	if err := h.store.UpsertPreference(c.Request.Context(), pref); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, pref)
}
