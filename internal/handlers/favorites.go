package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-portal/internal/database"
	"marketplace-portal/internal/models"
)

// FavoriteHandler handles saved listings
type FavoriteHandler struct {
	favorites database.FavoriteStore
	listings  database.ListingStore
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favorites database.FavoriteStore, listings database.ListingStore) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, listings: listings}
}

type favoriteRequest struct {
	PropertyID *uint `json:"property_id"`
	VehicleID  *uint `json:"vehicle_id"`
}

// Add saves a listing for the authenticated user
func (h *FavoriteHandler) Add(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "property_id or vehicle_id is required")
		return
	}

	ref := models.ListingRef{PropertyID: req.PropertyID, VehicleID: req.VehicleID}
	if err := ref.Validate(); err != nil {
		respondError(c, err)
		return
	}

	// The listing must exist and be visible
	listing, err := h.listings.Resolve(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}

	fav, err := h.favorites.Add(c.Request.Context(), currentUserID(c), models.RefTo(listing))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, fav)
}

// Remove drops a saved listing
func (h *FavoriteHandler) Remove(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "property_id or vehicle_id is required")
		return
	}

	ref := models.ListingRef{PropertyID: req.PropertyID, VehicleID: req.VehicleID}
	if err := ref.Validate(); err != nil {
		respondError(c, err)
		return
	}

	if err := h.favorites.Remove(c.Request.Context(), currentUserID(c), ref); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, nil, "Favorite removed")
}

// List returns the authenticated user's saved listings
func (h *FavoriteHandler) List(c *gin.Context) {
	favorites, err := h.favorites.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, favorites)
}
