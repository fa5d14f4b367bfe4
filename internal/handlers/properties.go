package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace-portal/internal/database"
	"marketplace-portal/internal/models"
)

// PropertyHandler handles property listing CRUD
type PropertyHandler struct {
	deps ListingDeps
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(deps ListingDeps) *PropertyHandler {
	return &PropertyHandler{deps: deps}
}

type propertyRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	ListingType string   `json:"listing_type"`
	Price       float64  `json:"price" binding:"required"`
	Currency    string   `json:"currency"`
	City        string   `json:"city"`
	Address     string   `json:"address"`
	Rooms       *int     `json:"rooms"`
	Area        *float64 `json:"area"`
	Floor       *int     `json:"floor"`
	YearBuilt   *int     `json:"year_built"`
}

func (r *propertyRequest) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return "title is required"
	}
	if r.Price < 0 {
		return "price must not be negative"
	}
	if r.ListingType == "" {
		r.ListingType = "sale"
	}
	if r.ListingType != "sale" && r.ListingType != "rent" {
		return "listing_type must be sale or rent"
	}
	if r.Currency == "" {
		r.Currency = "USD"
	}
	return ""
}

// Create creates a new property listing in DRAFT status
func (h *PropertyHandler) Create(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and price are required")
		return
	}
	if msg := req.validate(); msg != "" {
		respondBadRequest(c, msg)
		return
	}

	property := &models.Property{
		OwnerID:     currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		ListingType: req.ListingType,
		Price:       req.Price,
		Currency:    req.Currency,
		City:        req.City,
		Address:     req.Address,
		Rooms:       req.Rooms,
		Area:        req.Area,
		Floor:       req.Floor,
		YearBuilt:   req.YearBuilt,
		Status:      models.StatusDraft,
	}
	if err := h.deps.Listings.CreateProperty(c.Request.Context(), property); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, property)
}

// Get returns one property listing
func (h *PropertyHandler) Get(c *gin.Context) {
	property, ok := h.load(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, property)
}

// List returns property listings matching the query filters
func (h *PropertyHandler) List(c *gin.Context) {
	filters := database.PropertyFilters{
		City:        c.Query("city"),
		ListingType: c.Query("listing_type"),
		Status:      models.StatusActive,
		MinPrice:    queryFloat(c, "min_price"),
		MaxPrice:    queryFloat(c, "max_price"),
		MinRooms:    queryInt(c, "min_rooms"),
		MaxRooms:    queryInt(c, "max_rooms"),
		MinArea:     queryFloat(c, "min_area"),
		MaxArea:     queryFloat(c, "max_area"),
		SortBy:      c.Query("sort"),
		Limit:       queryIntDefault(c, "limit", 20),
		Offset:      queryIntDefault(c, "offset", 0),
	}

	// Owners see all of their own listings regardless of status
	if c.Query("mine") == "true" {
		userID := currentUserID(c)
		filters.OwnerID = &userID
		filters.Status = ""
	}

	page, err := h.deps.Listings.ListProperties(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

// Update edits an owned property listing
func (h *PropertyHandler) Update(c *gin.Context) {
	property, ok := h.load(c)
	if !ok {
		return
	}
	if property.OwnerID != currentUserID(c) && !callerIsAdmin(c) {
		respondError(c, models.ErrForbidden)
		return
	}

	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and price are required")
		return
	}
	if msg := req.validate(); msg != "" {
		respondBadRequest(c, msg)
		return
	}

	oldPrice := property.Price
	property.Title = req.Title
	property.Description = req.Description
	property.ListingType = req.ListingType
	property.Price = req.Price
	property.Currency = req.Currency
	property.City = req.City
	property.Address = req.Address
	property.Rooms = req.Rooms
	property.Area = req.Area
	property.Floor = req.Floor
	property.YearBuilt = req.YearBuilt

	if err := h.deps.Listings.UpdateProperty(c.Request.Context(), property); err != nil {
		respondError(c, err)
		return
	}

	if err := h.deps.History.RecordPriceChange(property, currentUserID(c), oldPrice, property.Price); err != nil {
		log.Printf("[API] history record failed kind=property id=%d: %v", property.ID, err)
	}

	if property.Status == models.StatusActive && h.deps.Search != nil {
		if err := h.deps.Search.IndexListing(property); err != nil {
			log.Printf("[Search API] index failed kind=property id=%d: %v", property.ID, err)
		}
	}

	respondOK(c, http.StatusOK, property)
}

// UpdateStatus applies a status transition to an owned property
func (h *PropertyHandler) UpdateStatus(c *gin.Context) {
	property, ok := h.load(c)
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	transitionListing(c, h.deps, property, currentUserID(c), callerIsAdmin(c), req.Status)
}

// Delete soft-removes an owned property
func (h *PropertyHandler) Delete(c *gin.Context) {
	property, ok := h.load(c)
	if !ok {
		return
	}
	removeListing(c, h.deps, property, currentUserID(c), callerIsAdmin(c))
}

// load fetches the property named by the :id path parameter
func (h *PropertyHandler) load(c *gin.Context) (*models.Property, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid property id")
		return nil, false
	}
	property, lerr := h.deps.Listings.PropertyByID(c.Request.Context(), uint(id))
	if lerr != nil {
		respondError(c, lerr)
		return nil, false
	}
	if property.IsRemoved() {
		respondError(c, database.ErrNotFound)
		return nil, false
	}
	return property, true
}

// query parameter helpers shared by the listing handlers

func queryInt(c *gin.Context, name string) *int {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func queryFloat(c *gin.Context, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryIntDefault(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
