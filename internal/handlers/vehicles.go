package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace-portal/internal/database"
	"marketplace-portal/internal/models"
)

// VehicleHandler handles vehicle listing CRUD
type VehicleHandler struct {
	deps ListingDeps
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(deps ListingDeps) *VehicleHandler {
	return &VehicleHandler{deps: deps}
}

type vehicleRequest struct {
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description"`
	ListingType  string  `json:"listing_type"`
	Price        float64 `json:"price" binding:"required"`
	Currency     string  `json:"currency"`
	City         string  `json:"city"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         *int    `json:"year"`
	Mileage      *int    `json:"mileage"`
	FuelType     string  `json:"fuel_type"`
	Transmission string  `json:"transmission"`
}

func (r *vehicleRequest) validate() string {
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
	if r.Year != nil && (*r.Year < 1900 || *r.Year > time.Now().Year()+1) {
		return "year is out of range"
	}
	if r.Mileage != nil && *r.Mileage < 0 {
		return "mileage must not be negative"
	}
	return ""
}

// Create creates a new vehicle listing in DRAFT status
func (h *VehicleHandler) Create(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and price are required")
		return
	}
	if msg := req.validate(); msg != "" {
		respondBadRequest(c, msg)
		return
	}

	vehicle := &models.Vehicle{
		OwnerID:      currentUserID(c),
		Title:        req.Title,
		Description:  req.Description,
		ListingType:  req.ListingType,
		Price:        req.Price,
		Currency:     req.Currency,
		City:         req.City,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Mileage:      req.Mileage,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		Status:       models.StatusDraft,
	}
	if err := h.deps.Listings.CreateVehicle(c.Request.Context(), vehicle); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, vehicle)
}

// Get returns one vehicle listing
func (h *VehicleHandler) Get(c *gin.Context) {
	vehicle, ok := h.load(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, vehicle)
}

// List returns vehicle listings matching the query filters
func (h *VehicleHandler) List(c *gin.Context) {
	filters := database.VehicleFilters{
		City:        c.Query("city"),
		ListingType: c.Query("listing_type"),
		Status:      models.StatusActive,
		Make:        c.Query("make"),
		Model:       c.Query("model"),
		MinPrice:    queryFloat(c, "min_price"),
		MaxPrice:    queryFloat(c, "max_price"),
		MinYear:     queryInt(c, "min_year"),
		MaxYear:     queryInt(c, "max_year"),
		MaxMileage:  queryInt(c, "max_mileage"),
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

	page, err := h.deps.Listings.ListVehicles(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

// Update edits an owned vehicle listing
func (h *VehicleHandler) Update(c *gin.Context) {
	vehicle, ok := h.load(c)
	if !ok {
		return
	}
	if vehicle.OwnerID != currentUserID(c) && !callerIsAdmin(c) {
		respondError(c, models.ErrForbidden)
		return
	}

	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and price are required")
		return
	}
	if msg := req.validate(); msg != "" {
		respondBadRequest(c, msg)
		return
	}

	oldPrice := vehicle.Price
	vehicle.Title = req.Title
	vehicle.Description = req.Description
	vehicle.ListingType = req.ListingType
	vehicle.Price = req.Price
	vehicle.Currency = req.Currency
	vehicle.City = req.City
	vehicle.Make = req.Make
	vehicle.Model = req.Model
	vehicle.Year = req.Year
	vehicle.Mileage = req.Mileage
	vehicle.FuelType = req.FuelType
	vehicle.Transmission = req.Transmission

	if err := h.deps.Listings.UpdateVehicle(c.Request.Context(), vehicle); err != nil {
		respondError(c, err)
		return
	}

	if err := h.deps.History.RecordPriceChange(vehicle, currentUserID(c), oldPrice, vehicle.Price); err != nil {
		log.Printf("[API] history record failed kind=vehicle id=%d: %v", vehicle.ID, err)
	}

	if vehicle.Status == models.StatusActive && h.deps.Search != nil {
		if err := h.deps.Search.IndexListing(vehicle); err != nil {
			log.Printf("[Search API] index failed kind=vehicle id=%d: %v", vehicle.ID, err)
		}
	}

	respondOK(c, http.StatusOK, vehicle)
}

// UpdateStatus applies a status transition to an owned vehicle
func (h *VehicleHandler) UpdateStatus(c *gin.Context) {
	vehicle, ok := h.load(c)
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	transitionListing(c, h.deps, vehicle, currentUserID(c), callerIsAdmin(c), req.Status)
}

// Delete soft-removes an owned vehicle
func (h *VehicleHandler) Delete(c *gin.Context) {
	vehicle, ok := h.load(c)
	if !ok {
		return
	}
	removeListing(c, h.deps, vehicle, currentUserID(c), callerIsAdmin(c))
}

// load fetches the vehicle named by the :id path parameter
func (h *VehicleHandler) load(c *gin.Context) (*models.Vehicle, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid vehicle id")
		return nil, false
	}
	vehicle, lerr := h.deps.Listings.VehicleByID(c.Request.Context(), uint(id))
	if lerr != nil {
		respondError(c, lerr)
		return nil, false
	}
	if vehicle.IsRemoved() {
		respondError(c, database.ErrNotFound)
		return nil, false
	}
	return vehicle, true
}
