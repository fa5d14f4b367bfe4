package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace-portal/internal/config"
	"marketplace-portal/internal/database"
	"marketplace-portal/internal/models"
)

// allowedImageTypes lists the accepted upload content types
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ImageHandler handles listing image uploads
type ImageHandler struct {
	images   database.ImageStore
	listings database.ListingStore
	upload   config.UploadConfig
}

// NewImageHandler creates a new image handler
func NewImageHandler(images database.ImageStore, listings database.ListingStore, upload config.UploadConfig) *ImageHandler {
	return &ImageHandler{images: images, listings: listings, upload: upload}
}

type imageUploadRequest struct {
	PropertyID  *uint  `json:"property_id"`
	VehicleID   *uint  `json:"vehicle_id"`
	ContentType string `json:"content_type" binding:"required"`
	Data        string `json:"data" binding:"required"`
	SortOrder   int    `json:"sort_order"`
}

// Upload attaches a base64-encoded image to an owned listing
func (h *ImageHandler) Upload(c *gin.Context) {
	var req imageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "content_type and data are required")
		return
	}

	ref := models.ListingRef{PropertyID: req.PropertyID, VehicleID: req.VehicleID}
	if err := ref.Validate(); err != nil {
		respondError(c, err)
		return
	}

	if !allowedImageTypes[req.ContentType] {
		respondBadRequest(c, "content_type must be image/jpeg, image/png or image/webp")
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		respondBadRequest(c, "data must be valid base64")
		return
	}
	if h.upload.MaxImageBytes > 0 && len(raw) > h.upload.MaxImageBytes {
		respondBadRequest(c, "image exceeds maximum size")
		return
	}

	listing, err := h.listings.Resolve(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}
	if listing.Owner() != currentUserID(c) && !callerIsAdmin(c) {
		respondError(c, models.ErrForbidden)
		return
	}

	if h.upload.MaxImagesPerListing > 0 {
		count, err := h.images.CountForListing(c.Request.Context(), ref)
		if err != nil {
			respondError(c, err)
			return
		}
		if count >= int64(h.upload.MaxImagesPerListing) {
			respondBadRequest(c, "listing already has the maximum number of images")
			return
		}
	}

	img := &models.ListingImage{
		PropertyID:  ref.PropertyID,
		VehicleID:   ref.VehicleID,
		ContentType: req.ContentType,
		Data:        req.Data,
		SortOrder:   req.SortOrder,
	}
	if err := h.images.Add(c.Request.Context(), img); err != nil {
		respondError(c, err)
		return
	}

	// Echo metadata only, not the payload
	img.Data = ""
	respondOK(c, http.StatusCreated, img)
}

// List returns the image metadata for one listing, in sort order
func (h *ImageHandler) List(c *gin.Context) {
	ref := models.ListingRef{
		PropertyID: queryUint(c, "property_id"),
		VehicleID:  queryUint(c, "vehicle_id"),
	}
	if err := ref.Validate(); err != nil {
		respondError(c, err)
		return
	}

	images, err := h.images.ListForListing(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range images {
		images[i].Data = ""
	}

	respondOK(c, http.StatusOK, gin.H{
		"images": images,
		"count":  len(images),
	})
}

// Get streams one image back as binary
func (h *ImageHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid image id")
		return
	}

	img, err := h.images.ByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	raw, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, img.ContentType, raw)
}

// Delete removes an image from an owned listing
func (h *ImageHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid image id")
		return
	}

	img, err := h.images.ByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	listing, err := h.listings.Resolve(c.Request.Context(), img.Ref())
	if err != nil {
		respondError(c, err)
		return
	}
	if listing.Owner() != currentUserID(c) && !callerIsAdmin(c) {
		respondError(c, models.ErrForbidden)
		return
	}

	if err := h.images.Delete(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, nil, "Image deleted")
}
