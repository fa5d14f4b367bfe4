package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace-portal/internal/models"
	"marketplace-portal/internal/search"
)

// SearchHandler handles full-text listing search
type SearchHandler struct {
	client *search.SearchClient
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(client *search.SearchClient) *SearchHandler {
	return &SearchHandler{client: client}
}

// Search runs a filtered full-text search over active listings
func (h *SearchHandler) Search(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "Search is not available",
		})
		return
	}

	params := search.FilterParams{
		Query:       c.Query("q"),
		Kind:        models.ListingKind(c.Query("kind")),
		ListingType: c.Query("listing_type"),
		City:        c.Query("city"),
		MinPrice:    queryFloat(c, "min_price"),
		MaxPrice:    queryFloat(c, "max_price"),
		MinRooms:    queryInt(c, "min_rooms"),
		MaxMileage:  queryInt(c, "max_mileage"),
		MinYear:     queryInt(c, "min_year"),
		SortBy:      c.Query("sort"),
		Limit:       int64(queryIntDefault(c, "limit", 20)),
		Offset:      int64(queryIntDefault(c, "offset", 0)),
	}

	if params.Kind != "" && params.Kind != models.ListingKindProperty && params.Kind != models.ListingKindVehicle {
		respondBadRequest(c, "kind must be property or vehicle")
		return
	}

	start := time.Now()
	result, err := h.client.FilterSearch(params)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("[Search API] query=%q hits=%d duration_ms=%d", params.Query, result.TotalHits, time.Since(start).Milliseconds())

	respondOK(c, http.StatusOK, gin.H{
		"hits":       result.Hits,
		"total_hits": result.TotalHits,
		"facets":     result.Facets,
	})
}

// Facets returns the facet distribution for the browse UI
func (h *SearchHandler) Facets(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "Search is not available",
		})
		return
	}

	facets, err := h.client.GetFacets([]string{"kind", "listing_type", "city"})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, facets)
}
