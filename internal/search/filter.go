package search

import (
	"fmt"
	"strings"

	"marketplace-portal/internal/models"
)

// FilterParams are the user-facing search filters translated into
// Meilisearch filter expressions.
type FilterParams struct {
	Query       string
	Kind        models.ListingKind
	ListingType string
	City        string
	MinPrice    *float64
	MaxPrice    *float64
	MinRooms    *int
	MaxMileage  *int
	MinYear     *int
	SortBy      string
	Limit       int64
	Offset      int64
}

// FilterSearch performs a filtered search over active listings.
func (s *SearchClient) FilterSearch(params FilterParams) (*SearchResult, error) {
	// Only ACTIVE listings are searchable
	filters := []string{fmt.Sprintf("status = '%s'", models.StatusActive)}

	if params.Kind != "" {
		filters = append(filters, fmt.Sprintf("kind = '%s'", params.Kind))
	}
	if params.ListingType != "" {
		filters = append(filters, fmt.Sprintf("listing_type = '%s'", params.ListingType))
	}
	if params.City != "" {
		filters = append(filters, fmt.Sprintf("city = '%s'", strings.ReplaceAll(params.City, "'", "\\'")))
	}

	// Price range filter
	if params.MinPrice != nil {
		filters = append(filters, fmt.Sprintf("price >= %g", *params.MinPrice))
	}
	if params.MaxPrice != nil {
		filters = append(filters, fmt.Sprintf("price <= %g", *params.MaxPrice))
	}

	// Kind-specific filters
	if params.MinRooms != nil {
		filters = append(filters, fmt.Sprintf("rooms >= %d", *params.MinRooms))
	}
	if params.MaxMileage != nil {
		filters = append(filters, fmt.Sprintf("mileage <= %d", *params.MaxMileage))
	}
	if params.MinYear != nil {
		filters = append(filters, fmt.Sprintf("year >= %d", *params.MinYear))
	}

	var sort []string
	switch params.SortBy {
	case "price_asc":
		sort = []string{"price:asc"}
	case "price_desc":
		sort = []string{"price:desc"}
	case "newest":
		sort = []string{"created_at:desc"}
	case "year_desc":
		sort = []string{"year:desc"}
	case "mileage_asc":
		sort = []string{"mileage:asc"}
	}

	return s.AdvancedSearch(SearchRequest{
		Query:        params.Query,
		Limit:        params.Limit,
		Offset:       params.Offset,
		Filter:       filters,
		Sort:         sort,
		FacetsFilter: []string{"kind", "listing_type", "city"},
	})
}
