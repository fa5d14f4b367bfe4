package search

import (
	"fmt"

	"github.com/meilisearch/meilisearch-go"

	"marketplace-portal/internal/models"
)

// SearchClient wraps the Meilisearch index holding both listing kinds.
type SearchClient struct {
	client *meilisearch.Client
	index  string
}

func NewSearchClient(host, apiKey string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SearchClient{
		client: client,
		index:  "listings",
	}
}

// Document is the flattened search representation of a listing. Both kinds
// share one index; kind-specific fields are simply absent on the other kind.
type Document struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	ListingID   uint    `json:"listing_id"`
	OwnerID     uint    `json:"owner_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	ListingType string  `json:"listing_type"`
	Status      string  `json:"status"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency,omitempty"`
	City        string  `json:"city,omitempty"`
	Address     string  `json:"address,omitempty"`
	CreatedAt   int64   `json:"created_at"`

	// property fields
	Rooms *int     `json:"rooms,omitempty"`
	Area  *float64 `json:"area,omitempty"`
	Floor *int     `json:"floor,omitempty"`

	// vehicle fields
	Make    string `json:"make,omitempty"`
	Model   string `json:"model,omitempty"`
	Year    *int   `json:"year,omitempty"`
	Mileage *int   `json:"mileage,omitempty"`
}

// DocumentID builds the index-wide unique ID for a listing
func DocumentID(kind models.ListingKind, id uint) string {
	return fmt.Sprintf("%s-%d", kind, id)
}

// BuildDocument flattens a listing into its search document.
func BuildDocument(l models.Listing) Document {
	doc := Document{
		ID:        DocumentID(l.Kind(), l.ListingID()),
		Kind:      string(l.Kind()),
		ListingID: l.ListingID(),
		OwnerID:   l.Owner(),
		Status:    string(l.CurrentStatus()),
	}

	switch v := l.(type) {
	case *models.Property:
		doc.Title = v.Title
		doc.Description = v.Description
		doc.ListingType = v.ListingType
		doc.Price = v.Price
		doc.Currency = v.Currency
		doc.City = v.City
		doc.Address = v.Address
		doc.Rooms = v.Rooms
		doc.Area = v.Area
		doc.Floor = v.Floor
		doc.CreatedAt = v.CreatedAt.Unix()
	case *models.Vehicle:
		doc.Title = v.Title
		doc.Description = v.Description
		doc.ListingType = v.ListingType
		doc.Price = v.Price
		doc.Currency = v.Currency
		doc.City = v.City
		doc.Make = v.Make
		doc.Model = v.Model
		doc.Year = v.Year
		doc.Mileage = v.Mileage
		doc.CreatedAt = v.CreatedAt.Unix()
	}
	return doc
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	// Create index if it doesn't exist
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && err.Error() != "index already exists" {
		return err
	}

	// Configure searchable attributes
	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"title",
		"description",
		"city",
		"address",
		"make",
		"model",
	})
	if err != nil {
		return err
	}

	// Configure filterable attributes
	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"id",
		"kind",
		"listing_type",
		"status",
		"price",
		"city",
		"rooms",
		"area",
		"make",
		"model",
		"year",
		"mileage",
	})
	if err != nil {
		return err
	}

	// Configure sortable attributes
	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"price",
		"area",
		"year",
		"mileage",
		"created_at",
	})
	if err != nil {
		return err
	}

	return nil
}

// IndexListing indexes a single listing
func (s *SearchClient) IndexListing(l models.Listing) error {
	return s.IndexDocument(BuildDocument(l))
}

// IndexDocument indexes an already-built document
func (s *SearchClient) IndexDocument(doc Document) error {
	_, err := s.client.Index(s.index).AddDocuments([]Document{doc})
	return err
}

// IndexListings indexes multiple listings
func (s *SearchClient) IndexListings(listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	docs := make([]Document, 0, len(listings))
	for _, l := range listings {
		docs = append(docs, BuildDocument(l))
	}
	_, err := s.client.Index(s.index).AddDocuments(docs)
	return err
}

// DeleteListing removes a listing from the index
func (s *SearchClient) DeleteListing(kind models.ListingKind, id uint) error {
	_, err := s.client.Index(s.index).DeleteDocument(DocumentID(kind, id))
	return err
}

// SearchRequest represents advanced search parameters
type SearchRequest struct {
	Query                string
	Limit                int64
	Offset               int64
	Filter               []string
	Sort                 []string
	FacetsFilter         []string
	AttributesToRetrieve []string
}

// SearchResult represents search results with facets
type SearchResult struct {
	Hits           []Document
	TotalHits      int64
	Facets         map[string]interface{}
	ProcessingTime int64
}

// Search searches listings with basic options
func (s *SearchClient) Search(query string, limit int64) ([]Document, error) {
	result, err := s.AdvancedSearch(SearchRequest{
		Query: query,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	return result.Hits, nil
}

// AdvancedSearch performs advanced search with facets and filters
func (s *SearchClient) AdvancedSearch(req SearchRequest) (*SearchResult, error) {
	if req.Limit == 0 {
		req.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  req.Limit,
		Offset: req.Offset,
	}

	// Add filters
	if len(req.Filter) > 0 {
		filterStr := ""
		for i, f := range req.Filter {
			if i > 0 {
				filterStr += " AND "
			}
			filterStr += f
		}
		searchReq.Filter = filterStr
	}

	// Add sorting
	if len(req.Sort) > 0 {
		searchReq.Sort = req.Sort
	}

	// Add facets
	if len(req.FacetsFilter) > 0 {
		searchReq.Facets = req.FacetsFilter
	}

	// Add attributes to retrieve
	if len(req.AttributesToRetrieve) > 0 {
		searchReq.AttributesToRetrieve = req.AttributesToRetrieve
	}

	searchRes, err := s.client.Index(s.index).Search(req.Query, searchReq)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		docs = append(docs, parseDocumentFromHit(hit))
	}

	var facets map[string]interface{}
	if searchRes.FacetDistribution != nil {
		facets, _ = searchRes.FacetDistribution.(map[string]interface{})
	}

	result := &SearchResult{
		Hits:           docs,
		TotalHits:      searchRes.EstimatedTotalHits,
		Facets:         facets,
		ProcessingTime: searchRes.ProcessingTimeMs,
	}

	return result, nil
}

// parseDocumentFromHit converts a search hit back to a Document
func parseDocumentFromHit(hit interface{}) Document {
	hitMap, ok := hit.(map[string]interface{})
	if !ok {
		return Document{}
	}
	doc := Document{
		ID:          getString(hitMap, "id"),
		Kind:        getString(hitMap, "kind"),
		Title:       getString(hitMap, "title"),
		Description: getString(hitMap, "description"),
		ListingType: getString(hitMap, "listing_type"),
		Status:      getString(hitMap, "status"),
		Currency:    getString(hitMap, "currency"),
		City:        getString(hitMap, "city"),
		Address:     getString(hitMap, "address"),
		Make:        getString(hitMap, "make"),
		Model:       getString(hitMap, "model"),
	}

	// Parse numeric fields
	if v, ok := hitMap["listing_id"].(float64); ok {
		doc.ListingID = uint(v)
	}
	if v, ok := hitMap["owner_id"].(float64); ok {
		doc.OwnerID = uint(v)
	}
	if v, ok := hitMap["price"].(float64); ok {
		doc.Price = v
	}
	if v, ok := hitMap["created_at"].(float64); ok {
		doc.CreatedAt = int64(v)
	}
	if v, ok := hitMap["rooms"].(float64); ok {
		n := int(v)
		doc.Rooms = &n
	}
	if v, ok := hitMap["area"].(float64); ok {
		a := v
		doc.Area = &a
	}
	if v, ok := hitMap["floor"].(float64); ok {
		n := int(v)
		doc.Floor = &n
	}
	if v, ok := hitMap["year"].(float64); ok {
		n := int(v)
		doc.Year = &n
	}
	if v, ok := hitMap["mileage"].(float64); ok {
		n := int(v)
		doc.Mileage = &n
	}

	return doc
}

// getString safely extracts a string from map
func getString(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

// GetFacets retrieves facet distribution for specified fields
func (s *SearchClient) GetFacets(facets []string) (map[string]interface{}, error) {
	searchRes, err := s.client.Index(s.index).Search("", &meilisearch.SearchRequest{
		Limit:  0,
		Facets: facets,
	})
	if err != nil {
		return nil, err
	}

	if searchRes.FacetDistribution != nil {
		if facetMap, ok := searchRes.FacetDistribution.(map[string]interface{}); ok {
			return facetMap, nil
		}
	}
	return map[string]interface{}{}, nil
}
