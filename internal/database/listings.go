package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"marketplace-portal/internal/models"
)

// PropertyFilters are the query parameters for property listings
type PropertyFilters struct {
	City        string
	ListingType string
	Status      models.ListingStatus
	OwnerID     *uint
	MinPrice    *float64
	MaxPrice    *float64
	MinRooms    *int
	MaxRooms    *int
	MinArea     *float64
	MaxArea     *float64
	SortBy      string
	Limit       int
	Offset      int
}

// VehicleFilters are the query parameters for vehicle listings
type VehicleFilters struct {
	City        string
	ListingType string
	Status      models.ListingStatus
	OwnerID     *uint
	Make        string
	Model       string
	MinPrice    *float64
	MaxPrice    *float64
	MinYear     *int
	MaxYear     *int
	MaxMileage  *int
	SortBy      string
	Limit       int
	Offset      int
}

// PropertyPage is a paginated property result
type PropertyPage struct {
	Items  []models.Property `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// VehiclePage is a paginated vehicle result
type VehiclePage struct {
	Items  []models.Vehicle `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// ListingStore abstracts persistence for both listing kinds.
type ListingStore interface {
	CreateProperty(ctx context.Context, p *models.Property) error
	UpdateProperty(ctx context.Context, p *models.Property) error
	PropertyByID(ctx context.Context, id uint) (*models.Property, error)
	ListProperties(ctx context.Context, f PropertyFilters) (*PropertyPage, error)

	CreateVehicle(ctx context.Context, v *models.Vehicle) error
	UpdateVehicle(ctx context.Context, v *models.Vehicle) error
	VehicleByID(ctx context.Context, id uint) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, f VehicleFilters) (*VehiclePage, error)

	Resolve(ctx context.Context, ref models.ListingRef) (models.Listing, error)
	TransitionStatus(ctx context.Context, l models.Listing, to models.ListingStatus) error
	SoftRemove(ctx context.Context, l models.Listing) error
	ActiveListings(ctx context.Context) ([]models.Listing, error)
	ExpireStaleDrafts(ctx context.Context, before time.Time) (int64, error)
}

// ListingRepo is the GORM implementation of ListingStore.
type ListingRepo struct {
	db *gorm.DB
}

// NewListingRepo constructs a ListingRepo.
func NewListingRepo(db *gorm.DB) *ListingRepo {
	return &ListingRepo{db: db}
}

func (r *ListingRepo) CreateProperty(ctx context.Context, p *models.Property) error {
	if p.Status == "" {
		p.Status = models.StatusDraft
	}
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *ListingRepo) UpdateProperty(ctx context.Context, p *models.Property) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

func (r *ListingRepo) PropertyByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "property_id", "vehicle_id", "content_type", "sort_order", "created_at").
			Order("sort_order ASC")
	}).First(&property, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &property, nil
}

func (r *ListingRepo) ListProperties(ctx context.Context, f PropertyFilters) (*PropertyPage, error) {
	q := r.db.WithContext(ctx).Model(&models.Property{}).Where("removed_at IS NULL")

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.ListingType != "" {
		q = q.Where("listing_type = ?", f.ListingType)
	}
	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinRooms != nil {
		q = q.Where("rooms >= ?", *f.MinRooms)
	}
	if f.MaxRooms != nil {
		q = q.Where("rooms <= ?", *f.MaxRooms)
	}
	if f.MinArea != nil {
		q = q.Where("area >= ?", *f.MinArea)
	}
	if f.MaxArea != nil {
		q = q.Where("area <= ?", *f.MaxArea)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var items []models.Property
	err := q.Order(propertyOrderClause(f.SortBy)).
		Limit(limit).
		Offset(f.Offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &PropertyPage{Items: items, Total: total, Limit: limit, Offset: f.Offset}, nil
}

// propertyOrderClause maps a sort parameter to an ORDER BY clause.
// NULLs go last for ascending sorts (MySQL syntax).
func propertyOrderClause(sortBy string) string {
	switch sortBy {
	case "price_asc":
		return "price ASC"
	case "price_desc":
		return "price DESC"
	case "area_desc":
		return "CASE WHEN area IS NULL THEN 1 ELSE 0 END, area DESC"
	case "rooms_desc":
		return "CASE WHEN rooms IS NULL THEN 1 ELSE 0 END, rooms DESC"
	case "oldest":
		return "created_at ASC"
	default:
		return "created_at DESC"
	}
}

func (r *ListingRepo) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	if v.Status == "" {
		v.Status = models.StatusDraft
	}
	return translate(r.db.WithContext(ctx).Create(v).Error)
}

func (r *ListingRepo) UpdateVehicle(ctx context.Context, v *models.Vehicle) error {
	return translate(r.db.WithContext(ctx).Save(v).Error)
}

func (r *ListingRepo) VehicleByID(ctx context.Context, id uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "property_id", "vehicle_id", "content_type", "sort_order", "created_at").
			Order("sort_order ASC")
	}).First(&vehicle, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &vehicle, nil
}

func (r *ListingRepo) ListVehicles(ctx context.Context, f VehicleFilters) (*VehiclePage, error) {
	q := r.db.WithContext(ctx).Model(&models.Vehicle{}).Where("removed_at IS NULL")

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.ListingType != "" {
		q = q.Where("listing_type = ?", f.ListingType)
	}
	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	if f.Make != "" {
		q = q.Where("make = ?", f.Make)
	}
	if f.Model != "" {
		q = q.Where("model = ?", f.Model)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinYear != nil {
		q = q.Where("year >= ?", *f.MinYear)
	}
	if f.MaxYear != nil {
		q = q.Where("year <= ?", *f.MaxYear)
	}
	if f.MaxMileage != nil {
		q = q.Where("mileage <= ?", *f.MaxMileage)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var items []models.Vehicle
	err := q.Order(vehicleOrderClause(f.SortBy)).
		Limit(limit).
		Offset(f.Offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &VehiclePage{Items: items, Total: total, Limit: limit, Offset: f.Offset}, nil
}

func vehicleOrderClause(sortBy string) string {
	switch sortBy {
	case "price_asc":
		return "price ASC"
	case "price_desc":
		return "price DESC"
	case "year_desc":
		return "CASE WHEN year IS NULL THEN 1 ELSE 0 END, year DESC"
	case "mileage_asc":
		return "CASE WHEN mileage IS NULL THEN 1 ELSE 0 END, mileage ASC"
	case "oldest":
		return "created_at ASC"
	default:
		return "created_at DESC"
	}
}

// Resolve loads the listing a reference points at.
func (r *ListingRepo) Resolve(ctx context.Context, ref models.ListingRef) (models.Listing, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	switch ref.Kind() {
	case models.ListingKindVehicle:
		return r.VehicleByID(ctx, ref.ID())
	case models.ListingKindProperty:
		return r.PropertyByID(ctx, ref.ID())
	default:
		return nil, fmt.Errorf("unknown listing kind %q", ref.Kind())
	}
}

// TransitionStatus applies a status change with a compare-and-swap on the
// version column. A stale version (or a concurrently deleted row) yields
// ErrConflict; the caller re-reads and retries or surfaces the conflict.
func (r *ListingRepo) TransitionStatus(ctx context.Context, l models.Listing, to models.ListingStatus) error {
	updates := map[string]interface{}{
		"status":  to,
		"version": l.CurrentVersion() + 1,
	}

	var res *gorm.DB
	switch v := l.(type) {
	case *models.Property:
		res = r.db.WithContext(ctx).Model(&models.Property{}).
			Where("id = ? AND version = ?", v.ID, v.Version).
			Updates(updates)
	case *models.Vehicle:
		res = r.db.WithContext(ctx).Model(&models.Vehicle{}).
			Where("id = ? AND version = ?", v.ID, v.Version).
			Updates(updates)
	default:
		return fmt.Errorf("unknown listing type %T", l)
	}

	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// SoftRemove marks a listing as removed and forces it INACTIVE. Physical
// deletion happens later via the cleanup service.
func (r *ListingRepo) SoftRemove(ctx context.Context, l models.Listing) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     models.StatusInactive,
		"removed_at": &now,
		"version":    l.CurrentVersion() + 1,
	}

	switch v := l.(type) {
	case *models.Property:
		return translate(r.db.WithContext(ctx).Model(&models.Property{}).
			Where("id = ?", v.ID).Updates(updates).Error)
	case *models.Vehicle:
		return translate(r.db.WithContext(ctx).Model(&models.Vehicle{}).
			Where("id = ?", v.ID).Updates(updates).Error)
	default:
		return fmt.Errorf("unknown listing type %T", l)
	}
}

// ActiveListings returns every ACTIVE listing of both kinds, for reindexing.
func (r *ListingRepo) ActiveListings(ctx context.Context) ([]models.Listing, error) {
	var properties []models.Property
	if err := r.db.WithContext(ctx).
		Where("status = ? AND removed_at IS NULL", models.StatusActive).
		Find(&properties).Error; err != nil {
		return nil, err
	}

	var vehicles []models.Vehicle
	if err := r.db.WithContext(ctx).
		Where("status = ? AND removed_at IS NULL", models.StatusActive).
		Find(&vehicles).Error; err != nil {
		return nil, err
	}

	listings := make([]models.Listing, 0, len(properties)+len(vehicles))
	for i := range properties {
		listings = append(listings, &properties[i])
	}
	for i := range vehicles {
		listings = append(listings, &vehicles[i])
	}
	return listings, nil
}

// ExpireStaleDrafts moves DRAFT listings older than the cutoff to INACTIVE.
// Returns the number of listings expired across both kinds.
func (r *ListingRepo) ExpireStaleDrafts(ctx context.Context, before time.Time) (int64, error) {
	var expired int64

	// Bump version so transitions validated against the old DRAFT row
	// lose their compare-and-swap.
	res := r.db.WithContext(ctx).Model(&models.Property{}).
		Where("status = ? AND removed_at IS NULL AND updated_at < ?", models.StatusDraft, before).
		Updates(map[string]interface{}{
			"status":  models.StatusInactive,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return expired, res.Error
	}
	expired += res.RowsAffected

	res = r.db.WithContext(ctx).Model(&models.Vehicle{}).
		Where("status = ? AND removed_at IS NULL AND updated_at < ?", models.StatusDraft, before).
		Updates(map[string]interface{}{
			"status":  models.StatusInactive,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return expired, res.Error
	}
	expired += res.RowsAffected

	return expired, nil
}
