package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"marketplace-portal/internal/models"
)

// FavoriteStore abstracts persistence for saved listings.
type FavoriteStore interface {
	Add(ctx context.Context, userID uint, ref models.ListingRef) (*models.Favorite, error)
	Remove(ctx context.Context, userID uint, ref models.ListingRef) error
	ListForUser(ctx context.Context, userID uint) ([]models.Favorite, error)
	UsersForListing(ctx context.Context, ref models.ListingRef) ([]uint, error)
}

// FavoriteRepo is the GORM implementation of FavoriteStore.
type FavoriteRepo struct {
	db *gorm.DB
}

func NewFavoriteRepo(db *gorm.DB) *FavoriteRepo {
	return &FavoriteRepo{db: db}
}

// Add saves a listing for a user. Saving the same listing twice is not an
// error; the existing favorite is returned.
func (r *FavoriteRepo) Add(ctx context.Context, userID uint, ref models.ListingRef) (*models.Favorite, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	fav := models.Favorite{
		UserID:     userID,
		PropertyID: ref.PropertyID,
		VehicleID:  ref.VehicleID,
	}
	err := translate(r.db.WithContext(ctx).Create(&fav).Error)
	if errors.Is(err, ErrConflict) {
		var existing models.Favorite
		if ferr := r.refScope(ctx, userID, ref).First(&existing).Error; ferr != nil {
			return nil, translate(ferr)
		}
		return &existing, nil
	}
	if err != nil {
		return nil, err
	}
	return &fav, nil
}

func (r *FavoriteRepo) Remove(ctx context.Context, userID uint, ref models.ListingRef) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	res := r.refScope(ctx, userID, ref).Delete(&models.Favorite{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FavoriteRepo) ListForUser(ctx context.Context, userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Property").
		Preload("Vehicle").
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

// UsersForListing returns the IDs of everyone who saved the listing. Used to
// fan out status-change notifications.
func (r *FavoriteRepo) UsersForListing(ctx context.Context, ref models.ListingRef) ([]uint, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	var userIDs []uint
	q := r.db.WithContext(ctx).Model(&models.Favorite{})
	if ref.Kind() == models.ListingKindVehicle {
		q = q.Where("vehicle_id = ?", *ref.VehicleID)
	} else {
		q = q.Where("property_id = ?", *ref.PropertyID)
	}
	if err := q.Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}

func (r *FavoriteRepo) refScope(ctx context.Context, userID uint, ref models.ListingRef) *gorm.DB {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if ref.Kind() == models.ListingKindVehicle {
		return q.Where("vehicle_id = ?", *ref.VehicleID)
	}
	return q.Where("property_id = ?", *ref.PropertyID)
}
