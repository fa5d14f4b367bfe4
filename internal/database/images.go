package database

import (
	"context"

	"gorm.io/gorm"

	"marketplace-portal/internal/models"
)

// ImageStore abstracts persistence for listing images.
type ImageStore interface {
	Add(ctx context.Context, img *models.ListingImage) error
	ByID(ctx context.Context, id uint) (*models.ListingImage, error)
	Delete(ctx context.Context, id uint) error
	ListForListing(ctx context.Context, ref models.ListingRef) ([]models.ListingImage, error)
	CountForListing(ctx context.Context, ref models.ListingRef) (int64, error)
}

// ImageRepo is the GORM implementation of ImageStore.
type ImageRepo struct {
	db *gorm.DB
}

func NewImageRepo(db *gorm.DB) *ImageRepo {
	return &ImageRepo{db: db}
}

func (r *ImageRepo) Add(ctx context.Context, img *models.ListingImage) error {
	return translate(r.db.WithContext(ctx).Create(img).Error)
}

func (r *ImageRepo) ByID(ctx context.Context, id uint) (*models.ListingImage, error) {
	var img models.ListingImage
	if err := r.db.WithContext(ctx).First(&img, id).Error; err != nil {
		return nil, translate(err)
	}
	return &img, nil
}

func (r *ImageRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.ListingImage{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ImageRepo) ListForListing(ctx context.Context, ref models.ListingRef) ([]models.ListingImage, error) {
	var images []models.ListingImage
	err := r.refScope(ctx, ref).Order("sort_order ASC, id ASC").Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

func (r *ImageRepo) CountForListing(ctx context.Context, ref models.ListingRef) (int64, error) {
	var count int64
	err := r.refScope(ctx, ref).Model(&models.ListingImage{}).Count(&count).Error
	return count, err
}

func (r *ImageRepo) refScope(ctx context.Context, ref models.ListingRef) *gorm.DB {
	q := r.db.WithContext(ctx)
	if ref.Kind() == models.ListingKindVehicle {
		return q.Where("vehicle_id = ?", *ref.VehicleID)
	}
	return q.Where("property_id = ?", *ref.PropertyID)
}
