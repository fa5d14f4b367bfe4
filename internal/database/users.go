package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"marketplace-portal/internal/models"
)

// UserStore abstracts user persistence.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	ByID(ctx context.Context, id uint) (*models.User, error)
	ByUsername(ctx context.Context, username string) (*models.User, error)
	RecordLogin(ctx context.Context, id uint) error
}

// UserRepo is the GORM implementation of UserStore.
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user. Returns ErrConflict when the username is taken.
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// ByID fetches a user by id.
func (r *UserRepo) ByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// ByUsername fetches a user by username.
func (r *UserRepo) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// RecordLogin updates the user's last login timestamp.
func (r *UserRepo) RecordLogin(ctx context.Context, id uint) error {
	now := time.Now()
	return translate(r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login", &now).Error)
}
