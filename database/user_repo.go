package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sfrosal/portfolio-api/errs"
	"github.com/sfrosal/portfolio-api/models"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// FindByEmail returns the user with that email, or a NotFound error.
func (r *UserRepo) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("user")
		}
		return nil, err
	}
	return &user, nil
}

// FindByID returns the user by its ID, or a NotFound error.
func (r *UserRepo) FindByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("user")
		}
		return nil, err
	}
	return &user, nil
}

// UserUpdate carries the profile fields a user may change. Nil means the
// field was not supplied and stays untouched.
type UserUpdate struct {
	Name     *string
	Email    *string
	ImageURL *string
}

func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.ImageURL == nil
}

// UpdateProfile applies a partial profile update and returns the fresh row.
// A duplicate email surfaces as a Conflict.
func (r *UserRepo) UpdateProfile(id uuid.UUID, upd UserUpdate) (*models.User, error) {
	if upd.Empty() {
		return nil, errs.NewValidationError(nil, "no recognized fields to update")
	}

	user, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if upd.Name != nil {
		updates["name"] = *upd.Name
	}
	if upd.Email != nil {
		updates["email"] = *upd.Email
	}
	if upd.ImageURL != nil {
		updates["image_url"] = *upd.ImageURL
	}

	if err := r.db.Model(user).Updates(updates).Error; err != nil {
		return nil, errs.NewDatabaseError("update", "user", err)
	}
	return r.FindByID(id)
}
