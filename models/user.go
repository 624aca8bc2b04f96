package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the admin account. Rows are created out of band (seed script or
// SQL); the API only authenticates against them and updates the profile.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Email     string    `json:"email" gorm:"type:text;not null;unique"`
	Password  string    `json:"-" gorm:"type:text;not null"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	ImageURL  *string   `json:"imageUrl,omitempty" gorm:"column:image_url;type:text"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
