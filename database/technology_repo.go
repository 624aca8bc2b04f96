package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/sfrosal/portfolio-api/models"
)

type TechnologyRepo struct {
	db *gorm.DB
}

func NewTechnologyRepo(db *gorm.DB) *TechnologyRepo {
	return &TechnologyRepo{db}
}

// FindAll returns every technology label, shared across projects.
func (r *TechnologyRepo) FindAll() ([]*models.Technology, error) {
	var technologies []*models.Technology
	err := r.db.Order("name").Find(&technologies).Error
	return technologies, err
}

// findOrCreateTechnology reuses the row with that exact name or inserts a
// new one. Matching is case-sensitive string equality, no fuzziness.
func findOrCreateTechnology(tx *gorm.DB, name string) (*models.Technology, error) {
	var tech models.Technology
	err := tx.Where("name = ?", name).First(&tech).Error
	if err == nil {
		return &tech, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tech = models.Technology{Name: name}
	if err := tx.Create(&tech).Error; err != nil {
		return nil, err
	}
	return &tech, nil
}
