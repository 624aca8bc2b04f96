package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sfrosal/portfolio-api/errs"
	"github.com/sfrosal/portfolio-api/models"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// withAssociations preloads the tag and image lists every read path returns.
func withAssociations(db *gorm.DB) *gorm.DB {
	return db.Preload("Technologies").Preload("Images")
}

// FindPublic returns active projects, newest first.
func (r *ProjectRepo) FindPublic() ([]*models.Project, error) {
	var projects []*models.Project
	err := withAssociations(r.db).
		Where("active = ?", true).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// FindAll returns every project, inactive ones included.
func (r *ProjectRepo) FindAll() ([]*models.Project, error) {
	var projects []*models.Project
	err := withAssociations(r.db).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// FindFeatured returns active projects flagged as featured.
func (r *ProjectRepo) FindFeatured() ([]*models.Project, error) {
	var projects []*models.Project
	err := withAssociations(r.db).
		Where("active = ? AND featured = ?", true, true).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// Search returns active projects whose title or description contains the
// query, case-insensitively. An empty query is a validation error.
func (r *ProjectRepo) Search(query string) ([]*models.Project, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errs.NewMissingRequiredFieldError("q")
	}

	pattern := "%" + strings.ToLower(query) + "%"
	var projects []*models.Project
	err := withAssociations(r.db).
		Where("active = ? AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", true, pattern, pattern).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// FindBySlug returns the active project with that slug, or NotFound.
func (r *ProjectRepo) FindBySlug(slug string) (*models.Project, error) {
	var project models.Project
	err := withAssociations(r.db).
		Where("slug = ? AND active = ?", slug, true).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("project")
		}
		return nil, err
	}
	return &project, nil
}

// FindByID returns a project regardless of its active flag, or NotFound.
func (r *ProjectRepo) FindByID(id uint) (*models.Project, error) {
	var project models.Project
	err := withAssociations(r.db).First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("project")
		}
		return nil, err
	}
	return &project, nil
}

// Create inserts the project, links its technologies (reusing or lazily
// creating each label) and inserts its image rows, all in one transaction.
// A taken slug fails with Conflict before anything is written.
func (r *ProjectRepo) Create(project *models.Project, technologies []string, images []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Project{}).Where("slug = ?", project.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errs.NewAlreadyExists("slug")
		}

		if err := tx.Create(project).Error; err != nil {
			return err
		}
		if err := linkTechnologies(tx, project, technologies); err != nil {
			return err
		}
		return insertImages(tx, project.ID, images)
	})
}

// ProjectUpdate carries a partial update. Nil pointers mean "field not
// supplied"; a non-nil empty Technologies or Images slice explicitly clears
// the corresponding set.
type ProjectUpdate struct {
	Title        *string
	Description  *string
	Img          *string
	Video        *string
	Repo         *string
	Page         *string
	Slug         *string
	Featured     *bool
	Active       *bool
	DateProject  *string
	Technologies *[]string
	Images       *[]string
}

func (u ProjectUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Img == nil &&
		u.Video == nil && u.Repo == nil && u.Page == nil && u.Slug == nil &&
		u.Featured == nil && u.Active == nil && u.DateProject == nil &&
		u.Technologies == nil && u.Images == nil
}

func (u ProjectUpdate) columns() map[string]interface{} {
	updates := map[string]interface{}{}
	if u.Title != nil {
		updates["title"] = *u.Title
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if u.Img != nil {
		updates["img"] = *u.Img
	}
	if u.Video != nil {
		updates["video"] = *u.Video
	}
	if u.Repo != nil {
		updates["repo"] = *u.Repo
	}
	if u.Page != nil {
		updates["page"] = *u.Page
	}
	if u.Slug != nil {
		updates["slug"] = *u.Slug
	}
	if u.Featured != nil {
		updates["featured"] = *u.Featured
	}
	if u.Active != nil {
		updates["active"] = *u.Active
	}
	if u.DateProject != nil {
		updates["date_project"] = *u.DateProject
	}
	return updates
}

// Update applies the supplied fields plus a server-set updated_at. When the
// technologies or images list is supplied the full set is replaced
// (delete-all then recreate); an absent list leaves the set untouched. The
// whole mutation runs in one transaction.
func (r *ProjectRepo) Update(id uint, upd ProjectUpdate) (*models.Project, error) {
	if upd.Empty() {
		return nil, errs.NewValidationError(nil, "no recognized fields to update")
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NewNotFound("project")
			}
			return err
		}

		if updates := upd.columns(); len(updates) > 0 {
			if err := tx.Model(&project).Updates(updates).Error; err != nil {
				return err
			}
		}

		if upd.Technologies != nil {
			if err := tx.Model(&project).Association("Technologies").Clear(); err != nil {
				return err
			}
			if err := linkTechnologies(tx, &project, *upd.Technologies); err != nil {
				return err
			}
		}

		if upd.Images != nil {
			if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectImage{}).Error; err != nil {
				return err
			}
			if err := insertImages(tx, project.ID, *upd.Images); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(id)
}

// Delete removes the tag associations, the owned images and finally the
// project row, in that dependency order, in one transaction. Shared
// technology rows survive.
func (r *ProjectRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NewNotFound("project")
			}
			return err
		}

		if err := tx.Model(&project).Association("Technologies").Clear(); err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
}

// ToggleActive flips the active flag and returns the updated project.
func (r *ProjectRepo) ToggleActive(id uint) (*models.Project, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NewNotFound("project")
			}
			return err
		}
		return tx.Model(&project).Update("active", !project.Active).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(id)
}

func linkTechnologies(tx *gorm.DB, project *models.Project, names []string) error {
	for _, name := range names {
		tech, err := findOrCreateTechnology(tx, name)
		if err != nil {
			return err
		}
		if err := tx.Model(project).Association("Technologies").Append(tech); err != nil {
			return err
		}
	}
	return nil
}

func insertImages(tx *gorm.DB, projectID uint, urls []string) error {
	for _, url := range urls {
		image := models.ProjectImage{ProjectID: projectID, URL: url}
		if err := tx.Create(&image).Error; err != nil {
			return err
		}
	}
	return nil
}
