package models

import "time"

// Project is a portfolio entry. Technologies are shared labels linked through
// the project_technologies join table; Images are owned and die with the row.
type Project struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Title        string         `json:"title" gorm:"type:text;not null"`
	Description  string         `json:"description" gorm:"type:text;not null"`
	Img          string         `json:"img" gorm:"type:text;not null"`
	Video        *string        `json:"video,omitempty" gorm:"type:text"`
	Repo         *string        `json:"repo,omitempty" gorm:"type:text"`
	Page         *string        `json:"page,omitempty" gorm:"type:text"`
	Slug         string         `json:"slug" gorm:"type:text;not null;unique"`
	Featured     bool           `json:"featured" gorm:"not null;default:false"`
	// No schema-level default: gorm drops zero-value fields with a default
	// tag from the INSERT, which would silently flip an explicit false back
	// to true. The application default lives in the create handler.
	Active       bool           `json:"active" gorm:"not null"`
	DateProject  *string        `json:"dateProject,omitempty" gorm:"column:date_project;type:text"`
	CreatedAt    time.Time      `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" gorm:"column:updated_at"`
	Technologies []Technology   `json:"-" gorm:"many2many:project_technologies;constraint:OnDelete:CASCADE"`
	Images       []ProjectImage `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}

// TechnologyNames flattens the association for the wire format.
func (p *Project) TechnologyNames() []string {
	names := make([]string, 0, len(p.Technologies))
	for _, t := range p.Technologies {
		names = append(names, t.Name)
	}
	return names
}

// ImageURLs flattens the owned image rows for the wire format.
func (p *Project) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.URL)
	}
	return urls
}
