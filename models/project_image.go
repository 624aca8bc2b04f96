package models

// ProjectImage is an auxiliary image URL owned by a project.
type ProjectImage struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProjectID uint   `json:"projectId" gorm:"column:project_id;not null;index"`
	URL       string `json:"url" gorm:"type:text;not null"`
}
