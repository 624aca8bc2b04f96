package models

// Technology is a named label attached to projects. Created lazily on first
// reference and never deleted, only unlinked.
type Technology struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:text;not null;unique"`
}
