package models

import "gorm.io/gorm"

// Resource types
const (
	ResourceTypeLink    = "LINK"
	ResourceTypeFile    = "FILE"
	ResourceTypeImage   = "IMAGE"
	ResourceTypeArchive = "ARCHIVE"
)

// Resource is a vault asset: a link or an uploaded file reachable at a
// stable URL.
type Resource struct {
	gorm.Model
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	URL         string `gorm:"not null" json:"url"`
	Type        string `gorm:"default:'LINK'" json:"type"` // LINK, FILE, IMAGE, ARCHIVE
	CreatorID   uint   `gorm:"not null;index" json:"creator_id"`

	// Relations
	Creator User `json:"-"`
}
