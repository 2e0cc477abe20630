package models

import (
	"strings"

	"gorm.io/gorm"
)

// User represents a user account bridged from the external identity provider.
// Rows are provisioned just-in-time the first time a signed token for a new
// identity is seen.
type User struct {
	gorm.Model

	// ExternalID is the identity provider's stable user id
	ExternalID string `gorm:"uniqueIndex;not null" json:"external_id"`
	Email      string `gorm:"uniqueIndex;not null" json:"email"`

	// Profile information
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Designation *string `json:"designation,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`

	// Relations
	OwnedProjects []Project       `gorm:"foreignKey:OwnerID" json:"owned_projects,omitempty"`
	Memberships   []ProjectMember `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
	Notifications []Notification  `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
}

// FullName joins the name parts for display, empty when neither part is set.
func (u *User) FullName() string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	return strings.Join(parts, " ")
}

// UserSummary is the slimmed-down user shape embedded in API responses
type UserSummary struct {
	ID       uint    `json:"id"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.FullName(),
		ImageURL: u.ImageURL,
	}
}
