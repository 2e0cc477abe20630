package models

import (
	"time"

	"gorm.io/gorm"
)

// Project status values
const (
	ProjectStatusPlanning  = "PLANNING"
	ProjectStatusActive    = "ACTIVE"
	ProjectStatusCompleted = "COMPLETED"
)

// Project represents a collaboration space owning tasks, members and vault
// resources. The owner is tracked on OwnerID only and never holds a row in
// project_members; the membership table expresses delegated access.
type Project struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Status      string `gorm:"default:'PLANNING'" json:"status"` // PLANNING, ACTIVE, COMPLETED
	OwnerID     uint   `gorm:"not null;index" json:"owner_id"`

	// Relations
	Owner   User            `json:"-"`
	Members []ProjectMember `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Tasks   []Task          `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`

	// Derived on read, not a column
	TaskCount int64 `gorm:"-" json:"task_count"`
}

// ProjectMember represents delegated project access and its role.
// OWNER is never stored here; ownership lives on Project.OwnerID.
//
// Presence row: no DeletedAt, removal is a hard delete. A soft-deleted row
// would keep occupying uk_project_member and block re-adding the user.
type ProjectMember struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ProjectID uint      `gorm:"not null;uniqueIndex:uk_project_member" json:"project_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uk_project_member;index" json:"user_id"`
	Role      string    `gorm:"not null;default:'MEMBER'" json:"role"` // ADMIN, MEMBER, VIEWER

	// Relations
	Project Project `json:"-"`
	User    User    `json:"-"`
}
