package models

import "gorm.io/gorm"

// Notification types
const (
	NotificationProjectCreated   = "PROJECT_CREATED"
	NotificationTaskAssigned     = "TASK_ASSIGNED"
	NotificationStatusChange     = "STATUS_CHANGE"
	NotificationChecklistUpdated = "CHECKLIST_UPDATED"
	NotificationTaskComment      = "TASK_COMMENT"
)

// Notification is created as a side effect of mutations, updated only to be
// marked read, and never deleted in normal flow.
type Notification struct {
	gorm.Model
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	Type     string `gorm:"not null" json:"type"`
	EntityID uint   `gorm:"not null" json:"entity_id"`
	Message  string `gorm:"not null" json:"message"`
	Read     bool   `gorm:"default:false" json:"read"`

	// Relations
	User User `json:"-"`
}
