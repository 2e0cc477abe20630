package models

import (
	"time"

	"gorm.io/gorm"
)

// Task status values. Transitions are free form; the only behavioral trigger
// is the move into DONE, which notifies the creator.
const (
	TaskStatusTodo       = "TODO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusDone       = "DONE"
)

// Task priority values
const (
	TaskPriorityLow    = "LOW"
	TaskPriorityMedium = "MEDIUM"
	TaskPriorityHigh   = "HIGH"
)

// Task represents a unit of work inside a project. The assignee, when set,
// must be the project owner or a current member.
type Task struct {
	gorm.Model
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Status      string     `gorm:"default:'TODO'" json:"status"`     // TODO, IN_PROGRESS, DONE
	Priority    string     `gorm:"default:'MEDIUM'" json:"priority"` // LOW, MEDIUM, HIGH
	DueDate     *time.Time `json:"due_date,omitempty"`

	ProjectID  uint  `gorm:"not null;index" json:"project_id"`
	CreatorID  uint  `gorm:"not null;index" json:"creator_id"`
	AssigneeID *uint `gorm:"index" json:"assignee_id,omitempty"`

	// Relations
	Project  Project  `json:"-"`
	Creator  User     `json:"-"`
	Assignee *User    `json:"-"`
	Items    []ExecutionItem `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Comments []TaskComment   `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// ExecutionItem is a checklist entry on a task. Its lifecycle is independent
// of the task's status.
type ExecutionItem struct {
	gorm.Model
	TaskID    uint   `gorm:"not null;index" json:"task_id"`
	Content   string `gorm:"not null" json:"content"`
	Completed bool   `gorm:"default:false" json:"completed"`

	// Relations
	Task Task `json:"-"`
}
