package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskComment is free-text discussion on a task. Edits are author-only;
// deletes are author-or-privileged (see authz).
type TaskComment struct {
	gorm.Model
	TaskID   uint   `gorm:"not null;index" json:"task_id"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Content  string `gorm:"not null" json:"content"`

	// Relations
	Task      Task                  `json:"-"`
	Author    User                  `json:"-"`
	Reactions []TaskCommentReaction `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"reactions,omitempty"`
}

// TaskCommentReaction has toggle semantics: row presence means "reacted".
// The composite unique index rejects duplicate concurrent inserts.
//
// Presence row: no DeletedAt, toggling off is a hard delete. A soft-deleted
// row would keep occupying uk_comment_reaction and block toggling back on.
type TaskCommentReaction struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CommentID uint      `gorm:"not null;uniqueIndex:uk_comment_reaction" json:"comment_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uk_comment_reaction" json:"user_id"`
	Emoji     string    `gorm:"not null;uniqueIndex:uk_comment_reaction" json:"emoji"`

	// Relations
	Comment TaskComment `json:"-"`
	User    User        `json:"-"`
}
