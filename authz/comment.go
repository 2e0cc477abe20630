package authz

import (
	"errors"

	"gorm.io/gorm"

	"projecthub/models"
)

// RequireCommentPermission authorizes commenting on a task: the task must
// exist and the caller must hold MEMBER or higher in its project.
func RequireCommentPermission(db *gorm.DB, taskID, userID uint) (Role, error) {
	var task models.Task
	err := db.Select("project_id").First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", &NotFoundError{Entity: "Task"}
	}
	if err != nil {
		return "", err
	}

	return RequireRole(db, task.ProjectID, userID, RoleMember)
}

// RequireReactionPermission authorizes reacting to a comment. Reacting only
// requires task-view permission, so VIEWERs may react.
func RequireReactionPermission(db *gorm.DB, commentID, userID uint) (*models.TaskComment, error) {
	var comment models.TaskComment
	err := db.First(&comment, commentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "Comment"}
	}
	if err != nil {
		return nil, err
	}

	var task models.Task
	err = db.Select("project_id").First(&task, comment.TaskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "Task"}
	}
	if err != nil {
		return nil, err
	}

	if _, err := RequireTaskViewPermission(db, task.ProjectID, userID); err != nil {
		return nil, err
	}
	return &comment, nil
}
