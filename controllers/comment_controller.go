package controller

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"projecthub/authz"
	"projecthub/models"
	"projecthub/utils"
)

type CommentController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *utils.Notifier
}

func NewCommentController(db *gorm.DB, notifier *utils.Notifier, logger *log.Logger) *CommentController {
	return &CommentController{
		DB:       db,
		Logger:   logger,
		Notifier: notifier,
	}
}

type commentResponse struct {
	models.TaskComment
	Author models.UserSummary `json:"author"`
}

// GetComments lists a task's comments oldest first, with reaction rows
// preloaded for UI grouping.
func (cc *CommentController) GetComments(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("id"))

	var task models.Task
	err := cc.DB.Select("project_id").First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}
	if err != nil {
		return respondActionError(c, "comment_list_failed", "Failed to load comments. Please try again.", err)
	}

	if _, err := authz.RequireTaskViewPermission(cc.DB, task.ProjectID, user.ID); err != nil {
		return respondActionError(c, "comment_list_failed", "Failed to load comments. Please try again.", err)
	}

	var comments []models.TaskComment
	err = cc.DB.Preload("Author").Preload("Reactions").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return respondActionError(c, "comment_list_failed", "Failed to load comments. Please try again.", err)
	}

	responses := make([]commentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, commentResponse{
			TaskComment: comments[i],
			Author:      comments[i].Author.Summary(),
		})
	}
	return c.JSON(utils.SuccessResponse(responses))
}

// CreateComment posts a comment and fans TASK_COMMENT out to the thread's
// stakeholders (task creator and assignee) minus the author.
func (cc *CommentController) CreateComment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("id"))

	var input struct {
		Content string `json:"content" validate:"required,max=2000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	input.Content = strings.TrimSpace(input.Content)
	if input.Content == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Comment content cannot be empty", nil)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if _, err := authz.RequireCommentPermission(cc.DB, taskID, user.ID); err != nil {
		return respondActionError(c, "comment_create_failed", "Failed to add comment. Please try again.", err)
	}

	comment := models.TaskComment{
		TaskID:   taskID,
		AuthorID: user.ID,
		Content:  input.Content,
	}
	if err := cc.DB.Create(&comment).Error; err != nil {
		return respondActionError(c, "comment_create_failed", "Failed to add comment. Please try again.", err)
	}

	var task models.Task
	if err := cc.DB.First(&task, taskID).Error; err == nil {
		recipients := make([]uint, 0, 2)
		if task.CreatorID != user.ID {
			recipients = append(recipients, task.CreatorID)
		}
		if task.AssigneeID != nil && *task.AssigneeID != user.ID && *task.AssigneeID != task.CreatorID {
			recipients = append(recipients, *task.AssigneeID)
		}
		cc.Notifier.NotifyAll(recipients, models.NotificationTaskComment, taskID,
			fmt.Sprintf("New comment on task: %s", task.Title))
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(commentResponse{
		TaskComment: comment,
		Author:      user.Summary(),
	}))
}

// UpdateComment edits comment text. Author-only, regardless of project role.
func (cc *CommentController) UpdateComment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	commentID := utils.ParseUint(c.Params("id"))

	var input struct {
		Content string `json:"content" validate:"required,max=2000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	input.Content = strings.TrimSpace(input.Content)
	if input.Content == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Comment content cannot be empty", nil)
	}

	var comment models.TaskComment
	err := cc.DB.First(&comment, commentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Comment not found", nil)
	}
	if err != nil {
		return respondActionError(c, "comment_update_failed", "Failed to update comment. Please try again.", err)
	}

	if !authz.CanEditTaskComment(&comment, user.ID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden,
			"Access denied: you cannot edit this comment", nil)
	}

	if err := cc.DB.Model(&comment).Update("content", input.Content).Error; err != nil {
		return respondActionError(c, "comment_update_failed", "Failed to update comment. Please try again.", err)
	}
	comment.Content = input.Content

	return c.JSON(utils.SuccessResponse(commentResponse{
		TaskComment: comment,
		Author:      user.Summary(),
	}))
}

// DeleteComment removes a comment. The author may always delete their own;
// OWNER and ADMIN may moderate any comment in their project.
func (cc *CommentController) DeleteComment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	commentID := utils.ParseUint(c.Params("id"))

	var comment models.TaskComment
	err := cc.DB.Preload("Task").First(&comment, commentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Comment not found", nil)
	}
	if err != nil {
		return respondActionError(c, "comment_delete_failed", "Failed to delete comment. Please try again.", err)
	}

	access, err := authz.ResolveAccess(cc.DB, comment.Task.ProjectID, user.ID)
	if err != nil {
		return respondActionError(c, "comment_delete_failed", "Failed to delete comment. Please try again.", err)
	}
	if !access.HasAccess {
		return utils.ErrorResponse(c, fiber.StatusForbidden,
			"Access denied: you are not a member of this project", nil)
	}

	if !authz.CanDeleteTaskComment(&comment, user.ID, access.Role) {
		return utils.ErrorResponse(c, fiber.StatusForbidden,
			"Access denied: you cannot delete this comment", nil)
	}

	if err := cc.DB.Select("Reactions").Delete(&comment).Error; err != nil {
		return respondActionError(c, "comment_delete_failed", "Failed to delete comment. Please try again.", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"deleted": true}))
}

// ToggleReaction adds or removes the caller's (emoji) reaction on a comment.
// Toggling twice returns to the original state.
func (cc *CommentController) ToggleReaction(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	commentID := utils.ParseUint(c.Params("id"))

	var input struct {
		Emoji string `json:"emoji" validate:"required,max=16"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if _, err := authz.RequireReactionPermission(cc.DB, commentID, user.ID); err != nil {
		return respondActionError(c, "reaction_toggle_failed", "Failed to toggle reaction. Please try again.", err)
	}

	var existing models.TaskCommentReaction
	err := cc.DB.Where("comment_id = ? AND user_id = ? AND emoji = ?",
		commentID, user.ID, input.Emoji).First(&existing).Error
	if err == nil {
		if err := cc.DB.Delete(&existing).Error; err != nil {
			return respondActionError(c, "reaction_toggle_failed", "Failed to toggle reaction. Please try again.", err)
		}
		return c.JSON(utils.SuccessResponse(fiber.Map{"action": "removed"}))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondActionError(c, "reaction_toggle_failed", "Failed to toggle reaction. Please try again.", err)
	}

	reaction := models.TaskCommentReaction{
		CommentID: commentID,
		UserID:    user.ID,
		Emoji:     input.Emoji,
	}
	// The composite unique index rejects a concurrent duplicate insert
	if err := cc.DB.Create(&reaction).Error; err != nil {
		return respondActionError(c, "reaction_toggle_failed", "Failed to toggle reaction. Please try again.", err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"action": "added"}))
}
