package controller

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"projecthub/authz"
	"projecthub/models"
	"projecthub/utils"
)

type TaskController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *utils.Notifier
}

func NewTaskController(db *gorm.DB, notifier *utils.Notifier, logger *log.Logger) *TaskController {
	return &TaskController{
		DB:       db,
		Logger:   logger,
		Notifier: notifier,
	}
}

type taskResponse struct {
	models.Task
	Creator  models.UserSummary  `json:"creator"`
	Assignee *models.UserSummary `json:"assignee,omitempty"`
}

func (tc *TaskController) mapTask(task *models.Task) (taskResponse, error) {
	resp := taskResponse{Task: *task}

	var creator models.User
	if err := tc.DB.First(&creator, task.CreatorID).Error; err != nil {
		return resp, err
	}
	resp.Creator = creator.Summary()

	if task.AssigneeID != nil {
		var assignee models.User
		if err := tc.DB.First(&assignee, *task.AssigneeID).Error; err != nil {
			return resp, err
		}
		summary := assignee.Summary()
		resp.Assignee = &summary
	}
	return resp, nil
}

// validateAssignee checks the invariant that an assignee must be the project
// owner or a current member.
func (tc *TaskController) validateAssignee(projectID, assigneeID uint) error {
	var assignee models.User
	err := tc.DB.First(&assignee, assigneeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &authz.NotFoundError{Entity: "Assignee user"}
	}
	if err != nil {
		return err
	}

	var project models.Project
	if err := tc.DB.Select("owner_id").First(&project, projectID).Error; err != nil {
		return err
	}
	if project.OwnerID == assigneeID {
		return nil
	}

	var membership models.ProjectMember
	err = tc.DB.Where("project_id = ? AND user_id = ?", projectID, assigneeID).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errAssigneeNotMember
	}
	return err
}

var errAssigneeNotMember = errors.New("assignee must be a member of the project")

// CreateTask creates a task inside a project.
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	var input struct {
		Title       string     `json:"title" validate:"required,max=200"`
		Description string     `json:"description" validate:"omitempty,max=5000"`
		Status      string     `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
		Priority    string     `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
		DueDate     *time.Time `json:"due_date"`
		AssigneeID  *uint      `json:"assignee_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Task title is required", nil)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if _, err := authz.RequireTaskCreatePermission(tc.DB, projectID, user.ID); err != nil {
		return respondActionError(c, "task_create_failed", "Failed to create task. Please try again.", err)
	}

	if input.AssigneeID != nil {
		if err := tc.validateAssignee(projectID, *input.AssigneeID); err != nil {
			if errors.Is(err, errAssigneeNotMember) {
				return utils.ErrorResponse(c, fiber.StatusBadRequest, "Assignee must be a member of the project", nil)
			}
			return respondActionError(c, "task_create_failed", "Failed to create task. Please try again.", err)
		}
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	task := models.Task{
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
		ProjectID:   projectID,
		CreatorID:   user.ID,
		AssigneeID:  input.AssigneeID,
	}

	if err := tc.DB.Create(&task).Error; err != nil {
		return respondActionError(c, "task_create_failed", "Failed to create task. Please try again.", err)
	}

	if task.AssigneeID != nil {
		tc.Notifier.Notify(*task.AssigneeID, models.NotificationTaskAssigned, task.ID,
			fmt.Sprintf("Deployment: You have been assigned to task %q.", task.Title))
	}

	resp, err := tc.mapTask(&task)
	if err != nil {
		return respondActionError(c, "task_create_failed", "Failed to create task. Please try again.", err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(resp))
}

// GetProjectTasks lists every task in a project, newest first.
func (tc *TaskController) GetProjectTasks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	if _, err := authz.RequireTaskViewPermission(tc.DB, projectID, user.ID); err != nil {
		return respondActionError(c, "task_list_failed", "Failed to load tasks. Please try again.", err)
	}

	query := tc.DB.Where("project_id = ?", projectID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if priority := c.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return respondActionError(c, "task_list_failed", "Failed to load tasks. Please try again.", err)
	}

	responses := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		resp, err := tc.mapTask(&tasks[i])
		if err != nil {
			return respondActionError(c, "task_list_failed", "Failed to load tasks. Please try again.", err)
		}
		responses = append(responses, resp)
	}
	return c.JSON(utils.SuccessResponse(responses))
}

// GetMyTasks lists tasks the caller created or is assigned to, across all
// projects, with optional status and priority filters.
func (tc *TaskController) GetMyTasks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	query := tc.DB.Where("creator_id = ? OR assignee_id = ?", user.ID, user.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if priority := c.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if projectID := c.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", utils.ParseUint(projectID))
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return respondActionError(c, "task_list_failed", "Failed to load tasks. Please try again.", err)
	}

	responses := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		resp, err := tc.mapTask(&tasks[i])
		if err != nil {
			return respondActionError(c, "task_list_failed", "Failed to load tasks. Please try again.", err)
		}
		responses = append(responses, resp)
	}
	return c.JSON(utils.SuccessResponse(responses))
}

// GetTask returns one task after checking view permission on its project.
func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("id"))

	var task models.Task
	err := tc.DB.First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}
	if err != nil {
		return respondActionError(c, "task_get_failed", "Failed to load task. Please try again.", err)
	}

	if _, err := authz.RequireTaskViewPermission(tc.DB, task.ProjectID, user.ID); err != nil {
		return respondActionError(c, "task_get_failed", "Failed to load task. Please try again.", err)
	}

	resp, err := tc.mapTask(&task)
	if err != nil {
		return respondActionError(c, "task_get_failed", "Failed to load task. Please try again.", err)
	}
	return c.JSON(utils.SuccessResponse(resp))
}

// UpdateTask applies a partial update. The transition into DONE notifies the
// creator exactly once; re-saving an already-DONE task stays silent.
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("id"))

	var input struct {
		Title         *string    `json:"title" validate:"omitempty,max=200"`
		Description   *string    `json:"description" validate:"omitempty,max=5000"`
		Status        *string    `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
		Priority      *string    `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
		DueDate       *time.Time `json:"due_date"`
		AssigneeID    *uint      `json:"assignee_id"`
		ClearAssignee bool       `json:"clear_assignee"`
		ClearDueDate  bool       `json:"clear_due_date"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	var existing models.Task
	err := tc.DB.First(&existing, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}
	if err != nil {
		return respondActionError(c, "task_update_failed", "Failed to update task. Please try again.", err)
	}

	if _, err := authz.RequireTaskEditPermission(tc.DB, existing.ProjectID, user.ID); err != nil {
		return respondActionError(c, "task_update_failed", "Failed to update task. Please try again.", err)
	}

	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Task title cannot be empty", nil)
		}
		input.Title = &trimmed
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if input.AssigneeID != nil {
		if err := tc.validateAssignee(existing.ProjectID, *input.AssigneeID); err != nil {
			if errors.Is(err, errAssigneeNotMember) {
				return utils.ErrorResponse(c, fiber.StatusBadRequest, "Assignee must be a member of the project", nil)
			}
			return respondActionError(c, "task_update_failed", "Failed to update task. Please try again.", err)
		}
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.Priority != nil {
		updates["priority"] = *input.Priority
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	} else if input.ClearDueDate {
		updates["due_date"] = nil
	}
	if input.AssigneeID != nil {
		updates["assignee_id"] = *input.AssigneeID
	} else if input.ClearAssignee {
		updates["assignee_id"] = nil
	}

	// Updates writes the new values back into existing, so the pre-update
	// state has to be captured first for the transition checks below.
	prevStatus := existing.Status
	prevAssigneeID := existing.AssigneeID
	prevTitle := existing.Title

	if len(updates) > 0 {
		if err := tc.DB.Model(&existing).Updates(updates).Error; err != nil {
			return respondActionError(c, "task_update_failed", "Failed to update task. Please try again.", err)
		}
	}

	completed := input.Status != nil &&
		*input.Status == models.TaskStatusDone &&
		prevStatus != models.TaskStatusDone
	if completed {
		title := prevTitle
		if input.Title != nil {
			title = *input.Title
		}
		tc.Notifier.Notify(existing.CreatorID, models.NotificationStatusChange, taskID,
			fmt.Sprintf("Objective Complete: %q has been marked as DONE.", title))
	}

	if input.AssigneeID != nil &&
		(prevAssigneeID == nil || *prevAssigneeID != *input.AssigneeID) {
		tc.Notifier.Notify(*input.AssigneeID, models.NotificationTaskAssigned, taskID,
			fmt.Sprintf("Deployment: You have been assigned to task %q.", prevTitle))
	}

	var updated models.Task
	if err := tc.DB.First(&updated, taskID).Error; err != nil {
		return respondActionError(c, "task_update_failed", "Failed to update task. Please try again.", err)
	}
	resp, err := tc.mapTask(&updated)
	if err != nil {
		return respondActionError(c, "task_update_failed", "Failed to update task. Please try again.", err)
	}
	return c.JSON(utils.SuccessResponse(resp))
}

// DeleteTask removes a task and its checklist items and comments.
func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("id"))

	var existing models.Task
	err := tc.DB.First(&existing, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}
	if err != nil {
		return respondActionError(c, "task_delete_failed", "Failed to delete task. Please try again.", err)
	}

	if _, err := authz.RequireTaskDeletePermission(tc.DB, existing.ProjectID, user.ID); err != nil {
		return respondActionError(c, "task_delete_failed", "Failed to delete task. Please try again.", err)
	}

	// Reactions hang off comments, one level below what association
	// selects reach, so the chain is walked explicitly.
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.TaskComment{}).Select("id").Where("task_id = ?", existing.ID)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.TaskCommentReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", existing.ID).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", existing.ID).Delete(&models.ExecutionItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&existing).Error
	})
	if err != nil {
		return respondActionError(c, "task_delete_failed", "Failed to delete task. Please try again.", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"deleted": true}))
}
