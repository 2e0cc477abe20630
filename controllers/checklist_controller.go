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

type ChecklistController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *utils.Notifier
}

func NewChecklistController(db *gorm.DB, notifier *utils.Notifier, logger *log.Logger) *ChecklistController {
	return &ChecklistController{
		DB:       db,
		Logger:   logger,
		Notifier: notifier,
	}
}

// AddItem appends a checklist entry to a task. The task creator is notified
// when someone else adds instructions to their task.
func (cc *ChecklistController) AddItem(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("id"))

	var input struct {
		Content string `json:"content" validate:"required,max=500"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	input.Content = strings.TrimSpace(input.Content)
	if input.Content == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Item content is required", nil)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var task models.Task
	err := cc.DB.First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}
	if err != nil {
		return respondActionError(c, "checklist_add_failed", "Failed to add checklist item. Please try again.", err)
	}

	if _, err := authz.RequireTaskEditPermission(cc.DB, task.ProjectID, user.ID); err != nil {
		return respondActionError(c, "checklist_add_failed", "Failed to add checklist item. Please try again.", err)
	}

	item := models.ExecutionItem{
		TaskID:  taskID,
		Content: input.Content,
	}
	if err := cc.DB.Create(&item).Error; err != nil {
		return respondActionError(c, "checklist_add_failed", "Failed to add checklist item. Please try again.", err)
	}

	if user.ID != task.CreatorID {
		cc.Notifier.Notify(task.CreatorID, models.NotificationChecklistUpdated, taskID,
			fmt.Sprintf("New Instruction: %q added to task %q.", item.Content, task.Title))
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(item))
}

// ToggleItem flips an item's completed flag. Completing an item notifies the
// task creator.
func (cc *ChecklistController) ToggleItem(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	itemID := utils.ParseUint(c.Params("id"))

	var input struct {
		Completed bool `json:"completed"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	var item models.ExecutionItem
	err := cc.DB.Preload("Task").First(&item, itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// The item may have been deleted under the caller's feet
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Item no longer exists", nil)
	}
	if err != nil {
		return respondActionError(c, "checklist_toggle_failed", "Failed to update checklist item. Please try again.", err)
	}

	if _, err := authz.RequireTaskEditPermission(cc.DB, item.Task.ProjectID, user.ID); err != nil {
		return respondActionError(c, "checklist_toggle_failed", "Failed to update checklist item. Please try again.", err)
	}

	if err := cc.DB.Model(&item).Update("completed", input.Completed).Error; err != nil {
		return respondActionError(c, "checklist_toggle_failed", "Failed to update checklist item. Please try again.", err)
	}
	item.Completed = input.Completed

	if input.Completed {
		cc.Notifier.Notify(item.Task.CreatorID, models.NotificationChecklistUpdated, item.TaskID,
			fmt.Sprintf("Complete: %q in task %q.", item.Content, item.Task.Title))
	}

	return c.JSON(utils.SuccessResponse(item))
}

// DeleteItem removes a checklist entry.
func (cc *ChecklistController) DeleteItem(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	itemID := utils.ParseUint(c.Params("id"))

	var item models.ExecutionItem
	err := cc.DB.Preload("Task").First(&item, itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Item no longer exists", nil)
	}
	if err != nil {
		return respondActionError(c, "checklist_delete_failed", "Failed to delete checklist item. Please try again.", err)
	}

	if _, err := authz.RequireTaskEditPermission(cc.DB, item.Task.ProjectID, user.ID); err != nil {
		return respondActionError(c, "checklist_delete_failed", "Failed to delete checklist item. Please try again.", err)
	}

	if err := cc.DB.Delete(&item).Error; err != nil {
		return respondActionError(c, "checklist_delete_failed", "Failed to delete checklist item. Please try again.", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"deleted": true}))
}
