package controller

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"projecthub/authz"
	"projecthub/models"
	"projecthub/utils"
)

type ProjectController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *utils.Notifier
}

func NewProjectController(db *gorm.DB, notifier *utils.Notifier, logger *log.Logger) *ProjectController {
	return &ProjectController{
		DB:       db,
		Logger:   logger,
		Notifier: notifier,
	}
}

// projectResponse is a project plus the requesting user's resolved role.
type projectResponse struct {
	models.Project
	CurrentUserRole authz.Role `json:"current_user_role"`
}

// CreateProject creates a project owned by the caller. No membership row is
// written for the owner; ownership lives on the project itself.
func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name        string `json:"name" validate:"required,max=100"`
		Description string `json:"description" validate:"omitempty,max=2000"`
		Status      string `json:"status" validate:"omitempty,oneof=PLANNING ACTIVE COMPLETED"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Project name is required", nil)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	status := input.Status
	if status == "" {
		status = models.ProjectStatusPlanning
	}

	project := models.Project{
		Name:        input.Name,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
		OwnerID:     user.ID,
	}

	if err := pc.DB.Create(&project).Error; err != nil {
		return respondActionError(c, "project_create_failed", "Failed to create project. Please try again.", err)
	}

	pc.Notifier.Notify(user.ID, models.NotificationProjectCreated, project.ID,
		fmt.Sprintf("System: Project %q initialized successfully.", project.Name))

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(projectResponse{
		Project:         project,
		CurrentUserRole: authz.RoleOwner,
	}))
}

// GetProjects lists every project the caller owns or is a member of, newest
// first, with task counts and the caller's role attached.
func (pc *ProjectController) GetProjects(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var projects []models.Project
	err := pc.DB.
		Where("owner_id = ?", user.ID).
		Or("id IN (?)", pc.DB.Model(&models.ProjectMember{}).
			Select("project_id").
			Where("user_id = ?", user.ID)).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return respondActionError(c, "project_list_failed", "Failed to load projects. Please try again.", err)
	}

	responses := make([]projectResponse, 0, len(projects))
	for i := range projects {
		if err := pc.attachTaskCount(&projects[i]); err != nil {
			return respondActionError(c, "project_list_failed", "Failed to load projects. Please try again.", err)
		}

		role := authz.RoleOwner
		if projects[i].OwnerID != user.ID {
			access, err := authz.ResolveAccess(pc.DB, projects[i].ID, user.ID)
			if err != nil {
				return respondActionError(c, "project_list_failed", "Failed to load projects. Please try again.", err)
			}
			role = access.Role
		}

		responses = append(responses, projectResponse{Project: projects[i], CurrentUserRole: role})
	}

	return c.JSON(utils.SuccessResponse(responses))
}

// GetProject returns one project with the caller's resolved role, or 404 when
// the project is absent or the caller has no access (existence is not leaked
// to outsiders).
func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	access, err := authz.ResolveAccess(pc.DB, projectID, user.ID)
	if err != nil {
		return respondActionError(c, "project_get_failed", "Failed to load project. Please try again.", err)
	}
	if !access.HasAccess {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
	}

	var project models.Project
	if err := pc.DB.First(&project, projectID).Error; err != nil {
		return respondActionError(c, "project_get_failed", "Failed to load project. Please try again.", err)
	}
	if err := pc.attachTaskCount(&project); err != nil {
		return respondActionError(c, "project_get_failed", "Failed to load project. Please try again.", err)
	}

	return c.JSON(utils.SuccessResponse(projectResponse{
		Project:         project,
		CurrentUserRole: access.Role,
	}))
}

// UpdateProjectStatus moves a project between PLANNING, ACTIVE and COMPLETED.
// Requires ADMIN or higher.
func (pc *ProjectController) UpdateProjectStatus(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	var input struct {
		Status string `json:"status" validate:"required,oneof=PLANNING ACTIVE COMPLETED"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	role, err := authz.RequireRole(pc.DB, projectID, user.ID, authz.RoleAdmin)
	if err != nil {
		return respondActionError(c, "project_status_failed", "Failed to update project. Please try again.", err)
	}
	if !authz.CanEditProject(role) {
		return utils.ErrorResponse(c, fiber.StatusForbidden,
			"Access denied: you don't have permission to update this project", nil)
	}

	if err := pc.DB.Model(&models.Project{}).Where("id = ?", projectID).
		Update("status", input.Status).Error; err != nil {
		return respondActionError(c, "project_status_failed", "Failed to update project. Please try again.", err)
	}

	pc.Notifier.Notify(user.ID, models.NotificationStatusChange, projectID,
		fmt.Sprintf("Alert: Project status updated to %s.", input.Status))

	return c.JSON(utils.SuccessResponse(fiber.Map{"project_id": projectID, "status": input.Status}))
}

// PatchProject updates name and description. Owner-only, with the plain-text
// status bodies the settings modal expects: 404 PROJECT_NOT_FOUND,
// 403 UNAUTHORIZED_ACCESS, 500 INTERNAL_SERVER_ERROR.
func (pc *ProjectController) PatchProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	var input struct {
		Name        string `json:"name" validate:"omitempty,max=100"`
		Description string `json:"description" validate:"omitempty,max=2000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("INVALID_BODY")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("INVALID_BODY")
	}

	var project models.Project
	if err := pc.DB.First(&project, projectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).SendString("PROJECT_NOT_FOUND")
	}

	if project.OwnerID != user.ID {
		return c.Status(fiber.StatusForbidden).SendString("UNAUTHORIZED_ACCESS")
	}

	updates := map[string]interface{}{}
	if input.Name != "" {
		updates["name"] = strings.TrimSpace(input.Name)
	}
	if input.Description != "" {
		updates["description"] = strings.TrimSpace(input.Description)
	}

	if len(updates) > 0 {
		if err := pc.DB.Model(&project).Updates(updates).Error; err != nil {
			utils.LogError("project_patch_failed", err, map[string]interface{}{"project_id": projectID})
			return c.Status(fiber.StatusInternalServerError).SendString("INTERNAL_SERVER_ERROR")
		}
	}

	return c.JSON(project)
}

// DeleteProject removes a project and everything hanging off it. Owner-exact:
// ADMIN rank is not enough.
func (pc *ProjectController) DeleteProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	role, err := authz.RequireRole(pc.DB, projectID, user.ID, authz.RoleOwner)
	if err != nil {
		return respondActionError(c, "project_delete_failed", "Failed to delete project. Please try again.", err)
	}
	if !authz.CanDeleteProject(role) {
		return utils.ErrorResponse(c, fiber.StatusForbidden,
			"Access denied: only project owners can delete projects", nil)
	}

	// Deepest descendants first, so each subquery still sees its live
	// parent rows when it runs.
	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", projectID)
		commentIDs := tx.Model(&models.TaskComment{}).Select("id").Where("task_id IN (?)", taskIDs)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.TaskCommentReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.ExecutionItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{Model: gorm.Model{ID: projectID}}).Error
	})
	if err != nil {
		return respondActionError(c, "project_delete_failed", "Failed to delete project. Please try again.", err)
	}

	pc.Logger.Printf("project %d deleted by user %d", projectID, user.ID)
	return c.JSON(utils.SuccessResponse(fiber.Map{"deleted": true}))
}

func (pc *ProjectController) attachTaskCount(project *models.Project) error {
	return pc.DB.Model(&models.Task{}).
		Where("project_id = ?", project.ID).
		Count(&project.TaskCount).Error
}
