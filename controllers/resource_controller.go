package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"projecthub/models"
	"projecthub/utils"
)

type ResourceController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewResourceController(db *gorm.DB, logger *log.Logger) *ResourceController {
	return &ResourceController{
		DB:     db,
		Logger: logger,
	}
}

// CreateResource adds a vault asset. Any authenticated caller may create;
// the plain-text failure bodies match what the vault modal expects.
func (rc *ResourceController) CreateResource(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Title       string `json:"title" validate:"required,max=200"`
		Description string `json:"description" validate:"omitempty,max=2000"`
		URL         string `json:"url" validate:"required,url"`
		Type        string `json:"type" validate:"omitempty,oneof=LINK FILE IMAGE ARCHIVE"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("MISSING_REQUIRED_FIELDS")
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.URL) == "" {
		return c.Status(fiber.StatusBadRequest).SendString("MISSING_REQUIRED_FIELDS")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("MISSING_REQUIRED_FIELDS")
	}

	resourceType := input.Type
	if resourceType == "" {
		resourceType = models.ResourceTypeLink
	}

	resource := models.Resource{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		URL:         strings.TrimSpace(input.URL),
		Type:        resourceType,
		CreatorID:   user.ID,
	}

	if err := rc.DB.Create(&resource).Error; err != nil {
		utils.LogError("resource_create_failed", err, map[string]interface{}{"user_id": user.ID})
		return c.Status(fiber.StatusInternalServerError).SendString("DATABASE_SYNC_ERROR")
	}

	return c.Status(fiber.StatusCreated).JSON(resource)
}

// GetResources lists vault assets, newest first.
func (rc *ResourceController) GetResources(c *fiber.Ctx) error {
	query := rc.DB.Order("created_at DESC")
	if resourceType := c.Query("type"); resourceType != "" {
		query = query.Where("type = ?", resourceType)
	}

	var resources []models.Resource
	if err := query.Find(&resources).Error; err != nil {
		return respondActionError(c, "resource_list_failed", "Failed to load resources. Please try again.", err)
	}
	return c.JSON(utils.SuccessResponse(resources))
}

// UpdateResource edits a vault asset. Creator-only.
func (rc *ResourceController) UpdateResource(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	resourceID := utils.ParseUint(c.Params("id"))

	var input struct {
		Title       string `json:"title" validate:"omitempty,max=200"`
		Description string `json:"description" validate:"omitempty,max=2000"`
		URL         string `json:"url" validate:"omitempty,url"`
		Type        string `json:"type" validate:"omitempty,oneof=LINK FILE IMAGE ARCHIVE"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("INVALID_BODY")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("INVALID_BODY")
	}

	var resource models.Resource
	err := rc.DB.First(&resource, resourceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).SendString("RESOURCE_NOT_FOUND")
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("DATABASE_SYNC_ERROR")
	}

	if resource.CreatorID != user.ID {
		return c.Status(fiber.StatusForbidden).SendString("UNAUTHORIZED_ACCESS")
	}

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = strings.TrimSpace(input.Title)
	}
	if input.Description != "" {
		updates["description"] = strings.TrimSpace(input.Description)
	}
	if input.URL != "" {
		updates["url"] = strings.TrimSpace(input.URL)
	}
	if input.Type != "" {
		updates["type"] = input.Type
	}

	if len(updates) > 0 {
		if err := rc.DB.Model(&resource).Updates(updates).Error; err != nil {
			utils.LogError("resource_update_failed", err, map[string]interface{}{"resource_id": resourceID})
			return c.Status(fiber.StatusInternalServerError).SendString("DATABASE_SYNC_ERROR")
		}
	}

	return c.JSON(resource)
}

// DeleteResource removes a vault asset. Creator-only.
func (rc *ResourceController) DeleteResource(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	resourceID := utils.ParseUint(c.Params("id"))

	var resource models.Resource
	err := rc.DB.First(&resource, resourceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).SendString("RESOURCE_NOT_FOUND")
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("DATABASE_SYNC_ERROR")
	}

	if resource.CreatorID != user.ID {
		return c.Status(fiber.StatusForbidden).SendString("UNAUTHORIZED_ACCESS")
	}

	if err := rc.DB.Delete(&resource).Error; err != nil {
		utils.LogError("resource_delete_failed", err, map[string]interface{}{"resource_id": resourceID})
		return c.Status(fiber.StatusInternalServerError).SendString("DATABASE_SYNC_ERROR")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
