package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"projecthub/models"
	"projecthub/utils"
)

type UserController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewUserController(db *gorm.DB, logger *log.Logger) *UserController {
	return &UserController{
		DB:     db,
		Logger: logger,
	}
}

// GetCurrentUser returns the authenticated caller's profile.
func (uc *UserController) GetCurrentUser(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return c.JSON(utils.SuccessResponse(user))
}

// UpdateProfile edits the caller's own name parts and designation.
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		FirstName   string `json:"first_name" validate:"omitempty,max=100"`
		LastName    string `json:"last_name" validate:"omitempty,max=100"`
		Designation string `json:"designation" validate:"omitempty,max=200"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{}
	if input.FirstName != "" {
		updates["first_name"] = strings.TrimSpace(input.FirstName)
	}
	if input.LastName != "" {
		updates["last_name"] = strings.TrimSpace(input.LastName)
	}
	if input.Designation != "" {
		updates["designation"] = strings.TrimSpace(input.Designation)
	}

	if len(updates) > 0 {
		if err := uc.DB.Model(user).Updates(updates).Error; err != nil {
			return respondActionError(c, "profile_update_failed", "Failed to update profile. Please try again.", err)
		}
	}

	return c.JSON(utils.SuccessResponse(user))
}
