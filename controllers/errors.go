package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"projecthub/authz"
	"projecthub/utils"
)

// respondActionError maps a mutation failure onto the error taxonomy:
// authorization failures and not-founds are expected control flow and keep
// their user-actionable text; anything else is a persistence failure, logged
// with full detail and downgraded to the generic message.
func respondActionError(c *fiber.Ctx, errorType, genericMessage string, err error) error {
	var accessErr *authz.AccessError
	if errors.As(err, &accessErr) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, accessErr.Error(), nil)
	}

	var notFoundErr *authz.NotFoundError
	if errors.As(err, &notFoundErr) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, notFoundErr.Error(), nil)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Resource not found", nil)
	}

	utils.LogError(errorType, err, map[string]interface{}{
		"path":   c.Path(),
		"method": c.Method(),
	})
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, genericMessage, nil)
}
