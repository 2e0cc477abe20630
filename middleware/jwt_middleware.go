package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"projecthub/models"
	"projecthub/utils"
)

// Protected verifies the identity provider's session token and resolves the
// local user, provisioning one just-in-time on first sight of a new external
// identity. The resolved user is stashed in c.Locals("user").
func Protected(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Try to get token from Authorization header first
		var token string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid authorization format",
				})
			}
			token = tokenParts[1]
		} else {
			// Fall back to cookie if header not present
			token = c.Cookies("session_token")
			if token == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authorization required",
				})
			}
		}

		claims, err := utils.ParseIdentityToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		user, err := resolveUser(db, claims)
		if err != nil {
			utils.LogError("identity_sync_failed", err, map[string]interface{}{
				"external_id": claims.Subject,
			})
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to resolve user identity",
			})
		}

		c.Locals("user", user)
		c.Locals("userID", user.ID)

		return c.Next()
	}
}

// resolveUser finds the local row for an external identity: by external id
// first, then by email (re-keying the row when the provider id changed),
// finally by creating a fresh record.
func resolveUser(db *gorm.DB, claims *utils.IdentityClaims) (*models.User, error) {
	var user models.User

	err := db.Where("external_id = ?", claims.Subject).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := strings.ToLower(claims.Email)
	err = db.Where("email = ?", email).First(&user).Error
	if err == nil {
		if user.ExternalID != claims.Subject {
			if err := db.Model(&user).Update("external_id", claims.Subject).Error; err != nil {
				return nil, err
			}
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		ExternalID: claims.Subject,
		Email:      email,
	}
	if claims.FirstName != "" {
		user.FirstName = &claims.FirstName
	}
	if claims.LastName != "" {
		user.LastName = &claims.LastName
	}
	if claims.ImageURL != "" {
		user.ImageURL = &claims.ImageURL
	}

	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
