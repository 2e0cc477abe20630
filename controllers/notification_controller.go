package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"projecthub/models"
	"projecthub/utils"
)

type NotificationController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *utils.Notifier
}

func NewNotificationController(db *gorm.DB, notifier *utils.Notifier, logger *log.Logger) *NotificationController {
	return &NotificationController{
		DB:       db,
		Logger:   logger,
		Notifier: notifier,
	}
}

// GetNotifications lists the caller's notifications, newest first.
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var notifications []models.Notification
	err := nc.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return respondActionError(c, "notification_list_failed", "Failed to load notifications. Please try again.", err)
	}

	return c.JSON(utils.SuccessResponse(notifications))
}

// GetUnreadNotifications lists only the unread ones, newest first.
func (nc *NotificationController) GetUnreadNotifications(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var notifications []models.Notification
	err := nc.DB.Where("user_id = ? AND read = ?", user.ID, false).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return respondActionError(c, "notification_list_failed", "Failed to load notifications. Please try again.", err)
	}

	return c.JSON(utils.SuccessResponse(notifications))
}

// MarkNotificationRead flips the read flag. Only the addressed user may mark
// their own notifications.
func (nc *NotificationController) MarkNotificationRead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	notificationID := utils.ParseUint(c.Params("id"))

	var notification models.Notification
	err := nc.DB.First(&notification, notificationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Notification not found", nil)
	}
	if err != nil {
		return respondActionError(c, "notification_read_failed", "Failed to update notification. Please try again.", err)
	}

	if notification.UserID != user.ID {
		return utils.ErrorResponse(c, fiber.StatusForbidden,
			"Access denied: this notification is not addressed to you", nil)
	}

	if err := nc.DB.Model(&notification).Update("read", true).Error; err != nil {
		return respondActionError(c, "notification_read_failed", "Failed to update notification. Please try again.", err)
	}
	notification.Read = true

	return c.JSON(utils.SuccessResponse(notification))
}
