package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"projecthub/models"
	"projecthub/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

type dashboardStats struct {
	OwnedProjects       int64            `json:"owned_projects"`
	MemberProjects      int64            `json:"member_projects"`
	TasksByStatus       map[string]int64 `json:"tasks_by_status"`
	AssignedOpenTasks   int64            `json:"assigned_open_tasks"`
	UnreadNotifications int64            `json:"unread_notifications"`
}

// GetDashboardStats aggregates the caller's workload in one response.
func (dc *DashboardController) GetDashboardStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	stats := dashboardStats{TasksByStatus: map[string]int64{
		models.TaskStatusTodo:       0,
		models.TaskStatusInProgress: 0,
		models.TaskStatusDone:       0,
	}}

	if err := dc.DB.Model(&models.Project{}).
		Where("owner_id = ?", user.ID).
		Count(&stats.OwnedProjects).Error; err != nil {
		return respondActionError(c, "dashboard_stats_failed", "Failed to load dashboard. Please try again.", err)
	}

	if err := dc.DB.Model(&models.ProjectMember{}).
		Where("user_id = ?", user.ID).
		Count(&stats.MemberProjects).Error; err != nil {
		return respondActionError(c, "dashboard_stats_failed", "Failed to load dashboard. Please try again.", err)
	}

	rows := []struct {
		Status string
		Count  int64
	}{}
	err := dc.DB.Model(&models.Task{}).
		Select("status, COUNT(*) as count").
		Where("creator_id = ? OR assignee_id = ?", user.ID, user.ID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return respondActionError(c, "dashboard_stats_failed", "Failed to load dashboard. Please try again.", err)
	}
	for _, row := range rows {
		stats.TasksByStatus[row.Status] = row.Count
	}

	if err := dc.DB.Model(&models.Task{}).
		Where("assignee_id = ? AND status <> ?", user.ID, models.TaskStatusDone).
		Count(&stats.AssignedOpenTasks).Error; err != nil {
		return respondActionError(c, "dashboard_stats_failed", "Failed to load dashboard. Please try again.", err)
	}

	if err := dc.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", user.ID, false).
		Count(&stats.UnreadNotifications).Error; err != nil {
		return respondActionError(c, "dashboard_stats_failed", "Failed to load dashboard. Please try again.", err)
	}

	return c.JSON(utils.SuccessResponse(stats))
}
