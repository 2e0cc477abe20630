package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"projecthub/models"
	"projecthub/utils"
)

type SearchController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSearchController(db *gorm.DB, logger *log.Logger) *SearchController {
	return &SearchController{
		DB:     db,
		Logger: logger,
	}
}

type searchResults struct {
	Projects []models.Project     `json:"projects"`
	Tasks    []models.Task        `json:"tasks"`
	Members  []models.UserSummary `json:"members"`
}

// GlobalSearch matches projects and tasks within the caller's reach plus the
// global user directory, five results per bucket. Queries under two
// characters return empty buckets.
func (sc *SearchController) GlobalSearch(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	query := strings.TrimSpace(c.Query("q"))
	results := searchResults{
		Projects: []models.Project{},
		Tasks:    []models.Task{},
		Members:  []models.UserSummary{},
	}
	if len(query) < 2 {
		return c.JSON(utils.SuccessResponse(results))
	}
	pattern := "%" + strings.ToLower(query) + "%"

	memberProjects := sc.DB.Model(&models.ProjectMember{}).
		Select("project_id").
		Where("user_id = ?", user.ID)

	err := sc.DB.
		Where("LOWER(name) LIKE ?", pattern).
		Where(sc.DB.Where("owner_id = ?", user.ID).Or("id IN (?)", memberProjects)).
		Limit(5).
		Find(&results.Projects).Error
	if err != nil {
		return respondActionError(c, "search_failed", "Search failed. Please try again.", err)
	}

	err = sc.DB.
		Where("LOWER(title) LIKE ?", pattern).
		Where("project_id IN (?)", sc.DB.Model(&models.Project{}).
			Select("id").
			Where(sc.DB.Where("owner_id = ?", user.ID).Or("id IN (?)", memberProjects))).
		Limit(5).
		Find(&results.Tasks).Error
	if err != nil {
		return respondActionError(c, "search_failed", "Search failed. Please try again.", err)
	}

	var users []models.User
	err = sc.DB.
		Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern).
		Limit(5).
		Find(&users).Error
	if err != nil {
		return respondActionError(c, "search_failed", "Search failed. Please try again.", err)
	}
	for i := range users {
		results.Members = append(results.Members, users[i].Summary())
	}

	return c.JSON(utils.SuccessResponse(results))
}
