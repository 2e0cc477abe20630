package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	controller "projecthub/controllers"
	"projecthub/middleware"
	"projecthub/utils"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, notifier *utils.Notifier, uploader utils.Uploader) {
	// Initialize controllers with their respective loggers
	projectController := controller.NewProjectController(db, notifier, log.New(os.Stdout, "PROJECT: ", log.LstdFlags))
	memberController := controller.NewMemberController(db, log.New(os.Stdout, "MEMBER: ", log.LstdFlags))
	taskController := controller.NewTaskController(db, notifier, log.New(os.Stdout, "TASK: ", log.LstdFlags))
	checklistController := controller.NewChecklistController(db, notifier, log.New(os.Stdout, "CHECKLIST: ", log.LstdFlags))
	commentController := controller.NewCommentController(db, notifier, log.New(os.Stdout, "COMMENT: ", log.LstdFlags))
	notificationController := controller.NewNotificationController(db, notifier, log.New(os.Stdout, "NOTIFY: ", log.LstdFlags))
	resourceController := controller.NewResourceController(db, log.New(os.Stdout, "RESOURCE: ", log.LstdFlags))
	uploadController := controller.NewUploadController(uploader, log.New(os.Stdout, "UPLOAD: ", log.LstdFlags))
	searchController := controller.NewSearchController(db, log.New(os.Stdout, "SEARCH: ", log.LstdFlags))
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))
	userController := controller.NewUserController(db, log.New(os.Stdout, "USER: ", log.LstdFlags))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(db), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Current user
	api.Get("/me", userController.GetCurrentUser)
	api.Put("/me", userController.UpdateProfile)

	// Project routes
	project := api.Group("/projects")
	project.Post("/", projectController.CreateProject)
	project.Get("/", projectController.GetProjects)
	project.Get("/:id", projectController.GetProject)
	project.Patch("/:id", projectController.PatchProject)
	project.Put("/:id/status", projectController.UpdateProjectStatus)
	project.Delete("/:id", projectController.DeleteProject)

	// Member routes
	project.Get("/:id/members", memberController.GetMembers)
	project.Post("/:id/members", memberController.AddMemberByEmail)
	project.Put("/:id/members/:userId", memberController.UpdateMemberRole)
	project.Delete("/:id/members/:userId", memberController.RemoveMember)

	// Task routes
	project.Post("/:id/tasks", taskController.CreateTask)
	project.Get("/:id/tasks", taskController.GetProjectTasks)

	task := api.Group("/tasks")
	task.Get("/", taskController.GetMyTasks)
	task.Get("/:id", taskController.GetTask)
	task.Put("/:id", taskController.UpdateTask)
	task.Delete("/:id", taskController.DeleteTask)

	// Checklist routes
	task.Post("/:id/items", checklistController.AddItem)
	api.Put("/items/:id/toggle", checklistController.ToggleItem)
	api.Delete("/items/:id", checklistController.DeleteItem)

	// Comment and reaction routes
	task.Get("/:id/comments", commentController.GetComments)
	task.Post("/:id/comments", commentController.CreateComment)
	api.Put("/comments/:id", commentController.UpdateComment)
	api.Delete("/comments/:id", commentController.DeleteComment)
	api.Post("/comments/:id/reactions", commentController.ToggleReaction)

	// Notification routes
	notification := api.Group("/notifications")
	notification.Get("/", notificationController.GetNotifications)
	notification.Get("/unread", notificationController.GetUnreadNotifications)
	notification.Put("/:id/read", notificationController.MarkNotificationRead)
	notification.Get("/stream", websocket.New(controller.HandleNotificationStream(notifier)))

	// Resource routes
	resource := api.Group("/resources")
	resource.Post("/", resourceController.CreateResource)
	resource.Get("/", resourceController.GetResources)
	resource.Patch("/:id", resourceController.UpdateResource)
	resource.Delete("/:id", resourceController.DeleteResource)

	// Upload route with rate limiting
	api.Post("/uploads", middleware.UploadRateLimiter(), uploadController.UploadFile)

	// Search and dashboard
	api.Get("/search", searchController.GlobalSearch)
	api.Get("/dashboard/stats", dashboardController.GetDashboardStats)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})

	log.Println("API routes initialized successfully")
}
