package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"crm_backend/internal/middleware"
	"crm_backend/pkg/apperr"
	"crm_backend/pkg/metrics"
)

// errorHandler translates application errors into their HTTP shape. Every
// error body carries a human-readable detail message.
func errorHandler(c *fiber.Ctx, err error) error {
	if _, ok := apperr.KindOf(err); ok {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{
			"detail": err.Error(),
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"detail": fiberErr.Message,
		})
	}

	log.Printf("unhandled error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"detail": "Internal server error",
	})
}

// NewApp builds the Fiber application with middleware and all routes.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(metrics.Middleware())

	setupRoutes(app)
	return app
}

func setupRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	// Auth routes
	users := app.Group("/users")
	users.Post("/register", Register)
	users.Post("/login", Login)
	users.Get("/me", middleware.AuthMiddleware(), GetMe)

	// Protected lead routes. /export registers before /:id so the static
	// segment wins.
	leads := app.Group("/leads", middleware.AuthMiddleware())
	leads.Get("/", ListLeads)
	leads.Post("/", CreateLead)
	leads.Get("/export", ExportLeadsCSV)
	leads.Get("/export.csv", ExportLeadsCSV)
	leads.Get("/:id", GetLead)
	leads.Put("/:id", UpdateLead)
	leads.Delete("/:id", DeleteLead)

	// Nested activity routes
	leads.Get("/:lead_id/activities", ListActivities)
	leads.Post("/:lead_id/activities", CreateActivity)

	// Dashboard
	dashboard := app.Group("/dashboard", middleware.AuthMiddleware())
	dashboard.Get("/", GetDashboard)
}
