package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	database "schoolhub_backend/internals/databases"
	"schoolhub_backend/internals/middlewares"
)

// BaseRoutes mounts the banner, /health and, when metrics is non-nil, /metrics.
func BaseRoutes(app *fiber.App, db *gorm.DB, metrics *middlewares.Metrics) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("SchoolHub API is running 🚀")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "Connected"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		if err := database.Ping(db); err != nil {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}

		uptime := 0
		if !startTime.IsZero() {
			uptime = int(time.Since(startTime).Seconds())
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"server_time":    time.Now().UTC().Format(time.RFC3339),
			"uptime_seconds": uptime,
			"environment":    configs.GetEnv("APP_ENV", "development"),
		})
	})

	if metrics != nil {
		app.Get("/metrics", metrics.Handler())
	}
}
