package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	classController "schoolhub_backend/internals/features/schools/classes/controller"
	"schoolhub_backend/internals/features/utils/controller"
)

// UtilsPublicRoutes mounts under /api/public.
func UtilsPublicRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewUtilsController(db)

	g := r.Group("/utils")
	g.Get("/school-slug-available", ctl.SlugAvailable)
	g.Get("/generate-class-display-name", classController.GenerateDisplayName)
	g.Get("/states", ctl.States)
	g.Get("/school-types", ctl.SchoolTypes)
}

// UtilsUserRoutes mounts under /api/u.
func UtilsUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewUtilsController(db)
	r.Get("/utils/search", ctl.Search)
}
