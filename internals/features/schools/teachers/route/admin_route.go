package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/teachers/controller"
)

// TeacherAdminRoutes mounts under /api/a/:school_id.
func TeacherAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewTeacherController(db)

	g := r.Group("/teachers")
	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id", ctl.Update)
	g.Get("/:id/subjects", ctl.Subjects)
	g.Post("/:id/activate", ctl.Activate)
}
