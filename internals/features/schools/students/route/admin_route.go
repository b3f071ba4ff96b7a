package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/students/controller"
)

// StudentAdminRoutes mounts under /api/a/:school_id.
func StudentAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewStudentController(db)

	g := r.Group("/students")
	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
	// static path before /:id
	g.Post("/import", ctl.Import)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id", ctl.Update)
	g.Post("/:id/transfer", ctl.Transfer)
	g.Get("/:id/transfers", ctl.Transfers)
}
