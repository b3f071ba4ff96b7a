package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/classes/controller"
)

// ClassAdminRoutes mounts under /api/a/:school_id.
func ClassAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewClassController(db)

	g := r.Group("/classes")
	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id", ctl.Update)
	g.Get("/:id/students", ctl.Students)
	g.Get("/:id/subjects", ctl.Subjects)
	g.Post("/:id/assign-form-teacher", ctl.AssignFormTeacher)
}
