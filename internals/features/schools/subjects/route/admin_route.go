package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/subjects/controller"
)

// SubjectAdminRoutes mounts under /api/a/:school_id.
func SubjectAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewSubjectController(db)

	g := r.Group("/subjects")
	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
	g.Get("/class/:class_id/with-teachers", ctl.ForClassWithTeachers)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id", ctl.Update)
	g.Get("/:id/ca-structure", ctl.CAStructure)
}
