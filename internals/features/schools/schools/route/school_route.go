package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/schools/controller"
)

// SchoolPublicRoutes mounts under /api/public.
func SchoolPublicRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewSchoolController(db)

	g := r.Group("/schools")
	g.Get("/", ctl.List)
	g.Get("/slug/:slug", ctl.GetBySlug)
	g.Get("/:school_id", ctl.GetByID)
}

// SchoolUserRoutes mounts under /api/u.
func SchoolUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewSchoolController(db)

	g := r.Group("/schools")
	g.Post("/", ctl.Create)
	g.Post("/join", ctl.Join)
	g.Post("/create-and-join", ctl.CreateAndJoin)
}

// SchoolAdminRoutes mounts under /api/a/:school_id.
func SchoolAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewSchoolController(db)

	g := r.Group("/school")
	g.Get("/", ctl.GetMine)
	g.Patch("/", ctl.Update)
	g.Get("/stats", ctl.Stats)
	g.Post("/regenerate-codes", ctl.RegenerateCodes)
	g.Post("/logo", ctl.UploadLogo)
}
