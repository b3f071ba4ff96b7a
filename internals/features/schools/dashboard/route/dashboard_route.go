package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	"schoolhub_backend/internals/features/schools/dashboard/controller"
	authMiddleware "schoolhub_backend/internals/middlewares/auth"
)

// DashboardAdminRoutes mounts under /api/a/:school_id.
func DashboardAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewDashboardController(db)
	r.Get("/dashboard/overview", ctl.Overview)
}

// DashboardUserRoutes mounts under /api/u.
func DashboardUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewDashboardController(db)
	r.Get("/dashboard/teacher/:teacher_id",
		authMiddleware.OnlyRolesSlice(constants.RoleErrorTeacher("the teacher dashboard"), constants.TeacherAndAbove),
		ctl.Teacher,
	)
}
