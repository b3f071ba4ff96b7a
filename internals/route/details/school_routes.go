package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	ClassRoutes "schoolhub_backend/internals/features/schools/classes/route"
	DashboardRoutes "schoolhub_backend/internals/features/schools/dashboard/route"
	SchoolRoutes "schoolhub_backend/internals/features/schools/schools/route"
	StudentRoutes "schoolhub_backend/internals/features/schools/students/route"
	SubjectRoutes "schoolhub_backend/internals/features/schools/subjects/route"
	TeacherRoutes "schoolhub_backend/internals/features/schools/teachers/route"
)

/* ===================== PUBLIC ===================== */
func SchoolPublicRoutes(r fiber.Router, db *gorm.DB) {
	SchoolRoutes.SchoolPublicRoutes(r, db)
}

/* ===================== USER ===================== */
func SchoolUserRoutes(r fiber.Router, db *gorm.DB) {
	SchoolRoutes.SchoolUserRoutes(r, db)
	DashboardRoutes.DashboardUserRoutes(r, db)
}

/* ===================== ADMIN (/api/a/:school_id) ===================== */
func SchoolAdminRoutes(r fiber.Router, db *gorm.DB) {
	SchoolRoutes.SchoolAdminRoutes(r, db)
	TeacherRoutes.TeacherAdminRoutes(r, db)
	ClassRoutes.ClassAdminRoutes(r, db)
	StudentRoutes.StudentAdminRoutes(r, db)
	SubjectRoutes.SubjectAdminRoutes(r, db)
	DashboardRoutes.DashboardAdminRoutes(r, db)
}
