package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	UserRoutes "schoolhub_backend/internals/features/users/user/route"
	UtilsRoutes "schoolhub_backend/internals/features/utils/route"
)

func UtilsPublicRoutes(r fiber.Router, db *gorm.DB) {
	UtilsRoutes.UtilsPublicRoutes(r, db)
}

func UtilsUserRoutes(r fiber.Router, db *gorm.DB) {
	UtilsRoutes.UtilsUserRoutes(r, db)
}

/* ===================== PLATFORM (/api/o) ===================== */
func UserOwnerRoutes(r fiber.Router, db *gorm.DB) {
	UserRoutes.UserPlatformRoutes(r, db)
}
