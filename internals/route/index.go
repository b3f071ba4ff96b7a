package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	authMiddleware "schoolhub_backend/internals/middlewares/auth"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
	routeDetails "schoolhub_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	// ===================== AUTH =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	routeDetails.AuthRoutes(app, db)

	// ===================== GROUPS =====================

	// PUBLIC → token optional
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public", authMiddleware.SecondAuthMiddleware(db))

	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api/u", authMiddleware.AuthMiddleware(db))

	// school_id in the path is resolved and checked by the scope guard
	log.Println("[INFO] Setting up ADMIN group (Auth + Scope)...")
	admin := app.Group("/api/a/:school_id",
		authMiddleware.AuthMiddleware(db),
		featuresMiddleware.IsSchoolAdmin(db),
	)

	log.Println("[INFO] Setting up OWNER group (Auth + platform admin)...")
	owner := app.Group("/api/o",
		authMiddleware.AuthMiddleware(db),
		authMiddleware.OnlyPlatformAdmins(constants.RoleErrorPlatform("this resource")),
	)

	// ===================== MOUNT ROUTES =====================
	log.Println("[INFO] Mounting School routes...")
	routeDetails.SchoolPublicRoutes(public, db)
	routeDetails.SchoolUserRoutes(private, db)
	routeDetails.SchoolAdminRoutes(admin, db)

	log.Println("[INFO] Mounting Finance routes...")
	routeDetails.FinancePublicRoutes(public, db)
	routeDetails.FinanceAdminRoutes(admin, db)

	log.Println("[INFO] Mounting Utils & User routes...")
	routeDetails.UtilsPublicRoutes(public, db)
	routeDetails.UtilsUserRoutes(private, db)
	routeDetails.UserOwnerRoutes(owner, db)
}
