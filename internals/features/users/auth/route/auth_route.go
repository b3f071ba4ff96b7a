package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/users/auth/controller"
	rateLimiter "schoolhub_backend/internals/middlewares"
	authMiddleware "schoolhub_backend/internals/middlewares/auth"
)

// AuthRoutes mounts /api/auth. Login and register carry their own, tighter limiters.
func AuthRoutes(app *fiber.App, db *gorm.DB) {
	ctl := controller.NewAuthController(db)

	base := app.Group("/api/auth")
	base.Post("/register", rateLimiter.RegisterRateLimiter(), ctl.Register)
	base.Post("/login", rateLimiter.LoginRateLimiter(), ctl.Login)
	base.Post("/login-google", rateLimiter.LoginRateLimiter(), ctl.LoginGoogle)

	auth := authMiddleware.AuthMiddleware(db)
	base.Post("/logout", auth, ctl.Logout)
	base.Get("/me", auth, ctl.Me)
	base.Post("/change-password", auth, ctl.ChangePassword)
}
