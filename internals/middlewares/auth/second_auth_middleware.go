package auth

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	authHelper "schoolhub_backend/internals/features/users/auth/helper"
	authRepo "schoolhub_backend/internals/features/users/auth/repository"
	authService "schoolhub_backend/internals/features/users/auth/service"
	"schoolhub_backend/internals/helpers/dbtime"
)

// SecondAuthMiddleware identifies the caller when a valid token is present
// and otherwise lets the request through anonymously.
func SecondAuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil || configs.JWTSecret == "" {
			return c.Next()
		}
		claims, err := authService.ParseAccessToken(tokenString, configs.JWTSecret, dbtime.Now())
		if err != nil {
			return c.Next()
		}
		q := db.WithContext(c.UserContext())
		if revoked, err := authRepo.IsBlacklisted(q, authHelper.HashToken(tokenString, configs.JWTSecret)); err != nil || revoked {
			return c.Next()
		}
		if u, err := loadActiveUser(q, claims.UserID); err == nil {
			storeUserToLocals(c, u)
		}
		return c.Next()
	}
}
