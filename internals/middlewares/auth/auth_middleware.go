// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	authHelper "schoolhub_backend/internals/features/users/auth/helper"
	authRepo "schoolhub_backend/internals/features/users/auth/repository"
	authService "schoolhub_backend/internals/features/users/auth/service"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

// HeaderGatewayUserID is set by a trusted upstream gateway that already
// authenticated the caller.
const HeaderGatewayUserID = "X-User-Id"

// Public webhook paths that skip auth.
var skipPaths = map[string]struct{}{
	"/api/public/subscriptions/notification": {},
}

func AuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := skipPaths[c.Path()]; ok {
			return c.Next()
		}
		q := db.WithContext(c.UserContext())

		// 1) Gateway mode
		if configs.TrustGatewayHeaders {
			if raw := strings.TrimSpace(c.Get(HeaderGatewayUserID)); raw != "" {
				userID, err := uuid.Parse(raw)
				if err != nil {
					return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid gateway user id")
				}
				return hydrate(c, q, userID)
			}
		}

		// 2) Bearer token (or cookie)
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - "+err.Error())
		}

		secretKey := configs.JWTSecret
		if secretKey == "" {
			log.Println("[ERROR] JWT_SECRET is empty")
			return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT Secret")
		}

		claims, err := authService.ParseAccessToken(tokenString, secretKey, dbtime.Now())
		if err != nil {
			if errors.Is(err, authService.ErrTokenExpired) {
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token expired")
			}
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid token")
		}

		// 3) Blacklist (logout)
		revoked, err := authRepo.IsBlacklisted(q, authHelper.HashToken(tokenString, secretKey))
		if err != nil {
			return helper.ErrStorage("check token blacklist", err)
		}
		if revoked {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token is blacklisted")
		}

		c.Locals(helper.LocRawToken, tokenString)
		return hydrate(c, q, claims.UserID)
	}
}

func hydrate(c *fiber.Ctx, db *gorm.DB, userID uuid.UUID) error {
	u, err := loadActiveUser(db, userID)
	switch {
	case err == nil:
	case helper.IsNotFound(err):
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - User not found")
	case errors.Is(err, errUserInactive):
		return fiber.NewError(fiber.StatusForbidden, "Your account is not active")
	default:
		return helper.ErrStorage("load user", err)
	}
	storeUserToLocals(c, u)
	return c.Next()
}
