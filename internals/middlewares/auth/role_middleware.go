package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

// RoleMiddlewareWithCustomError allows the request when the caller's role
// is one of allowedRoles.
func RoleMiddlewareWithCustomError(allowedRoles []string, customForbiddenMessage string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := helperAuth.GetRole(c)
		if role == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized: missing role information")
		}
		if lo.Contains(allowedRoles, role) {
			return c.Next()
		}
		if customForbiddenMessage == "" {
			customForbiddenMessage = "Forbidden: you are not authorized to access this resource"
		}
		return helper.JsonError(c, fiber.StatusForbidden, customForbiddenMessage)
	}
}

// OnlyRolesSlice is OnlyRoles for the grouped slices in constants.
func OnlyRolesSlice(message string, allowedRoles []string) fiber.Handler {
	return RoleMiddlewareWithCustomError(allowedRoles, message)
}

// OnlyPlatformAdmins admits role admin accounts not tied to a school.
func OnlyPlatformAdmins(message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if helperAuth.IsPlatformAdmin(c) {
			return c.Next()
		}
		return helper.JsonError(c, fiber.StatusForbidden, message)
	}
}
