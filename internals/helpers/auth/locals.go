package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"schoolhub_backend/internals/constants"
)

/* ============================================
   Locals keys (set by the auth middleware)
   ============================================ */

const (
	LocUserID   = "user_id"   // string UUID
	LocRole     = "userRole"  // string, users.role
	LocEmail    = "email"     // string
	LocSchoolID = "school_id" // string UUID, school the caller belongs to (may be stale in JWT)

	// Set by the school scope guard after checking the database.
	LocScopedSchoolID = "scoped_school_id" // uuid.UUID
)

func localString(c *fiber.Ctx, key string) string {
	switch v := c.Locals(key).(type) {
	case string:
		return strings.TrimSpace(v)
	case uuid.UUID:
		if v == uuid.Nil {
			return ""
		}
		return v.String()
	default:
		return ""
	}
}

// GetUserIDFromToken returns 401 when the caller is not logged in.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	s := localString(c, LocUserID)
	if s == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user id in token")
	}
	return id, nil
}

func GetRole(c *fiber.Ctx) string {
	return strings.ToLower(localString(c, LocRole))
}

// GetSchoolIDFromToken returns the school_id claim, if any.
func GetSchoolIDFromToken(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(localString(c, LocSchoolID))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetScopedSchoolID returns the school verified by the scope guard.
func GetScopedSchoolID(c *fiber.Ctx) (uuid.UUID, error) {
	if id, ok := c.Locals(LocScopedSchoolID).(uuid.UUID); ok && id != uuid.Nil {
		return id, nil
	}
	return uuid.Nil, fiber.NewError(fiber.StatusForbidden, "School scope not resolved")
}

// IsPlatformAdmin: role admin without a school.
func IsPlatformAdmin(c *fiber.Ctx) bool {
	if GetRole(c) != constants.RoleAdmin {
		return false
	}
	_, hasSchool := GetSchoolIDFromToken(c)
	return !hasSchool
}
