package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

// extractSchoolID reads :school_id, then ?school_id=, then X-School-ID.
func extractSchoolID(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Params("school_id")); v != "" {
		return v
	}
	if v := strings.TrimSpace(c.Query("school_id")); v != "" {
		return v
	}
	return strings.TrimSpace(c.Get("X-School-ID"))
}

func schoolExists(db *gorm.DB, id uuid.UUID) (bool, error) {
	var n int64
	err := db.Table("schools").Where("school_id = ?", id).Count(&n).Error
	return n > 0, err
}

// scopeGuard resolves the target school and admits the caller when
// allow(role) holds for a member of that school. Platform admins pass
// for every existing school.
func scopeGuard(db *gorm.DB, allowed []string, deniedMsg string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := extractSchoolID(c)
		if raw == "" {
			return helper.JsonError(c, fiber.StatusBadRequest, "school_id is required")
		}
		schoolID, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "school_id is not a valid UUID")
		}

		if !helperAuth.IsPlatformAdmin(c) {
			mine, ok := helperAuth.GetSchoolIDFromToken(c)
			if !ok || mine != schoolID || !lo.Contains(allowed, helperAuth.GetRole(c)) {
				log.Printf("[WARN] school scope denied user=%v school=%s", c.Locals(helperAuth.LocUserID), schoolID)
				return helper.JsonError(c, fiber.StatusForbidden, deniedMsg)
			}
		}

		ok, err := schoolExists(db.WithContext(c.UserContext()), schoolID)
		if err != nil {
			return helper.ToJSONErr(c, helper.ErrStorage("school scope lookup", err))
		}
		if !ok {
			return helper.JsonError(c, fiber.StatusNotFound, "School not found")
		}

		c.Locals(helperAuth.LocScopedSchoolID, schoolID)
		return c.Next()
	}
}

// IsSchoolAdmin guards /api/a/:school_id: owner or admin of that school.
func IsSchoolAdmin(db *gorm.DB) fiber.Handler {
	return scopeGuard(db, constants.SchoolManagers, constants.RoleErrorAdmin("this school"))
}
