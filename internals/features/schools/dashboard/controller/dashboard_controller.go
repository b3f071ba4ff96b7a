package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/dashboard/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type DashboardController struct {
	DB  *gorm.DB
	Svc *service.DashboardService
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db, Svc: service.NewDashboardService(db)}
}

// GET /api/a/:school_id/dashboard/overview
func (ctl *DashboardController) Overview(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	out, err := ctl.Svc.Overview(c.UserContext(), schoolID)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// GET /api/u/dashboard/teacher/:teacher_id
//
// Members only see teachers of their own school; platform admins see all.
func (ctl *DashboardController) Teacher(c *fiber.Ctx) error {
	teacherID, err := uuid.Parse(strings.TrimSpace(c.Params("teacher_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "teacher_id is not a valid UUID")
	}
	scope := uuid.Nil
	if !helperAuth.IsPlatformAdmin(c) {
		id, ok := helperAuth.GetSchoolIDFromToken(c)
		if !ok {
			return helper.JsonError(c, fiber.StatusForbidden, "You are not a member of any school")
		}
		scope = id
	}
	out, err := ctl.Svc.Teacher(c.UserContext(), scope, teacherID)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}
