package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/utils/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type UtilsController struct {
	DB  *gorm.DB
	Svc *service.UtilsService
}

func NewUtilsController(db *gorm.DB) *UtilsController {
	return &UtilsController{DB: db, Svc: service.NewUtilsService(db)}
}

// GET /api/public/utils/school-slug-available?slug=
func (ctl *UtilsController) SlugAvailable(c *fiber.Ctx) error {
	out, err := ctl.Svc.SlugAvailability(c.UserContext(), c.Query("slug"))
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// GET /api/public/utils/states
func (ctl *UtilsController) States(c *fiber.Ctx) error {
	return helper.JsonOK(c, "ok", service.States())
}

// GET /api/public/utils/school-types
func (ctl *UtilsController) SchoolTypes(c *fiber.Ctx) error {
	return helper.JsonOK(c, "ok", service.SchoolTypes())
}

// GET /api/u/utils/search?q=&school_id=
//
// Teachers and students are only searched inside the caller's own school.
// Platform admins may search everywhere or narrow with school_id.
func (ctl *UtilsController) Search(c *fiber.Ctx) error {
	var scope service.SearchScope
	if v := strings.TrimSpace(c.Query("school_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "school_id is not a valid UUID")
		}
		scope.SchoolID = &id
	}

	if helperAuth.IsPlatformAdmin(c) {
		scope.MembersVisible = true
	} else if own, ok := helperAuth.GetSchoolIDFromToken(c); ok {
		if scope.SchoolID == nil || *scope.SchoolID == own {
			scope.SchoolID = &own
			scope.MembersVisible = true
		}
	}

	out, err := ctl.Svc.Search(c.UserContext(), c.Query("q"), scope)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}
