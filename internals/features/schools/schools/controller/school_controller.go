// file: internals/features/schools/schools/controller/school_controller.go
package controller

import (
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/schools/dto"
	"schoolhub_backend/internals/features/schools/schools/service"
	userDTO "schoolhub_backend/internals/features/users/user/dto"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
	"schoolhub_backend/internals/helpers/dbtime"
	helperOSS "schoolhub_backend/internals/helpers/oss"
)

type SchoolController struct {
	DB  *gorm.DB
	Svc *service.SchoolService
	// Store resolves the object store per request so a missing OSS config
	// only disables logo upload.
	Store func() (helperOSS.ObjectStore, error)
}

func NewSchoolController(db *gorm.DB) *SchoolController {
	return &SchoolController{DB: db, Svc: service.NewSchoolService(db), Store: helperOSS.Default}
}

/* =========================
   Public
========================= */

// GET /api/public/schools
func (ctl *SchoolController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	f := service.ListSchoolsFilter{
		Type:       strings.TrimSpace(c.Query("type")),
		State:      strings.TrimSpace(c.Query("state")),
		City:       strings.TrimSpace(c.Query("city")),
		Search:     c.Query("search"),
		ActiveOnly: helper.QueryBool(c, "active_only", true),
	}
	rows, total, err := ctl.Svc.List(c.UserContext(), f, p)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", dto.FromSchoolModels(rows, dbtime.Now()), &pg)
}

// GET /api/public/schools/:school_id
func (ctl *SchoolController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("school_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "school_id is not a valid UUID")
	}
	m, err := ctl.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromSchoolModel(m, dbtime.Now()))
}

// GET /api/public/schools/slug/:slug
func (ctl *SchoolController) GetBySlug(c *fiber.Ctx) error {
	m, err := ctl.Svc.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromSchoolModel(m, dbtime.Now()))
}

/* =========================
   Authenticated user
========================= */

// POST /api/u/schools
func (ctl *SchoolController) Create(c *fiber.Ctx) error {
	var req dto.CreateSchoolRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Trim()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ToJSONErr(c, err)
	}
	m, err := ctl.Svc.Create(c.UserContext(), req)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonCreated(c, "School created successfully", dto.FromSchoolModel(m, dbtime.Now()))
}

// resolveTargetUser: a body user_id is honoured only for the caller
// themselves or a platform admin.
func resolveTargetUser(c *fiber.Ctx, bodyUserID *uuid.UUID) (uuid.UUID, error) {
	callerID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return uuid.Nil, err
	}
	if bodyUserID == nil || *bodyUserID == uuid.Nil || *bodyUserID == callerID {
		return callerID, nil
	}
	if helperAuth.IsPlatformAdmin(c) {
		return *bodyUserID, nil
	}
	return uuid.Nil, helper.ErrForbidden("You can only join a school for your own account")
}

// POST /api/u/schools/join
func (ctl *SchoolController) Join(c *fiber.Ctx) error {
	var req dto.JoinSchoolRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.RoleType = strings.ToLower(strings.TrimSpace(req.RoleType))
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ToJSONErr(c, err)
	}
	userID, err := resolveTargetUser(c, req.UserID)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}

	res, err := ctl.Svc.Join(c.UserContext(), userID, req.RegistrationCode, req.RoleType)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "Successfully joined "+res.School.SchoolName+" as "+req.RoleType, fiber.Map{
		"school": dto.FromSchoolModel(res.School, dbtime.Now()),
		"user":   userDTO.FromModel(res.User),
	})
}

// POST /api/u/schools/create-and-join
func (ctl *SchoolController) CreateAndJoin(c *fiber.Ctx) error {
	var req dto.CreateAndJoinRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.SchoolName = strings.TrimSpace(req.SchoolName)
	req.SchoolType = strings.ToLower(strings.TrimSpace(req.SchoolType))
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ToJSONErr(c, err)
	}
	userID, err := resolveTargetUser(c, req.UserID)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}

	res, err := ctl.Svc.CreateAndJoin(c.UserContext(), userID, req)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonCreated(c, "School created successfully", fiber.Map{
		"school": dto.FromSchoolModel(res.School, dbtime.Now()),
		"user":   userDTO.FromModel(res.User),
	})
}

/* =========================
   School admin (scoped)
========================= */

// GET /api/a/:school_id/school
func (ctl *SchoolController) GetMine(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	m, err := ctl.Svc.Get(c.UserContext(), schoolID)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromSchoolModel(m, dbtime.Now()))
}

// PATCH /api/a/:school_id/school
func (ctl *SchoolController) Update(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	var req dto.UpdateSchoolRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ToJSONErr(c, err)
	}
	m, err := ctl.Svc.Update(c.UserContext(), schoolID, req)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonUpdated(c, "School updated successfully", dto.FromSchoolModel(m, dbtime.Now()))
}

// GET /api/a/:school_id/school/stats
func (ctl *SchoolController) Stats(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	st, err := ctl.Svc.Stats(c.UserContext(), schoolID)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "ok", st)
}

// POST /api/a/:school_id/school/regenerate-codes
func (ctl *SchoolController) RegenerateCodes(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	out, err := ctl.Svc.RegenerateCodes(c.UserContext(), schoolID)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "Registration codes regenerated", out)
}

// POST /api/a/:school_id/school/logo (multipart, field "logo" or "file")
func (ctl *SchoolController) UploadLogo(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	fh, err := c.FormFile("logo")
	if err != nil {
		if fh, err = c.FormFile("file"); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "logo file is required")
		}
	}
	if fh.Size > helperOSS.MaxUploadSize {
		return helper.JsonError(c, fiber.StatusRequestEntityTooLarge, "Logo must be 5 MB or smaller")
	}
	f, err := fh.Open()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Unreadable upload")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, helperOSS.MaxUploadSize+1))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Unreadable upload")
	}

	store, err := ctl.Store()
	if err != nil && !errors.Is(err, helperOSS.ErrNotConfigured) {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "File storage is unavailable")
	}
	m, err := ctl.Svc.UploadLogo(c.UserContext(), store, schoolID, data, fh.Filename)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonUpdated(c, "Logo uploaded successfully", dto.FromSchoolModel(m, dbtime.Now()))
}
