package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/teachers/dto"
	"schoolhub_backend/internals/features/schools/teachers/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type TeacherController struct {
	DB  *gorm.DB
	Svc *service.TeacherService
}

func NewTeacherController(db *gorm.DB) *TeacherController {
	return &TeacherController{DB: db, Svc: service.NewTeacherService(db)}
}

func scopeAndID(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return uuid.Nil, uuid.Nil, helper.ErrValidation("id is not a valid UUID")
	}
	return schoolID, id, nil
}

// GET /api/a/:school_id/teachers
func (ctl *TeacherController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	f := service.ListTeachersFilter{
		Role:       strings.TrimSpace(c.Query("role")),
		Status:     strings.TrimSpace(c.Query("status")),
		Search:     c.Query("search"),
		ActiveOnly: helper.QueryBool(c, "active_only", true),
	}
	rows, total, err := ctl.Svc.List(c.UserContext(), schoolID, f, p)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", dto.FromModels(rows), &pg)
}

// GET /api/a/:school_id/teachers/:id
func (ctl *TeacherController) GetByID(c *fiber.Ctx) error {
	schoolID, id, err := scopeAndID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	out, err := ctl.Svc.Detail(c.UserContext(), schoolID, id)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// POST /api/a/:school_id/teachers
func (ctl *TeacherController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	var req dto.CreateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ToJSONErr(c, err)
	}
	res, err := ctl.Svc.Create(c.UserContext(), schoolID, req)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonCreated(c, "Teacher created successfully", dto.CreateTeacherResponse{
		TeacherResponse:   dto.FromModel(res.Teacher),
		TemporaryPassword: res.TemporaryPassword,
	})
}

// PATCH /api/a/:school_id/teachers/:id
func (ctl *TeacherController) Update(c *fiber.Ctx) error {
	schoolID, id, err := scopeAndID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	var req dto.UpdateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ToJSONErr(c, err)
	}
	t, err := ctl.Svc.Update(c.UserContext(), schoolID, id, req)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonUpdated(c, "Teacher updated successfully", dto.FromModel(t))
}

// GET /api/a/:school_id/teachers/:id/subjects
func (ctl *TeacherController) Subjects(c *fiber.Ctx) error {
	schoolID, id, err := scopeAndID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	out, err := ctl.Svc.Subjects(c.UserContext(), schoolID, id)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonList(c, "ok", out, nil)
}

// POST /api/a/:school_id/teachers/:id/activate
func (ctl *TeacherController) Activate(c *fiber.Ctx) error {
	schoolID, id, err := scopeAndID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	t, err := ctl.Svc.Activate(c.UserContext(), schoolID, id)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "Teacher activated successfully", dto.FromModel(t))
}
