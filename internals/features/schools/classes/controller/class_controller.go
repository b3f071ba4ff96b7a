package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/classes/dto"
	"schoolhub_backend/internals/features/schools/classes/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type ClassController struct {
	DB  *gorm.DB
	Svc *service.ClassService
}

func NewClassController(db *gorm.DB) *ClassController {
	return &ClassController{DB: db, Svc: service.NewClassService(db)}
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

// GET /api/a/:school_id/classes
func (ctl *ClassController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	f := service.ListClassesFilter{
		Level:           strings.TrimSpace(c.Query("level")),
		Stream:          strings.TrimSpace(c.Query("stream")),
		AcademicSession: strings.TrimSpace(c.Query("academic_session")),
		ActiveOnly:      helper.QueryBool(c, "active_only", true),
	}
	rows, total, err := ctl.Svc.List(c.UserContext(), schoolID, f, p)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// GET /api/a/:school_id/classes/:id
func (ctl *ClassController) GetByID(c *fiber.Ctx) error {
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

// POST /api/a/:school_id/classes
func (ctl *ClassController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	var req dto.CreateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ToJSONErr(c, err)
	}
	m, err := ctl.Svc.Create(c.UserContext(), schoolID, req)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonCreated(c, "Class created successfully", dto.FromModel(m))
}

// PATCH /api/a/:school_id/classes/:id
func (ctl *ClassController) Update(c *fiber.Ctx) error {
	schoolID, id, err := scopeAndID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	var req dto.UpdateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ToJSONErr(c, err)
	}
	m, err := ctl.Svc.Update(c.UserContext(), schoolID, id, req)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonUpdated(c, "Class updated successfully", dto.FromModel(m))
}

// GET /api/a/:school_id/classes/:id/students
func (ctl *ClassController) Students(c *fiber.Ctx) error {
	schoolID, id, err := scopeAndID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	out, err := ctl.Svc.Students(c.UserContext(), schoolID, id)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonList(c, "ok", out, nil)
}

// GET /api/a/:school_id/classes/:id/subjects
func (ctl *ClassController) Subjects(c *fiber.Ctx) error {
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

// POST /api/a/:school_id/classes/:id/assign-form-teacher
func (ctl *ClassController) AssignFormTeacher(c *fiber.Ctx) error {
	schoolID, id, err := scopeAndID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	var req dto.AssignFormTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.TeacherID = strings.TrimSpace(req.TeacherID)
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ToJSONErr(c, err)
	}
	m, t, err := ctl.Svc.AssignFormTeacher(c.UserContext(), schoolID, id, uuid.MustParse(req.TeacherID))
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "Form teacher assigned successfully", dto.AssignFormTeacherResponse{
		Class:   dto.FromModel(m),
		Teacher: dto.ToTeacherBrief(t),
	})
}

// GET /api/public/utils/generate-class-display-name?level=&stream=
func GenerateDisplayName(c *fiber.Ctx) error {
	var stream *string
	if v := c.Query("stream"); v != "" {
		stream = &v
	}
	out, err := service.DisplayName(c.Query("level"), stream)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}
