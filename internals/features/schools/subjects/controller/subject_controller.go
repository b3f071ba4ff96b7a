package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/subjects/dto"
	"schoolhub_backend/internals/features/schools/subjects/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type SubjectController struct {
	DB  *gorm.DB
	Svc *service.SubjectService
}

func NewSubjectController(db *gorm.DB) *SubjectController {
	return &SubjectController{DB: db, Svc: service.NewSubjectService(db)}
}

func parseParamID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, helper.ErrValidation(name + " is not a valid UUID")
	}
	return id, nil
}

func optionalQueryID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, helper.ErrValidation(name + " is not a valid UUID")
	}
	return &id, nil
}

// GET /api/a/:school_id/subjects
func (ctl *SubjectController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	f := service.ListSubjectsFilter{
		Search:     c.Query("search"),
		ActiveOnly: helper.QueryBool(c, "active_only", true),
	}
	if f.ClassID, err = optionalQueryID(c, "class_id"); err != nil {
		return helper.ToJSONErr(c, err)
	}
	if f.TeacherID, err = optionalQueryID(c, "teacher_id"); err != nil {
		return helper.ToJSONErr(c, err)
	}
	p := helper.ResolvePaging(c, 50, 200)
	rows, total, err := ctl.Svc.List(c.UserContext(), schoolID, f, p)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// GET /api/a/:school_id/subjects/class/:class_id/with-teachers
func (ctl *SubjectController) ForClassWithTeachers(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	classID, err := parseParamID(c, "class_id")
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	rows, err := ctl.Svc.ForClassWithTeachers(c.UserContext(), schoolID, classID)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonList(c, "ok", rows, nil)
}

// POST /api/a/:school_id/subjects
func (ctl *SubjectController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	var req dto.CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ToJSONErr(c, err)
	}
	out, err := ctl.Svc.Create(c.UserContext(), schoolID, req)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonCreated(c, "Subject created successfully", out)
}

// GET /api/a/:school_id/subjects/:id
func (ctl *SubjectController) GetByID(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	id, err := parseParamID(c, "id")
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	out, err := ctl.Svc.Get(c.UserContext(), schoolID, id)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// PATCH /api/a/:school_id/subjects/:id
func (ctl *SubjectController) Update(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	id, err := parseParamID(c, "id")
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	var req dto.UpdateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ToJSONErr(c, err)
	}
	out, err := ctl.Svc.Update(c.UserContext(), schoolID, id, req)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonUpdated(c, "Subject updated successfully", out)
}

// GET /api/a/:school_id/subjects/:id/ca-structure
func (ctl *SubjectController) CAStructure(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	id, err := parseParamID(c, "id")
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	out, err := ctl.Svc.CAStructure(c.UserContext(), schoolID, id)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}
