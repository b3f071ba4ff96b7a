package controller

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/students/dto"
	"schoolhub_backend/internals/features/schools/students/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type StudentController struct {
	DB  *gorm.DB
	Svc *service.StudentService
}

func NewStudentController(db *gorm.DB) *StudentController {
	return &StudentController{DB: db, Svc: service.NewStudentService(db)}
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

// GET /api/a/:school_id/students
func (ctl *StudentController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	f := service.ListStudentsFilter{
		Gender:     strings.TrimSpace(c.Query("gender")),
		Search:     strings.TrimSpace(c.Query("search")),
		ActiveOnly: helper.QueryBool(c, "active_only", true),
	}
	if v := strings.TrimSpace(c.Query("class_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "class_id is not a valid UUID")
		}
		f.ClassID = &id
	}

	p := helper.ResolvePaging(c, 30, 100)
	rows, total, err := ctl.Svc.List(c.UserContext(), schoolID, f, p)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// GET /api/a/:school_id/students/:id
func (ctl *StudentController) GetByID(c *fiber.Ctx) error {
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

// POST /api/a/:school_id/students
func (ctl *StudentController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	var req dto.CreateStudentRequest
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
	return helper.JsonCreated(c, "Student created successfully", dto.FromModel(m))
}

// PATCH /api/a/:school_id/students/:id
func (ctl *StudentController) Update(c *fiber.Ctx) error {
	schoolID, id, err := scopeAndID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	var req dto.UpdateStudentRequest
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
	return helper.JsonUpdated(c, "Student updated successfully", dto.FromModel(m))
}

// POST /api/a/:school_id/students/:id/transfer
func (ctl *StudentController) Transfer(c *fiber.Ctx) error {
	schoolID, id, err := scopeAndID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	var req dto.TransferStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.NewClassID = strings.TrimSpace(req.NewClassID)
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ToJSONErr(c, err)
	}

	var by *uuid.UUID
	if uid, err := helperAuth.GetUserIDFromToken(c); err == nil {
		by = &uid
	}
	out, err := ctl.Svc.Transfer(c.UserContext(), schoolID, id, uuid.MustParse(req.NewClassID), req.Note, by)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "Student transferred successfully", out)
}

// GET /api/a/:school_id/students/:id/transfers
func (ctl *StudentController) Transfers(c *fiber.Ctx) error {
	schoolID, id, err := scopeAndID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	out, err := ctl.Svc.Transfers(c.UserContext(), schoolID, id)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonList(c, "ok", out, nil)
}

// POST /api/a/:school_id/students/import
//
// Body is a JSON array of rows. Rows that fail are reported back with
// their 1-based index; the rest are created.
func (ctl *StudentController) Import(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	var rows []dto.ImportStudentRow
	if err := c.BodyParser(&rows); err != nil || len(rows) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid data format. Expected a non-empty array of students.")
	}
	out, err := ctl.Svc.Import(c.UserContext(), schoolID, rows)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	msg := "Imported " + strconv.Itoa(len(out.Successful)) + " of " + strconv.Itoa(len(rows)) + " students"
	if len(out.Successful) == 0 {
		return helper.JsonOK(c, msg, out)
	}
	return helper.JsonCreated(c, msg, out)
}
