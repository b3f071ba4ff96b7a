package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/users/user/dto"
	"schoolhub_backend/internals/features/users/user/service"
	helper "schoolhub_backend/internals/helpers"
)

// UserController serves /api/o/users for platform admins.
type UserController struct {
	DB  *gorm.DB
	Svc *service.UserService
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db, Svc: service.NewUserService(db)}
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return uuid.Nil, helper.ErrValidation("Invalid UUID format")
	}
	return id, nil
}

// GET /api/o/users?school_id=&role=&status=&search=
func (uc *UserController) List(c *fiber.Ctx) error {
	f := service.ListUsersFilter{
		Role:   strings.TrimSpace(c.Query("role")),
		Status: strings.TrimSpace(c.Query("status")),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if v := strings.TrimSpace(c.Query("school_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "school_id is not a valid UUID")
		}
		f.SchoolID = &id
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := uc.Svc.List(c.UserContext(), f, p)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", dto.FromModelList(rows), &pg)
}

// GET /api/o/users/:id
func (uc *UserController) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	u, err := uc.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(u))
}

// POST /api/o/users
func (uc *UserController) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ToJSONErr(c, err)
	}
	u, err := uc.Svc.Create(c.UserContext(), req)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonCreated(c, "User created successfully", dto.FromModel(u))
}

// PATCH /api/o/users/:id
func (uc *UserController) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ToJSONErr(c, err)
	}
	u, err := uc.Svc.Update(c.UserContext(), id, req)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonUpdated(c, "User updated successfully", dto.FromModel(u))
}

// DELETE /api/o/users/:id
func (uc *UserController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	if err := uc.Svc.Delete(c.UserContext(), id); err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonDeleted(c, "User deleted successfully", fiber.Map{"id": id})
}

// POST /api/o/users/:id/verify
func (uc *UserController) Verify(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	u, err := uc.Svc.Verify(c.UserContext(), id)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonOK(c, "User verified successfully", dto.FromModel(u))
}
