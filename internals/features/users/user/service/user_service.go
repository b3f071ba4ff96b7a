package service

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	schoolModel "schoolhub_backend/internals/features/schools/schools/model"
	authHelper "schoolhub_backend/internals/features/users/auth/helper"
	"schoolhub_backend/internals/features/users/auth/repository"
	"schoolhub_backend/internals/features/users/user/dto"
	"schoolhub_backend/internals/features/users/user/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

// UserService backs the platform-admin user management endpoints.
type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

func findUser(tx *gorm.DB, id uuid.UUID) (*model.UserModel, error) {
	u, err := repository.FindUserByID(tx, id)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, helper.ErrNotFound("User not found")
		}
		return nil, helper.ErrStorage("find user", err)
	}
	return u, nil
}

func writeErr(op string, err error) error {
	if helper.IsUniqueViolation(err) {
		return helper.ErrConflict("Email or phone already in use")
	}
	return helper.ErrStorage(op, err)
}

func ensureSchool(tx *gorm.DB, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := tx.Model(&schoolModel.SchoolModel{}).Where("school_id = ?", *id).Count(&n).Error; err != nil {
		return helper.ErrStorage("check school", err)
	}
	if n == 0 {
		return helper.ErrNotFound("School not found")
	}
	return nil
}

type ListUsersFilter struct {
	SchoolID *uuid.UUID
	Role     string
	Status   string
	Search   string
}

func (s *UserService) List(ctx context.Context, f ListUsersFilter, p helper.Paging) ([]model.UserModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.UserModel{})
	if f.SchoolID != nil {
		q = q.Where("school_id = ?", *f.SchoolID)
	}
	if f.Role != "" {
		q = q.Where("role = ?", strings.ToLower(f.Role))
	}
	if f.Status != "" {
		q = q.Where("status = ?", strings.ToLower(f.Status))
	}
	if strings.TrimSpace(f.Search) != "" {
		like := helper.LikePattern(f.Search)
		q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, helper.ErrStorage("count users", err)
	}
	var rows []model.UserModel
	if err := q.Order("created_at DESC").Offset(p.Offset).Limit(p.Limit).Find(&rows).Error; err != nil {
		return nil, 0, helper.ErrStorage("list users", err)
	}
	return rows, total, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*model.UserModel, error) {
	return findUser(s.DB.WithContext(ctx), id)
}

func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest) (*model.UserModel, error) {
	hash, err := authHelper.HashPassword(req.Password)
	if err != nil {
		return nil, helper.ErrValidation(err.Error())
	}
	u := req.ToModel(dbtime.Now())
	u.Password = hash

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := repository.EmailTaken(tx, u.Email)
		if err != nil {
			return helper.ErrStorage("check email", err)
		}
		if taken {
			return helper.ErrConflict("Email already registered")
		}
		if err := ensureSchool(tx, u.SchoolID); err != nil {
			return err
		}
		if err := repository.CreateUser(tx, u); err != nil {
			return writeErr("create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] user created id=%s role=%s status=%s", u.ID, u.Role, u.Status)
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*model.UserModel, error) {
	var u *model.UserModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if u, err = findUser(tx, id); err != nil {
			return err
		}
		if req.Email != nil && *req.Email != "" && *req.Email != u.Email {
			taken, err := repository.EmailTaken(tx, *req.Email)
			if err != nil {
				return helper.ErrStorage("check email", err)
			}
			if taken {
				return helper.ErrConflict("Email already registered")
			}
			u.Email = *req.Email
		}
		if req.Password != nil {
			hash, err := authHelper.HashPassword(*req.Password)
			if err != nil {
				return helper.ErrValidation(err.Error())
			}
			u.Password = hash
		}
		req.ApplyToModel(u, dbtime.Now())
		if err := tx.Save(u).Error; err != nil {
			return writeErr("update user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes the login only; teacher and student records stay with
// their school.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.UserModel{})
	if res.Error != nil {
		return helper.ErrStorage("delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return helper.ErrNotFound("User not found")
	}
	log.Printf("[INFO] user deleted id=%s", id)
	return nil
}

// Verify activates a pending or suspended account.
func (s *UserService) Verify(ctx context.Context, id uuid.UUID) (*model.UserModel, error) {
	var u *model.UserModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if u, err = findUser(tx, id); err != nil {
			return err
		}
		if u.IsActive() {
			return helper.ErrValidation("User is already verified")
		}
		u.Activate(dbtime.Now())
		if err := tx.Model(u).Select("status", "verified_at").Updates(u).Error; err != nil {
			return helper.ErrStorage("verify user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}
