package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	uModel "schoolhub_backend/internals/features/users/user/model"
)

/* =======================================================
   REQUEST DTOs
   ======================================================= */

// CreateUserRequest is used by platform admins; self sign-up goes through auth.
type CreateUserRequest struct {
	SchoolID  *uuid.UUID `json:"school_id"`
	Email     string     `json:"email"      validate:"required,email,max=120"`
	Password  string     `json:"password"   validate:"required,min=6"`
	FirstName string     `json:"first_name" validate:"max=100"`
	LastName  string     `json:"last_name"  validate:"max=100"`
	Phone     *string    `json:"phone"      validate:"omitempty,max=20"`
	Role      string     `json:"role"       validate:"omitempty,oneof=user owner admin teacher student parent"`
	Status    string     `json:"status"     validate:"omitempty,oneof=pending active suspended"`
}

func (r *CreateUserRequest) Normalize() {
	r.Email = uModel.NormalizeEmail(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if r.Phone != nil {
		v := strings.TrimSpace(*r.Phone)
		if v == "" {
			r.Phone = nil
		} else {
			r.Phone = &v
		}
	}
}

// ToModel maps the request; the password is hashed by the caller.
func (r *CreateUserRequest) ToModel(now time.Time) *uModel.UserModel {
	m := &uModel.UserModel{
		SchoolID:  r.SchoolID,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Role:      lo.Ternary(r.Role == "", "teacher", r.Role),
		Status:    uModel.UserStatusPending,
	}
	if uModel.UserStatus(r.Status) == uModel.UserStatusActive {
		m.Activate(now)
	} else if r.Status != "" {
		m.Status = uModel.UserStatus(r.Status)
	}
	return m
}

// UpdateUserRequest is a partial update.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=100"`
	Email     *string `json:"email"      validate:"omitempty,email,max=120"`
	Phone     *string `json:"phone"      validate:"omitempty,max=20"`
	Password  *string `json:"password"   validate:"omitempty,min=6"`
	Role      *string `json:"role"       validate:"omitempty,oneof=user owner admin teacher student parent"`
	Status    *string `json:"status"     validate:"omitempty,oneof=pending active suspended"`
}

func (r *UpdateUserRequest) Normalize() {
	trim := func(p **string) {
		if *p != nil {
			v := strings.TrimSpace(**p)
			*p = &v
		}
	}
	trim(&r.FirstName)
	trim(&r.LastName)
	trim(&r.Phone)
	trim(&r.Role)
	trim(&r.Status)
	if r.Email != nil {
		v := uModel.NormalizeEmail(*r.Email)
		r.Email = &v
	}
}

// ApplyToModel sets plain fields. Email uniqueness and password hashing
// are checked by the controller.
func (r *UpdateUserRequest) ApplyToModel(m *uModel.UserModel, now time.Time) {
	if r.FirstName != nil {
		m.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		m.LastName = *r.LastName
	}
	if r.Phone != nil {
		m.Phone = lo.Ternary[*string](*r.Phone == "", nil, r.Phone)
	}
	if r.Role != nil && *r.Role != "" {
		m.Role = *r.Role
	}
	if r.Status != nil {
		switch uModel.UserStatus(*r.Status) {
		case uModel.UserStatusActive:
			if m.VerifiedAt == nil {
				m.Activate(now)
			} else {
				m.Status = uModel.UserStatusActive
			}
		case uModel.UserStatusSuspended:
			m.Suspend()
		case uModel.UserStatusPending:
			m.Status = uModel.UserStatusPending
		}
	}
}

/* =======================================================
   RESPONSE DTOs
   ======================================================= */

type UserResponse struct {
	ID                   uuid.UUID  `json:"id"`
	SchoolID             *uuid.UUID `json:"school_id"`
	Role                 string     `json:"role"`
	FirstName            string     `json:"first_name"`
	LastName             string     `json:"last_name"`
	FullName             string     `json:"full_name"`
	Email                string     `json:"email"`
	Phone                *string    `json:"phone"`
	Status               string     `json:"status"`
	RegistrationCodeUsed *string    `json:"registration_code_used,omitempty"`
	VerifiedAt           *time.Time `json:"verified_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func FromModel(m *uModel.UserModel) *UserResponse {
	if m == nil {
		return nil
	}
	return &UserResponse{
		ID:                   m.ID,
		SchoolID:             m.SchoolID,
		Role:                 m.Role,
		FirstName:            m.FirstName,
		LastName:             m.LastName,
		FullName:             m.FullName(),
		Email:                m.Email,
		Phone:                m.Phone,
		Status:               string(m.Status),
		RegistrationCodeUsed: m.RegistrationCodeUsed,
		VerifiedAt:           m.VerifiedAt,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func FromModelList(list []uModel.UserModel) []UserResponse {
	return lo.Map(list, func(u uModel.UserModel, _ int) UserResponse { return *FromModel(&u) })
}
