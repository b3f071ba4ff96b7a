package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
)

type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

var UserStatuses = []UserStatus{UserStatusPending, UserStatusActive, UserStatusSuspended}

func (s UserStatus) Valid() bool {
	for _, v := range UserStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// UserModel is the login identity. SchoolID is set once the user joins or
// creates a school.
type UserModel struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID *uuid.UUID `gorm:"type:uuid;index;column:school_id" json:"school_id,omitempty"`

	Role   string     `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	Status UserStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	FirstName string  `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string  `gorm:"type:varchar(100);not null" json:"last_name"`
	Email     string  `gorm:"type:varchar(120);not null;uniqueIndex:uq_users_email" json:"email"`
	Phone     *string `gorm:"type:varchar(20);uniqueIndex:uq_users_phone" json:"phone,omitempty"`
	Password  string  `gorm:"type:text;not null;column:password_hash" json:"-"`
	GoogleID  *string `gorm:"type:varchar(255);uniqueIndex:uq_users_google_id" json:"google_id,omitempty"`

	RegistrationCodeUsed *string           `gorm:"type:varchar(50)" json:"registration_code_used,omitempty"`
	VerifiedAt           *time.Time        `json:"verified_at,omitempty"`
	ProfileData          datatypes.JSONMap `json:"profile_data,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = constants.RoleUser
	}
	if u.Status == "" {
		u.Status = UserStatusPending
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *UserModel) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *UserModel) IsActive() bool { return u.Status == UserStatusActive }

// Activate marks the account active and stamps verified_at.
func (u *UserModel) Activate(now time.Time) {
	u.Status = UserStatusActive
	t := now.UTC()
	u.VerifiedAt = &t
}

func (u *UserModel) Suspend() { u.Status = UserStatusSuspended }

// HasSchool reports whether the user is already linked to a tenant.
func (u *UserModel) HasSchool() bool { return u.SchoolID != nil && *u.SchoolID != uuid.Nil }
