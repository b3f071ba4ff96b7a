// file: internals/features/schools/teachers/model/teacher_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================
   Enums
========================= */

type TeacherRole string

const (
	TeacherRoleTeacher     TeacherRole = "teacher"
	TeacherRoleAdmin       TeacherRole = "admin"
	TeacherRoleHeadTeacher TeacherRole = "head_teacher"
)

var TeacherRoles = []TeacherRole{TeacherRoleTeacher, TeacherRoleAdmin, TeacherRoleHeadTeacher}

func (r TeacherRole) Valid() bool {
	for _, v := range TeacherRoles {
		if v == r {
			return true
		}
	}
	return false
}

type EmploymentStatus string

const (
	EmploymentActive    EmploymentStatus = "active"
	EmploymentResigned  EmploymentStatus = "resigned"
	EmploymentSuspended EmploymentStatus = "suspended"
	EmploymentRetired   EmploymentStatus = "retired"
)

var EmploymentStatuses = []EmploymentStatus{EmploymentActive, EmploymentResigned, EmploymentSuspended, EmploymentRetired}

func (s EmploymentStatus) Valid() bool {
	for _, v := range EmploymentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

/* =========================
   Teacher
========================= */

// TeacherModel shares its id with the linked users row when the teacher
// joined by code.
type TeacherModel struct {
	TeacherID       uuid.UUID `gorm:"type:uuid;primaryKey;column:teacher_id" json:"teacher_id"`
	TeacherSchoolID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_teachers_school_staff,priority:1;column:teacher_school_id" json:"teacher_school_id"`

	TeacherCode        string  `gorm:"type:varchar(30);not null;uniqueIndex:uq_teachers_code;column:teacher_code" json:"teacher_code"`
	TeacherStaffNumber *string `gorm:"type:varchar(50);uniqueIndex:uq_teachers_school_staff,priority:2;column:teacher_staff_number" json:"teacher_staff_number,omitempty"`

	TeacherFirstName  string  `gorm:"type:varchar(100);not null;column:teacher_first_name" json:"teacher_first_name"`
	TeacherLastName   string  `gorm:"type:varchar(100);not null;column:teacher_last_name" json:"teacher_last_name"`
	TeacherOtherNames *string `gorm:"type:varchar(100);column:teacher_other_names" json:"teacher_other_names,omitempty"`
	TeacherGender     *string `gorm:"type:varchar(10);column:teacher_gender" json:"teacher_gender,omitempty"`
	TeacherEmail      *string `gorm:"type:varchar(120);index;column:teacher_email" json:"teacher_email,omitempty"`
	TeacherPhone      *string `gorm:"type:varchar(20);column:teacher_phone" json:"teacher_phone,omitempty"`

	TeacherRole             TeacherRole      `gorm:"type:varchar(20);not null;column:teacher_role" json:"teacher_role"`
	TeacherEmploymentStatus EmploymentStatus `gorm:"type:varchar(20);not null;column:teacher_employment_status" json:"teacher_employment_status"`
	TeacherIsActive         bool             `gorm:"not null;column:teacher_is_active" json:"teacher_is_active"`

	TeacherDateJoinedPlatform time.Time `gorm:"column:teacher_date_joined_platform" json:"teacher_date_joined_platform"`
	TeacherCreatedAt          time.Time `gorm:"autoCreateTime;column:teacher_created_at" json:"teacher_created_at"`
	TeacherUpdatedAt          time.Time `gorm:"autoUpdateTime;column:teacher_updated_at" json:"teacher_updated_at"`
}

func (TeacherModel) TableName() string { return "teachers" }

func (t *TeacherModel) BeforeCreate(tx *gorm.DB) error {
	if t.TeacherID == uuid.Nil {
		t.TeacherID = uuid.New()
	}
	if t.TeacherRole == "" {
		t.TeacherRole = TeacherRoleTeacher
	}
	if t.TeacherEmploymentStatus == "" {
		t.TeacherEmploymentStatus = EmploymentActive
	}
	if t.TeacherDateJoinedPlatform.IsZero() {
		t.TeacherDateJoinedPlatform = time.Now().UTC()
	}
	return nil
}

// FullName is "first last [other]".
func (t *TeacherModel) FullName() string {
	parts := []string{t.TeacherFirstName, t.TeacherLastName}
	if t.TeacherOtherNames != nil && strings.TrimSpace(*t.TeacherOtherNames) != "" {
		parts = append(parts, *t.TeacherOtherNames)
	}
	return strings.Join(parts, " ")
}

// SetEmploymentStatus keeps is_active in step: only "active" is active.
func (t *TeacherModel) SetEmploymentStatus(s EmploymentStatus) {
	t.TeacherEmploymentStatus = s
	t.TeacherIsActive = s == EmploymentActive
}
