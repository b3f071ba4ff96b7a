package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	classModel "schoolhub_backend/internals/features/schools/classes/model"
	subjectModel "schoolhub_backend/internals/features/schools/subjects/model"
	"schoolhub_backend/internals/features/schools/teachers/model"
	userModel "schoolhub_backend/internals/features/users/user/model"
)

/* =========================
   Requests
========================= */

type CreateTeacherRequest struct {
	StaffNumber      *string `json:"staff_number"      validate:"omitempty,max=50"`
	FirstName        string  `json:"first_name"        validate:"required,max=100"`
	LastName         string  `json:"last_name"         validate:"required,max=100"`
	OtherNames       *string `json:"other_names"       validate:"omitempty,max=100"`
	Gender           *string `json:"gender"            validate:"omitempty,oneof=male female"`
	Email            *string `json:"email"             validate:"omitempty,email,max=120"`
	Phone            *string `json:"phone"             validate:"omitempty,max=20"`
	Role             string  `json:"role"              validate:"omitempty,oneof=teacher admin head_teacher"`
	EmploymentStatus string  `json:"employment_status" validate:"omitempty,oneof=active resigned suspended retired"`
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func lowerPtr(p *string) *string {
	if p = trimPtr(p); p != nil {
		v := strings.ToLower(*p)
		return &v
	}
	return nil
}

func (r *CreateTeacherRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.StaffNumber = trimPtr(r.StaffNumber)
	r.OtherNames = trimPtr(r.OtherNames)
	r.Gender = lowerPtr(r.Gender)
	r.Email = lowerPtr(r.Email)
	r.Phone = trimPtr(r.Phone)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.EmploymentStatus = strings.ToLower(strings.TrimSpace(r.EmploymentStatus))
}

// ToModel leaves id and code to the service.
func (r *CreateTeacherRequest) ToModel(schoolID uuid.UUID, now time.Time) *model.TeacherModel {
	t := &model.TeacherModel{
		TeacherSchoolID:           schoolID,
		TeacherStaffNumber:        r.StaffNumber,
		TeacherFirstName:          r.FirstName,
		TeacherLastName:           r.LastName,
		TeacherOtherNames:         r.OtherNames,
		TeacherGender:             r.Gender,
		TeacherEmail:              r.Email,
		TeacherPhone:              r.Phone,
		TeacherRole:               model.TeacherRole(lo.Ternary(r.Role == "", string(model.TeacherRoleTeacher), r.Role)),
		TeacherDateJoinedPlatform: now,
	}
	t.SetEmploymentStatus(model.EmploymentStatus(lo.Ternary(r.EmploymentStatus == "", string(model.EmploymentActive), r.EmploymentStatus)))
	return t
}

type UpdateTeacherRequest struct {
	StaffNumber      *string `json:"staff_number"      validate:"omitempty,max=50"`
	FirstName        *string `json:"first_name"        validate:"omitempty,min=1,max=100"`
	LastName         *string `json:"last_name"         validate:"omitempty,min=1,max=100"`
	OtherNames       *string `json:"other_names"       validate:"omitempty,max=100"`
	Gender           *string `json:"gender"            validate:"omitempty,oneof=male female"`
	Email            *string `json:"email"             validate:"omitempty,email,max=120"`
	Phone            *string `json:"phone"             validate:"omitempty,max=20"`
	Role             *string `json:"role"              validate:"omitempty,oneof=teacher admin head_teacher"`
	EmploymentStatus *string `json:"employment_status" validate:"omitempty,oneof=active resigned suspended retired"`
}

func (r *UpdateTeacherRequest) Normalize() {
	r.FirstName = trimPtr(r.FirstName)
	r.LastName = trimPtr(r.LastName)
	r.Gender = lowerPtr(r.Gender)
	r.Email = lowerPtr(r.Email)
	r.Role = lowerPtr(r.Role)
	r.EmploymentStatus = lowerPtr(r.EmploymentStatus)
}

// ApplyToModel copies the present fields. Staff number, other names and
// phone are cleared by sending an empty string.
func (r *UpdateTeacherRequest) ApplyToModel(t *model.TeacherModel) {
	if r.FirstName != nil {
		t.TeacherFirstName = *r.FirstName
	}
	if r.LastName != nil {
		t.TeacherLastName = *r.LastName
	}
	if r.StaffNumber != nil {
		t.TeacherStaffNumber = trimPtr(r.StaffNumber)
	}
	if r.OtherNames != nil {
		t.TeacherOtherNames = trimPtr(r.OtherNames)
	}
	if r.Phone != nil {
		t.TeacherPhone = trimPtr(r.Phone)
	}
	if r.Gender != nil {
		t.TeacherGender = r.Gender
	}
	if r.Email != nil {
		t.TeacherEmail = r.Email
	}
	if r.Role != nil {
		t.TeacherRole = model.TeacherRole(*r.Role)
	}
	if r.EmploymentStatus != nil {
		t.SetEmploymentStatus(model.EmploymentStatus(*r.EmploymentStatus))
	}
}

/* =========================
   Responses
========================= */

type TeacherResponse struct {
	ID                 uuid.UUID              `json:"id"`
	SchoolID           uuid.UUID              `json:"school_id"`
	TeacherCode        string                 `json:"teacher_code"`
	StaffNumber        *string                `json:"staff_number"`
	FirstName          string                 `json:"first_name"`
	LastName           string                 `json:"last_name"`
	OtherNames         *string                `json:"other_names"`
	FullName           string                 `json:"full_name"`
	Gender             *string                `json:"gender"`
	Email              *string                `json:"email"`
	Phone              *string                `json:"phone"`
	Role               model.TeacherRole      `json:"role"`
	EmploymentStatus   model.EmploymentStatus `json:"employment_status"`
	IsActive           bool                   `json:"is_active"`
	DateJoinedPlatform time.Time              `json:"date_joined_platform"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

func FromModel(t *model.TeacherModel) TeacherResponse {
	return TeacherResponse{
		ID:                 t.TeacherID,
		SchoolID:           t.TeacherSchoolID,
		TeacherCode:        t.TeacherCode,
		StaffNumber:        t.TeacherStaffNumber,
		FirstName:          t.TeacherFirstName,
		LastName:           t.TeacherLastName,
		OtherNames:         t.TeacherOtherNames,
		FullName:           t.FullName(),
		Gender:             t.TeacherGender,
		Email:              t.TeacherEmail,
		Phone:              t.TeacherPhone,
		Role:               t.TeacherRole,
		EmploymentStatus:   t.TeacherEmploymentStatus,
		IsActive:           t.TeacherIsActive,
		DateJoinedPlatform: t.TeacherDateJoinedPlatform,
		CreatedAt:          t.TeacherCreatedAt,
		UpdatedAt:          t.TeacherUpdatedAt,
	}
}

func FromModels(rows []model.TeacherModel) []TeacherResponse {
	return lo.Map(rows, func(t model.TeacherModel, _ int) TeacherResponse { return FromModel(&t) })
}

type UserAccount struct {
	Email      string               `json:"email"`
	Status     userModel.UserStatus `json:"status"`
	VerifiedAt *time.Time           `json:"verified_at"`
}

type ClassBrief struct {
	ID              uuid.UUID `json:"id"`
	DisplayName     string    `json:"display_name"`
	Level           string    `json:"level"`
	Stream          *string   `json:"stream"`
	AcademicSession string    `json:"academic_session"`
	IsActive        bool      `json:"is_active"`
}

func ToClassBrief(c *classModel.ClassModel) ClassBrief {
	return ClassBrief{
		ID:              c.ClassID,
		DisplayName:     c.ClassDisplayName,
		Level:           c.ClassLevel,
		Stream:          c.ClassStream,
		AcademicSession: c.ClassAcademicSession,
		IsActive:        c.ClassIsActive,
	}
}

type SubjectBrief struct {
	ID       uuid.UUID   `json:"id"`
	Name     string      `json:"name"`
	Code     *string     `json:"code"`
	ClassID  uuid.UUID   `json:"class_id"`
	IsActive bool        `json:"is_active"`
	Class    *ClassBrief `json:"class_details,omitempty"`
}

func ToSubjectBrief(s *subjectModel.SubjectModel, class *classModel.ClassModel) SubjectBrief {
	out := SubjectBrief{
		ID:       s.SubjectID,
		Name:     s.SubjectName,
		Code:     s.SubjectCode,
		ClassID:  s.SubjectClassID,
		IsActive: s.SubjectIsActive,
	}
	if class != nil {
		cb := ToClassBrief(class)
		out.Class = &cb
	}
	return out
}

// TeacherDetailResponse is GET /teachers/:id.
type TeacherDetailResponse struct {
	TeacherResponse
	UserAccount    *UserAccount   `json:"user_account,omitempty"`
	FormTeacherOf  []ClassBrief   `json:"form_teacher_of"`
	SubjectsTaught []SubjectBrief `json:"subjects_taught"`
}

// CreateTeacherResponse carries the one-time password of the linked
// account when an email was supplied.
type CreateTeacherResponse struct {
	TeacherResponse
	TemporaryPassword *string `json:"temporary_password,omitempty"`
}
