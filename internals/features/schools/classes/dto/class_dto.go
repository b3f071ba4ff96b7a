package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"schoolhub_backend/internals/features/schools/classes/model"
	studentModel "schoolhub_backend/internals/features/schools/students/model"
	subjectModel "schoolhub_backend/internals/features/schools/subjects/model"
	teacherModel "schoolhub_backend/internals/features/schools/teachers/model"
)

/* =========================
   Requests
========================= */

type CreateClassRequest struct {
	Level           string     `json:"level"            validate:"required,max=50"`
	Stream          *string    `json:"stream"           validate:"omitempty,max=50"`
	AcademicSession string     `json:"academic_session" validate:"required,max=20"`
	FormTeacherID   *uuid.UUID `json:"form_teacher_id"`
	IsActive        *bool      `json:"is_active"`
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

func (r *CreateClassRequest) Normalize() {
	r.Level = strings.TrimSpace(r.Level)
	r.Stream = trimPtr(r.Stream)
	r.AcademicSession = strings.TrimSpace(r.AcademicSession)
	if r.FormTeacherID != nil && *r.FormTeacherID == uuid.Nil {
		r.FormTeacherID = nil
	}
}

func (r *CreateClassRequest) ToModel(schoolID uuid.UUID) *model.ClassModel {
	m := &model.ClassModel{
		ClassSchoolID:        schoolID,
		ClassAcademicSession: r.AcademicSession,
		ClassFormTeacherID:   r.FormTeacherID,
		ClassIsActive:        r.IsActive == nil || *r.IsActive,
	}
	m.Rename(r.Level, r.Stream)
	return m
}

// UpdateClassRequest is partial. An empty stream or form_teacher_id clears it.
type UpdateClassRequest struct {
	Level           *string `json:"level"            validate:"omitempty,min=1,max=50"`
	Stream          *string `json:"stream"           validate:"omitempty,max=50"`
	AcademicSession *string `json:"academic_session" validate:"omitempty,min=1,max=20"`
	FormTeacherID   *string `json:"form_teacher_id"  validate:"omitempty,uuid"`
	IsActive        *bool   `json:"is_active"`
}

func (r *UpdateClassRequest) Normalize() {
	for _, p := range []**string{&r.Level, &r.Stream, &r.AcademicSession, &r.FormTeacherID} {
		if *p != nil {
			v := strings.TrimSpace(**p)
			*p = &v
		}
	}
}

type AssignFormTeacherRequest struct {
	TeacherID string `json:"teacher_id" validate:"required,uuid"`
}

/* =========================
   Briefs shared with students and subjects
========================= */

type TeacherBrief struct {
	ID          uuid.UUID `json:"id"`
	TeacherCode string    `json:"teacher_code"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	FullName    string    `json:"full_name"`
	Email       *string   `json:"email,omitempty"`
}

func ToTeacherBrief(t *teacherModel.TeacherModel) *TeacherBrief {
	if t == nil {
		return nil
	}
	return &TeacherBrief{
		ID:          t.TeacherID,
		TeacherCode: t.TeacherCode,
		FirstName:   t.TeacherFirstName,
		LastName:    t.TeacherLastName,
		FullName:    t.FullName(),
		Email:       t.TeacherEmail,
	}
}

type StudentBrief struct {
	ID              uuid.UUID            `json:"id"`
	StudentCode     string               `json:"student_code"`
	AdmissionNumber *string              `json:"admission_number,omitempty"`
	FirstName       string               `json:"first_name"`
	LastName        string               `json:"last_name"`
	FullName        string               `json:"full_name"`
	Gender          *studentModel.Gender `json:"gender,omitempty"`
	IsActive        bool                 `json:"is_active"`
}

func ToStudentBrief(s *studentModel.StudentModel) StudentBrief {
	return StudentBrief{
		ID:              s.StudentID,
		StudentCode:     s.StudentCode,
		AdmissionNumber: s.StudentAdmissionNumber,
		FirstName:       s.StudentFirstName,
		LastName:        s.StudentLastName,
		FullName:        s.FullName(),
		Gender:          s.StudentGender,
		IsActive:        s.StudentIsActive,
	}
}

type SubjectWithTeacher struct {
	ID          uuid.UUID     `json:"id"`
	ClassID     uuid.UUID     `json:"class_id"`
	Name        string        `json:"name"`
	Code        *string       `json:"code"`
	Description *string       `json:"description"`
	IsActive    bool          `json:"is_active"`
	Teacher     *TeacherBrief `json:"teacher"`
}

func ToSubjectWithTeacher(s *subjectModel.SubjectModel, t *teacherModel.TeacherModel) SubjectWithTeacher {
	return SubjectWithTeacher{
		ID:          s.SubjectID,
		ClassID:     s.SubjectClassID,
		Name:        s.SubjectName,
		Code:        s.SubjectCode,
		Description: s.SubjectDescription,
		IsActive:    s.SubjectIsActive,
		Teacher:     ToTeacherBrief(t),
	}
}

/* =========================
   Responses
========================= */

type ClassResponse struct {
	ID              uuid.UUID     `json:"id"`
	SchoolID        uuid.UUID     `json:"school_id"`
	Level           string        `json:"level"`
	Stream          *string       `json:"stream"`
	DisplayName     string        `json:"display_name"`
	AcademicSession string        `json:"academic_session"`
	FormTeacherID   *uuid.UUID    `json:"form_teacher_id"`
	FormTeacher     *TeacherBrief `json:"form_teacher,omitempty"`
	IsActive        bool          `json:"is_active"`
	StudentCount    *int64        `json:"student_count,omitempty"`
	SubjectCount    *int64        `json:"subject_count,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func FromModel(c *model.ClassModel) ClassResponse {
	return ClassResponse{
		ID:              c.ClassID,
		SchoolID:        c.ClassSchoolID,
		Level:           c.ClassLevel,
		Stream:          c.ClassStream,
		DisplayName:     c.ClassDisplayName,
		AcademicSession: c.ClassAcademicSession,
		FormTeacherID:   c.ClassFormTeacherID,
		IsActive:        c.ClassIsActive,
		CreatedAt:       c.ClassCreatedAt,
		UpdatedAt:       c.ClassUpdatedAt,
	}
}

func FromModels(rows []model.ClassModel) []ClassResponse {
	return lo.Map(rows, func(c model.ClassModel, _ int) ClassResponse { return FromModel(&c) })
}

// ClassDetailResponse adds the active roster and subjects.
type ClassDetailResponse struct {
	ClassResponse
	Students []StudentBrief       `json:"students"`
	Subjects []SubjectWithTeacher `json:"subjects"`
}

type AssignFormTeacherResponse struct {
	Class   ClassResponse `json:"class"`
	Teacher *TeacherBrief `json:"teacher"`
}

type DisplayNameResponse struct {
	Level       string  `json:"level"`
	Stream      *string `json:"stream"`
	DisplayName string  `json:"display_name"`
}
