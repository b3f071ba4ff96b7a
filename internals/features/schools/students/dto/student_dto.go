package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	classDTO "schoolhub_backend/internals/features/schools/classes/dto"
	"schoolhub_backend/internals/features/schools/students/model"
)

/* =========================
   Requests
========================= */

type CreateStudentRequest struct {
	AdmissionNumber      *string    `json:"admission_number"      validate:"omitempty,max=50"`
	FirstName            string     `json:"first_name"            validate:"required,max=100"`
	LastName             string     `json:"last_name"             validate:"required,max=100"`
	OtherNames           *string    `json:"other_names"           validate:"omitempty,max=100"`
	Gender               *string    `json:"gender"                validate:"omitempty,oneof=male female"`
	Email                *string    `json:"email"                 validate:"omitempty,email,max=120"`
	Phone                *string    `json:"phone"                 validate:"omitempty,max=20"`
	GuardianName         *string    `json:"guardian_name"         validate:"omitempty,max=150"`
	GuardianPhone        *string    `json:"guardian_phone"        validate:"omitempty,max=20"`
	GuardianEmail        *string    `json:"guardian_email"        validate:"omitempty,email,max=120"`
	GuardianRelationship *string    `json:"guardian_relationship" validate:"omitempty,max=50"`
	ClassID              *uuid.UUID `json:"class_id"`
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

func (r *CreateStudentRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.AdmissionNumber = trimPtr(r.AdmissionNumber)
	r.OtherNames = trimPtr(r.OtherNames)
	r.Gender = lowerPtr(r.Gender)
	r.Email = lowerPtr(r.Email)
	r.Phone = trimPtr(r.Phone)
	r.GuardianName = trimPtr(r.GuardianName)
	r.GuardianPhone = trimPtr(r.GuardianPhone)
	r.GuardianEmail = lowerPtr(r.GuardianEmail)
	r.GuardianRelationship = trimPtr(r.GuardianRelationship)
	if r.ClassID != nil && *r.ClassID == uuid.Nil {
		r.ClassID = nil
	}
}

// ToModel leaves the code to the service; gender must already be valid.
func (r *CreateStudentRequest) ToModel(schoolID uuid.UUID, now time.Time) *model.StudentModel {
	g, _ := model.ParseGender(lo.FromPtr(r.Gender))
	return &model.StudentModel{
		StudentSchoolID:             schoolID,
		StudentAdmissionNumber:      r.AdmissionNumber,
		StudentFirstName:            r.FirstName,
		StudentLastName:             r.LastName,
		StudentOtherNames:           r.OtherNames,
		StudentGender:               g,
		StudentEmail:                r.Email,
		StudentPhone:                r.Phone,
		StudentGuardianName:         r.GuardianName,
		StudentGuardianPhone:        r.GuardianPhone,
		StudentGuardianEmail:        r.GuardianEmail,
		StudentGuardianRelationship: r.GuardianRelationship,
		StudentClassID:              r.ClassID,
		StudentIsActive:             true,
		StudentDateJoinedPlatform:   now,
	}
}

// UpdateStudentRequest is partial. Empty strings clear optional fields; an
// empty class_id removes the student from their class.
type UpdateStudentRequest struct {
	AdmissionNumber      *string `json:"admission_number"      validate:"omitempty,max=50"`
	FirstName            *string `json:"first_name"            validate:"omitempty,min=1,max=100"`
	LastName             *string `json:"last_name"             validate:"omitempty,min=1,max=100"`
	OtherNames           *string `json:"other_names"           validate:"omitempty,max=100"`
	Gender               *string `json:"gender"                validate:"omitempty,oneof=male female"`
	Email                *string `json:"email"                 validate:"omitempty,email,max=120"`
	Phone                *string `json:"phone"                 validate:"omitempty,max=20"`
	GuardianName         *string `json:"guardian_name"         validate:"omitempty,max=150"`
	GuardianPhone        *string `json:"guardian_phone"        validate:"omitempty,max=20"`
	GuardianEmail        *string `json:"guardian_email"        validate:"omitempty,email,max=120"`
	GuardianRelationship *string `json:"guardian_relationship" validate:"omitempty,max=50"`
	ClassID              *string `json:"class_id"              validate:"omitempty,uuid"`
	IsActive             *bool   `json:"is_active"`
}

func (r *UpdateStudentRequest) Normalize() {
	for _, p := range []**string{
		&r.AdmissionNumber, &r.FirstName, &r.LastName, &r.OtherNames, &r.Phone,
		&r.GuardianName, &r.GuardianPhone, &r.GuardianRelationship, &r.ClassID,
	} {
		if *p != nil {
			v := strings.TrimSpace(**p)
			*p = &v
		}
	}
	for _, p := range []**string{&r.Gender, &r.Email, &r.GuardianEmail} {
		if *p != nil {
			v := strings.ToLower(strings.TrimSpace(**p))
			*p = &v
		}
	}
}

// ApplyToModel copies every present field except class_id, which the
// service resolves against the school.
func (r *UpdateStudentRequest) ApplyToModel(m *model.StudentModel) {
	if r.FirstName != nil && *r.FirstName != "" {
		m.StudentFirstName = *r.FirstName
	}
	if r.LastName != nil && *r.LastName != "" {
		m.StudentLastName = *r.LastName
	}
	set := func(dst **string, v *string) {
		if v != nil {
			*dst = trimPtr(v)
		}
	}
	set(&m.StudentAdmissionNumber, r.AdmissionNumber)
	set(&m.StudentOtherNames, r.OtherNames)
	set(&m.StudentEmail, r.Email)
	set(&m.StudentPhone, r.Phone)
	set(&m.StudentGuardianName, r.GuardianName)
	set(&m.StudentGuardianPhone, r.GuardianPhone)
	set(&m.StudentGuardianEmail, r.GuardianEmail)
	set(&m.StudentGuardianRelationship, r.GuardianRelationship)
	if r.Gender != nil {
		g, _ := model.ParseGender(*r.Gender)
		m.StudentGender = g
	}
	if r.IsActive != nil {
		m.StudentIsActive = *r.IsActive
	}
}

type TransferStudentRequest struct {
	NewClassID string  `json:"new_class_id" validate:"required,uuid"`
	Note       *string `json:"note"         validate:"omitempty,max=255"`
}

// ImportStudentRow is one element of the POST /students/import array.
type ImportStudentRow struct {
	FirstName       string     `json:"first_name"       validate:"required,max=100"`
	LastName        string     `json:"last_name"        validate:"required,max=100"`
	OtherNames      *string    `json:"other_names"      validate:"omitempty,max=100"`
	AdmissionNumber *string    `json:"admission_number" validate:"omitempty,max=50"`
	Gender          *string    `json:"gender"           validate:"omitempty,oneof=male female"`
	GuardianName    *string    `json:"guardian_name"    validate:"omitempty,max=150"`
	GuardianPhone   *string    `json:"guardian_phone"   validate:"omitempty,max=20"`
	ClassID         *uuid.UUID `json:"class_id"`
}

func (r ImportStudentRow) ToCreate() CreateStudentRequest {
	return CreateStudentRequest{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		OtherNames:      r.OtherNames,
		AdmissionNumber: r.AdmissionNumber,
		Gender:          r.Gender,
		GuardianName:    r.GuardianName,
		GuardianPhone:   r.GuardianPhone,
		ClassID:         r.ClassID,
	}
}

/* =========================
   Responses
========================= */

type StudentResponse struct {
	ID                   uuid.UUID               `json:"id"`
	SchoolID             uuid.UUID               `json:"school_id"`
	StudentCode          string                  `json:"student_code"`
	AdmissionNumber      *string                 `json:"admission_number"`
	FirstName            string                  `json:"first_name"`
	LastName             string                  `json:"last_name"`
	OtherNames           *string                 `json:"other_names"`
	FullName             string                  `json:"full_name"`
	Gender               *model.Gender           `json:"gender"`
	Email                *string                 `json:"email"`
	Phone                *string                 `json:"phone"`
	GuardianName         *string                 `json:"guardian_name"`
	GuardianPhone        *string                 `json:"guardian_phone"`
	GuardianEmail        *string                 `json:"guardian_email"`
	GuardianRelationship *string                 `json:"guardian_relationship"`
	ClassID              *uuid.UUID              `json:"class_id"`
	ClassDetails         *classDTO.ClassResponse `json:"class_details,omitempty"`
	IsActive             bool                    `json:"is_active"`
	DateJoinedPlatform   time.Time               `json:"date_joined_platform"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
}

func FromModel(s *model.StudentModel) StudentResponse {
	return StudentResponse{
		ID:                   s.StudentID,
		SchoolID:             s.StudentSchoolID,
		StudentCode:          s.StudentCode,
		AdmissionNumber:      s.StudentAdmissionNumber,
		FirstName:            s.StudentFirstName,
		LastName:             s.StudentLastName,
		OtherNames:           s.StudentOtherNames,
		FullName:             s.FullName(),
		Gender:               s.StudentGender,
		Email:                s.StudentEmail,
		Phone:                s.StudentPhone,
		GuardianName:         s.StudentGuardianName,
		GuardianPhone:        s.StudentGuardianPhone,
		GuardianEmail:        s.StudentGuardianEmail,
		GuardianRelationship: s.StudentGuardianRelationship,
		ClassID:              s.StudentClassID,
		IsActive:             s.StudentIsActive,
		DateJoinedPlatform:   s.StudentDateJoinedPlatform,
		CreatedAt:            s.StudentCreatedAt,
		UpdatedAt:            s.StudentUpdatedAt,
	}
}

// StudentDetailResponse is GET /students/:id.
type StudentDetailResponse struct {
	StudentResponse
	FormTeacher *classDTO.TeacherBrief        `json:"form_teacher,omitempty"`
	Subjects    []classDTO.SubjectWithTeacher `json:"subjects"`
}

type TransferLog struct {
	ID            uuid.UUID  `json:"id"`
	StudentID     uuid.UUID  `json:"student_id"`
	OldClassID    *uuid.UUID `json:"old_class_id"`
	NewClassID    uuid.UUID  `json:"new_class_id"`
	Note          *string    `json:"note,omitempty"`
	TransferredAt time.Time  `json:"transferred_at"`
	TransferredBy *uuid.UUID `json:"transferred_by"`
}

func ToTransferLog(m *model.StudentTransferModel) TransferLog {
	return TransferLog{
		ID:            m.StudentTransferID,
		StudentID:     m.StudentTransferStudentID,
		OldClassID:    m.StudentTransferFromClassID,
		NewClassID:    m.StudentTransferToClassID,
		Note:          m.StudentTransferNote,
		TransferredAt: m.StudentTransferAt,
		TransferredBy: m.StudentTransferBy,
	}
}

type TransferResponse struct {
	Student     StudentResponse `json:"student"`
	TransferLog TransferLog     `json:"transfer_log"`
}

type ImportFailure struct {
	Row   int              `json:"row"`
	Data  ImportStudentRow `json:"data"`
	Error string           `json:"error"`
}

type ImportResult struct {
	Successful []StudentResponse `json:"successful"`
	Failed     []ImportFailure   `json:"failed"`
}
