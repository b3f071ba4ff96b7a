package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	classDTO "schoolhub_backend/internals/features/schools/classes/dto"
	"schoolhub_backend/internals/features/schools/subjects/model"
	teacherModel "schoolhub_backend/internals/features/schools/teachers/model"
)

/* =========================
   Requests
========================= */

type CreateSubjectRequest struct {
	Name                 string          `json:"name"                   validate:"required,min=2,max=100"`
	Code                 *string         `json:"code"                   validate:"omitempty,max=20"`
	Description          *string         `json:"description"`
	ClassID              uuid.UUID       `json:"class_id"               validate:"required"`
	TeacherID            uuid.UUID       `json:"teacher_id"             validate:"required"`
	IsActive             *bool           `json:"is_active"`
	CAStructureOverride  json.RawMessage `json:"ca_structure_override"`
	GradingScaleOverride json.RawMessage `json:"grading_scale_override"`
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

func upperPtr(p *string) *string {
	if p = trimPtr(p); p != nil {
		v := strings.ToUpper(*p)
		return &v
	}
	return nil
}

func (r *CreateSubjectRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Code = upperPtr(r.Code)
	r.Description = trimPtr(r.Description)
}

// overrideJSON maps an absent or null override to an empty column.
func overrideJSON(raw json.RawMessage) datatypes.JSON {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return datatypes.JSON(raw)
}

func (r *CreateSubjectRequest) ToModel(schoolID uuid.UUID) *model.SubjectModel {
	return &model.SubjectModel{
		SubjectSchoolID:             schoolID,
		SubjectClassID:              r.ClassID,
		SubjectTeacherID:            r.TeacherID,
		SubjectName:                 r.Name,
		SubjectCode:                 r.Code,
		SubjectDescription:          r.Description,
		SubjectCAStructureOverride:  overrideJSON(r.CAStructureOverride),
		SubjectGradingScaleOverride: overrideJSON(r.GradingScaleOverride),
		SubjectIsActive:             r.IsActive == nil || *r.IsActive,
	}
}

// UpdateSubjectRequest is partial. Sending null for an override removes it.
type UpdateSubjectRequest struct {
	Name                 *string         `json:"name"        validate:"omitempty,min=2,max=100"`
	Code                 *string         `json:"code"        validate:"omitempty,max=20"`
	Description          *string         `json:"description"`
	TeacherID            *uuid.UUID      `json:"teacher_id"`
	IsActive             *bool           `json:"is_active"`
	CAStructureOverride  json.RawMessage `json:"ca_structure_override"`
	GradingScaleOverride json.RawMessage `json:"grading_scale_override"`
}

func (r *UpdateSubjectRequest) Normalize() {
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		r.Name = &v
	}
}

// ApplyToModel copies present fields; the teacher is checked by the service.
func (r *UpdateSubjectRequest) ApplyToModel(m *model.SubjectModel) {
	if r.Name != nil {
		m.SubjectName = *r.Name
	}
	if r.Code != nil {
		m.SubjectCode = upperPtr(r.Code)
	}
	if r.Description != nil {
		m.SubjectDescription = trimPtr(r.Description)
	}
	if r.TeacherID != nil {
		m.SubjectTeacherID = *r.TeacherID
	}
	if r.IsActive != nil {
		m.SubjectIsActive = *r.IsActive
	}
	if len(r.CAStructureOverride) > 0 {
		m.SubjectCAStructureOverride = overrideJSON(r.CAStructureOverride)
	}
	if len(r.GradingScaleOverride) > 0 {
		m.SubjectGradingScaleOverride = overrideJSON(r.GradingScaleOverride)
	}
}

/* =========================
   Responses
========================= */

type SubjectResponse struct {
	ID                   uuid.UUID              `json:"id"`
	SchoolID             uuid.UUID              `json:"school_id"`
	ClassID              uuid.UUID              `json:"class_id"`
	TeacherID            uuid.UUID              `json:"teacher_id"`
	Name                 string                 `json:"name"`
	Code                 *string                `json:"code"`
	Description          *string                `json:"description"`
	IsActive             bool                   `json:"is_active"`
	CAStructureOverride  datatypes.JSON         `json:"ca_structure_override,omitempty"`
	GradingScaleOverride datatypes.JSON         `json:"grading_scale_override,omitempty"`
	Teacher              *classDTO.TeacherBrief `json:"teacher,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

func FromModel(s *model.SubjectModel, t *teacherModel.TeacherModel) SubjectResponse {
	out := SubjectResponse{
		ID:          s.SubjectID,
		SchoolID:    s.SubjectSchoolID,
		ClassID:     s.SubjectClassID,
		TeacherID:   s.SubjectTeacherID,
		Name:        s.SubjectName,
		Code:        s.SubjectCode,
		Description: s.SubjectDescription,
		IsActive:    s.SubjectIsActive,
		Teacher:     classDTO.ToTeacherBrief(t),
		CreatedAt:   s.SubjectCreatedAt,
		UpdatedAt:   s.SubjectUpdatedAt,
	}
	if s.HasCAStructureOverride() {
		out.CAStructureOverride = s.SubjectCAStructureOverride
	}
	if s.HasGradingScaleOverride() {
		out.GradingScaleOverride = s.SubjectGradingScaleOverride
	}
	return out
}

// CAStructureResponse shows the effective breakdown and where it comes from.
type CAStructureResponse struct {
	SubjectID     uuid.UUID `json:"subject_id"`
	SubjectName   string    `json:"subject_name"`
	CAStructure   any       `json:"ca_structure"`
	HasOverride   bool      `json:"has_override"`
	Override      any       `json:"override"`
	SchoolDefault any       `json:"school_default"`
}
