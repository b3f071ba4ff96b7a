// file: internals/features/schools/subjects/model/subject_model.go
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubjectModel struct {
	SubjectID        uuid.UUID `gorm:"type:uuid;primaryKey;column:subject_id" json:"subject_id"`
	SubjectSchoolID  uuid.UUID `gorm:"type:uuid;not null;index;column:subject_school_id" json:"subject_school_id"`
	SubjectClassID   uuid.UUID `gorm:"type:uuid;not null;index;column:subject_class_id" json:"subject_class_id"`
	SubjectTeacherID uuid.UUID `gorm:"type:uuid;not null;index;column:subject_teacher_id" json:"subject_teacher_id"`

	SubjectName        string  `gorm:"type:varchar(100);not null;column:subject_name" json:"subject_name"`
	SubjectCode        *string `gorm:"type:varchar(20);column:subject_code" json:"subject_code,omitempty"`
	SubjectDescription *string `gorm:"type:text;column:subject_description" json:"subject_description,omitempty"`

	// Optional overrides; empty means "use the school's academic_config".
	SubjectCAStructureOverride  datatypes.JSON `gorm:"column:subject_ca_structure_override" json:"subject_ca_structure_override,omitempty"`
	SubjectGradingScaleOverride datatypes.JSON `gorm:"column:subject_grading_scale_override" json:"subject_grading_scale_override,omitempty"`

	SubjectIsActive  bool      `gorm:"not null;column:subject_is_active" json:"subject_is_active"`
	SubjectCreatedAt time.Time `gorm:"autoCreateTime;column:subject_created_at" json:"subject_created_at"`
	SubjectUpdatedAt time.Time `gorm:"autoUpdateTime;column:subject_updated_at" json:"subject_updated_at"`
}

func (SubjectModel) TableName() string { return "subjects" }

func (s *SubjectModel) BeforeCreate(tx *gorm.DB) error {
	if s.SubjectID == uuid.Nil {
		s.SubjectID = uuid.New()
	}
	return nil
}

func hasOverride(j datatypes.JSON) bool {
	s := string(j)
	return len(j) > 0 && s != "null" && s != "{}" && s != `""`
}

// EffectiveCAStructure returns the override, else schoolDefault.
func (s *SubjectModel) EffectiveCAStructure(schoolDefault any) any {
	if hasOverride(s.SubjectCAStructureOverride) {
		return json.RawMessage(s.SubjectCAStructureOverride)
	}
	return schoolDefault
}

// EffectiveGradingScale returns the override, else schoolDefault.
func (s *SubjectModel) EffectiveGradingScale(schoolDefault any) any {
	if hasOverride(s.SubjectGradingScaleOverride) {
		return json.RawMessage(s.SubjectGradingScaleOverride)
	}
	return schoolDefault
}

func (s *SubjectModel) HasCAStructureOverride() bool  { return hasOverride(s.SubjectCAStructureOverride) }
func (s *SubjectModel) HasGradingScaleOverride() bool { return hasOverride(s.SubjectGradingScaleOverride) }
