// file: internals/features/schools/students/model/student_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender lower-cases s; empty input is allowed and returns ok.
func ParseGender(s string) (*Gender, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, true
	}
	g := Gender(s)
	if g != GenderMale && g != GenderFemale {
		return nil, false
	}
	return &g, true
}

type StudentModel struct {
	StudentID       uuid.UUID `gorm:"type:uuid;primaryKey;column:student_id" json:"student_id"`
	StudentSchoolID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_students_school_admission,priority:1;column:student_school_id" json:"student_school_id"`

	StudentCode            string  `gorm:"type:varchar(30);not null;uniqueIndex:uq_students_code;column:student_code" json:"student_code"`
	StudentAdmissionNumber *string `gorm:"type:varchar(50);uniqueIndex:uq_students_school_admission,priority:2;column:student_admission_number" json:"student_admission_number,omitempty"`

	StudentFirstName  string  `gorm:"type:varchar(100);not null;column:student_first_name" json:"student_first_name"`
	StudentLastName   string  `gorm:"type:varchar(100);not null;column:student_last_name" json:"student_last_name"`
	StudentOtherNames *string `gorm:"type:varchar(100);column:student_other_names" json:"student_other_names,omitempty"`
	StudentGender     *Gender `gorm:"type:varchar(10);column:student_gender" json:"student_gender,omitempty"`
	StudentEmail      *string `gorm:"type:varchar(120);column:student_email" json:"student_email,omitempty"`
	StudentPhone      *string `gorm:"type:varchar(20);column:student_phone" json:"student_phone,omitempty"`

	// Guardian
	StudentGuardianName         *string `gorm:"type:varchar(150);column:student_guardian_name" json:"student_guardian_name,omitempty"`
	StudentGuardianPhone        *string `gorm:"type:varchar(20);column:student_guardian_phone" json:"student_guardian_phone,omitempty"`
	StudentGuardianEmail        *string `gorm:"type:varchar(120);column:student_guardian_email" json:"student_guardian_email,omitempty"`
	StudentGuardianRelationship *string `gorm:"type:varchar(50);column:student_guardian_relationship" json:"student_guardian_relationship,omitempty"`

	// Current class only
	StudentClassID *uuid.UUID `gorm:"type:uuid;index;column:student_class_id" json:"student_class_id,omitempty"`

	StudentTimetable datatypes.JSONMap `gorm:"column:student_timetable" json:"student_timetable,omitempty"`

	StudentIsActive           bool      `gorm:"not null;column:student_is_active" json:"student_is_active"`
	StudentDateJoinedPlatform time.Time `gorm:"column:student_date_joined_platform" json:"student_date_joined_platform"`
	StudentCreatedAt          time.Time `gorm:"autoCreateTime;column:student_created_at" json:"student_created_at"`
	StudentUpdatedAt          time.Time `gorm:"autoUpdateTime;column:student_updated_at" json:"student_updated_at"`
}

func (StudentModel) TableName() string { return "students" }

func (s *StudentModel) BeforeCreate(tx *gorm.DB) error {
	if s.StudentID == uuid.Nil {
		s.StudentID = uuid.New()
	}
	if s.StudentDateJoinedPlatform.IsZero() {
		s.StudentDateJoinedPlatform = time.Now().UTC()
	}
	return nil
}

func (s *StudentModel) FullName() string {
	parts := []string{s.StudentFirstName, s.StudentLastName}
	if s.StudentOtherNames != nil && strings.TrimSpace(*s.StudentOtherNames) != "" {
		parts = append(parts, *s.StudentOtherNames)
	}
	return strings.Join(parts, " ")
}
