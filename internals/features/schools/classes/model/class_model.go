// file: internals/features/schools/classes/model/class_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClassModel is a level + stream for one academic session, e.g. "JSS 1 A" in 2025/2026.
type ClassModel struct {
	ClassID       uuid.UUID `gorm:"type:uuid;primaryKey;column:class_id" json:"class_id"`
	ClassSchoolID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_classes_school_name_session,priority:1;column:class_school_id" json:"class_school_id"`

	ClassLevel           string  `gorm:"type:varchar(50);not null;column:class_level" json:"class_level"`
	ClassStream          *string `gorm:"type:varchar(50);column:class_stream" json:"class_stream,omitempty"`
	ClassDisplayName     string  `gorm:"type:varchar(100);not null;uniqueIndex:uq_classes_school_name_session,priority:2;column:class_display_name" json:"class_display_name"`
	ClassAcademicSession string  `gorm:"type:varchar(20);not null;uniqueIndex:uq_classes_school_name_session,priority:3;column:class_academic_session" json:"class_academic_session"`

	ClassFormTeacherID *uuid.UUID `gorm:"type:uuid;index;column:class_form_teacher_id" json:"class_form_teacher_id,omitempty"`
	ClassIsActive      bool       `gorm:"not null;column:class_is_active" json:"class_is_active"`

	ClassCreatedAt time.Time `gorm:"autoCreateTime;column:class_created_at" json:"class_created_at"`
	ClassUpdatedAt time.Time `gorm:"autoUpdateTime;column:class_updated_at" json:"class_updated_at"`
}

func (ClassModel) TableName() string { return "classes" }

func (c *ClassModel) BeforeCreate(tx *gorm.DB) error {
	if c.ClassID == uuid.Nil {
		c.ClassID = uuid.New()
	}
	return nil
}

// BuildDisplayName returns "{level} {stream}", or just the level.
func BuildDisplayName(level string, stream *string) string {
	level = strings.TrimSpace(level)
	if stream == nil || strings.TrimSpace(*stream) == "" {
		return level
	}
	return level + " " + strings.TrimSpace(*stream)
}

// ValidSession accepts labels like "2025/2026".
func ValidSession(s string) bool { return strings.Contains(s, "/") }

// Rename sets level/stream and recomputes the display name.
func (c *ClassModel) Rename(level string, stream *string) {
	c.ClassLevel = strings.TrimSpace(level)
	c.ClassStream = stream
	c.ClassDisplayName = BuildDisplayName(c.ClassLevel, stream)
}
