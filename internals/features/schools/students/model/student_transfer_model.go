package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudentTransferModel records one class move of a student.
type StudentTransferModel struct {
	StudentTransferID          uuid.UUID  `gorm:"type:uuid;primaryKey;column:student_transfer_id" json:"student_transfer_id"`
	StudentTransferSchoolID    uuid.UUID  `gorm:"type:uuid;not null;index;column:student_transfer_school_id" json:"student_transfer_school_id"`
	StudentTransferStudentID   uuid.UUID  `gorm:"type:uuid;not null;index;column:student_transfer_student_id" json:"student_transfer_student_id"`
	StudentTransferFromClassID *uuid.UUID `gorm:"type:uuid;column:student_transfer_from_class_id" json:"student_transfer_from_class_id"`
	StudentTransferToClassID   uuid.UUID  `gorm:"type:uuid;not null;column:student_transfer_to_class_id" json:"student_transfer_to_class_id"`
	StudentTransferNote        *string    `gorm:"type:varchar(255);column:student_transfer_note" json:"student_transfer_note,omitempty"`

	// nil when done by the system
	StudentTransferBy *uuid.UUID `gorm:"type:uuid;column:student_transfer_by" json:"student_transfer_by,omitempty"`
	StudentTransferAt time.Time  `gorm:"not null;column:student_transfer_at" json:"student_transfer_at"`
}

func (StudentTransferModel) TableName() string { return "student_transfers" }

func (m *StudentTransferModel) BeforeCreate(tx *gorm.DB) error {
	if m.StudentTransferID == uuid.Nil {
		m.StudentTransferID = uuid.New()
	}
	return nil
}
