package dto

import (
	"time"

	"github.com/google/uuid"

	schoolModel "schoolhub_backend/internals/features/schools/schools/model"
	teacherDTO "schoolhub_backend/internals/features/schools/teachers/dto"
)

type MemberSummary struct {
	Total         int64 `json:"total"`
	Active        int64 `json:"active"`
	NewLast30Days int64 `json:"new_last_30_days"`
	Inactive      int64 `json:"inactive"`
}

type ClassSummary struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

type SubjectSummary struct {
	Total int64 `json:"total"`
}

type OverviewSummary struct {
	Students MemberSummary  `json:"students"`
	Teachers MemberSummary  `json:"teachers"`
	Classes  ClassSummary   `json:"classes"`
	Subjects SubjectSummary `json:"subjects"`
}

type SubscriptionSummary struct {
	Status        schoolModel.SubscriptionStatus `json:"status"`
	TrialEndsAt   *time.Time                     `json:"trial_ends_at"`
	DaysRemaining int                            `json:"days_remaining"`
}

// OverviewResponse is GET /api/a/:school_id/dashboard/overview.
type OverviewResponse struct {
	SchoolID     uuid.UUID           `json:"school_id"`
	SchoolName   string              `json:"school_name"`
	Summary      OverviewSummary     `json:"summary"`
	Subscription SubscriptionSummary `json:"subscription"`
}

type TeacherSummary struct {
	FormTeacherOf  int   `json:"form_teacher_of"`
	SubjectsTaught int   `json:"subjects_taught"`
	TotalStudents  int64 `json:"total_students"`
	ActiveStatus   bool  `json:"active_status"`
}

type TeacherDetails struct {
	FormTeacherClasses []teacherDTO.ClassBrief   `json:"form_teacher_classes"`
	Subjects           []teacherDTO.SubjectBrief `json:"subjects"`
}

// TeacherDashboardResponse is GET /api/u/dashboard/teacher/:teacher_id.
type TeacherDashboardResponse struct {
	TeacherID   uuid.UUID      `json:"teacher_id"`
	TeacherName string         `json:"teacher_name"`
	SchoolID    uuid.UUID      `json:"school_id"`
	Summary     TeacherSummary `json:"summary"`
	Details     TeacherDetails `json:"details"`
}
