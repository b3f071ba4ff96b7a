// file: internals/features/schools/schools/service/stats_service.go
package service

import (
	"context"

	"github.com/google/uuid"

	classModel "schoolhub_backend/internals/features/schools/classes/model"
	"schoolhub_backend/internals/features/schools/schools/dto"
	studentModel "schoolhub_backend/internals/features/schools/students/model"
	userModel "schoolhub_backend/internals/features/users/user/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

type roleCount struct {
	Role  string
	Count int64
}

// Stats summarises membership for the school admin page.
func (s *SchoolService) Stats(ctx context.Context, schoolID uuid.UUID) (*dto.SchoolStatsResponse, error) {
	m, err := s.Get(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	var roles []roleCount
	if err := db.Model(&userModel.UserModel{}).
		Select("role, COUNT(*) AS count").
		Where("school_id = ? AND status = ?", schoolID, userModel.UserStatusActive).
		Group("role").
		Scan(&roles).Error; err != nil {
		return nil, helper.ErrStorage("count users by role", err)
	}
	dist := make(map[string]int64, len(roles))
	for _, r := range roles {
		dist[r.Role] = r.Count
	}

	var activeStudents, classCount int64
	if err := db.Model(&studentModel.StudentModel{}).
		Where("student_school_id = ? AND student_is_active = ?", schoolID, true).
		Count(&activeStudents).Error; err != nil {
		return nil, helper.ErrStorage("count active students", err)
	}
	if err := db.Model(&classModel.ClassModel{}).
		Where("class_school_id = ? AND class_is_active = ?", schoolID, true).
		Count(&classCount).Error; err != nil {
		return nil, helper.ErrStorage("count classes", err)
	}

	return &dto.SchoolStatsResponse{
		SchoolID:           m.SchoolID,
		StudentCount:       m.SchoolStudentCount,
		ActiveStudents:     activeStudents,
		TeacherCount:       m.SchoolTeacherCount,
		ClassCount:         classCount,
		RoleDistribution:   dist,
		SubscriptionStatus: m.SchoolSubscriptionStatus,
		TrialDaysRemaining: m.DaysRemainingInTrial(dbtime.Now()),
		SetupProgress:      m.SetupProgress(),
	}, nil
}
