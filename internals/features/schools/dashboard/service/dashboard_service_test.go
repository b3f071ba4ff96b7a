package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"schoolhub_backend/internals/databases/testdb"
	classModel "schoolhub_backend/internals/features/schools/classes/model"
	schoolDTO "schoolhub_backend/internals/features/schools/schools/dto"
	schoolModel "schoolhub_backend/internals/features/schools/schools/model"
	schoolService "schoolhub_backend/internals/features/schools/schools/service"
	studentModel "schoolhub_backend/internals/features/schools/students/model"
	subjectModel "schoolhub_backend/internals/features/schools/subjects/model"
	teacherModel "schoolhub_backend/internals/features/schools/teachers/model"
	"schoolhub_backend/internals/helpers/dbtime"
)

type world struct {
	db      *gorm.DB
	school  *schoolModel.SchoolModel
	teacher *teacherModel.TeacherModel
	classA  *classModel.ClassModel
	classB  *classModel.ClassModel
}

func build(t *testing.T) *world {
	t.Helper()
	db := testdb.Open(t)
	school, err := schoolService.NewSchoolService(db).Create(context.Background(),
		schoolDTO.CreateSchoolRequest{Name: "Harmony School", SchoolType: "primary"})
	require.NoError(t, err)
	w := &world{db: db, school: school}

	longAgo := dbtime.Now().AddDate(0, -3, 0)
	w.teacher = &teacherModel.TeacherModel{
		TeacherSchoolID: school.SchoolID, TeacherCode: "TCHHARM001",
		TeacherFirstName: "Kemi", TeacherLastName: "Ade",
	}
	w.teacher.SetEmploymentStatus(teacherModel.EmploymentActive)
	require.NoError(t, db.Create(w.teacher).Error)

	old := &teacherModel.TeacherModel{
		TeacherSchoolID: school.SchoolID, TeacherCode: "TCHHARM002",
		TeacherFirstName: "Old", TeacherLastName: "Hand", TeacherDateJoinedPlatform: longAgo,
	}
	old.SetEmploymentStatus(teacherModel.EmploymentSuspended)
	require.NoError(t, db.Create(old).Error)

	w.classA = &classModel.ClassModel{ClassSchoolID: school.SchoolID, ClassAcademicSession: "2025/2026",
		ClassIsActive: true, ClassFormTeacherID: &w.teacher.TeacherID}
	w.classA.Rename("Primary 1", nil)
	require.NoError(t, db.Create(w.classA).Error)
	w.classB = &classModel.ClassModel{ClassSchoolID: school.SchoolID, ClassAcademicSession: "2025/2026", ClassIsActive: true}
	w.classB.Rename("Primary 2", nil)
	require.NoError(t, db.Create(w.classB).Error)
	retired := &classModel.ClassModel{ClassSchoolID: school.SchoolID, ClassAcademicSession: "2024/2025"}
	retired.Rename("Primary 6", nil)
	require.NoError(t, db.Create(retired).Error)
	require.NoError(t, db.Model(retired).Update("class_is_active", false).Error)

	for _, sb := range []struct {
		name  string
		class uuid.UUID
	}{{"English", w.classA.ClassID}, {"Maths", w.classA.ClassID}, {"Science", w.classB.ClassID}} {
		require.NoError(t, db.Create(&subjectModel.SubjectModel{
			SubjectSchoolID: school.SchoolID, SubjectClassID: sb.class,
			SubjectTeacherID: w.teacher.TeacherID, SubjectName: sb.name, SubjectIsActive: true,
		}).Error)
	}

	students := []struct {
		class  uuid.UUID
		active bool
		joined time.Time
	}{
		{w.classA.ClassID, true, time.Time{}},
		{w.classA.ClassID, true, longAgo},
		{w.classB.ClassID, true, time.Time{}},
		{w.classB.ClassID, false, longAgo},
	}
	for i, s := range students {
		st := &studentModel.StudentModel{
			StudentSchoolID: school.SchoolID, StudentCode: fmt.Sprintf("STUHARM%03d", i+1),
			StudentFirstName: "Kid", StudentLastName: fmt.Sprint(i),
			StudentClassID: &s.class, StudentIsActive: true, StudentDateJoinedPlatform: s.joined,
		}
		require.NoError(t, db.Create(st).Error)
		if !s.active {
			require.NoError(t, db.Model(st).Update("student_is_active", false).Error)
		}
	}
	return w
}

func TestOverview(t *testing.T) {
	w := build(t)
	out, err := NewDashboardService(w.db).Overview(context.Background(), w.school.SchoolID)
	require.NoError(t, err)

	assert.Equal(t, "Harmony School", out.SchoolName)
	s := out.Summary
	assert.EqualValues(t, 4, s.Students.Total)
	assert.EqualValues(t, 3, s.Students.Active)
	assert.EqualValues(t, 1, s.Students.Inactive)
	assert.EqualValues(t, 2, s.Students.NewLast30Days)
	assert.EqualValues(t, 2, s.Teachers.Total)
	assert.EqualValues(t, 1, s.Teachers.Active)
	assert.EqualValues(t, 1, s.Teachers.NewLast30Days)
	assert.EqualValues(t, 3, s.Classes.Total)
	assert.EqualValues(t, 2, s.Classes.Active)
	assert.EqualValues(t, 3, s.Subjects.Total)

	assert.Equal(t, schoolModel.SubscriptionTrial, out.Subscription.Status)
	require.NotNil(t, out.Subscription.TrialEndsAt)
	assert.Greater(t, out.Subscription.DaysRemaining, 0)

	_, err = NewDashboardService(w.db).Overview(context.Background(), uuid.New())
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusNotFound, fe.Code)
}

func TestTeacherDashboard(t *testing.T) {
	w := build(t)
	svc := NewDashboardService(w.db)
	ctx := context.Background()

	out, err := svc.Teacher(ctx, w.school.SchoolID, w.teacher.TeacherID)
	require.NoError(t, err)
	assert.Equal(t, "Kemi Ade", out.TeacherName)
	assert.Equal(t, 1, out.Summary.FormTeacherOf)
	assert.Equal(t, 3, out.Summary.SubjectsTaught)
	assert.EqualValues(t, 3, out.Summary.TotalStudents)
	assert.True(t, out.Summary.ActiveStatus)
	require.Len(t, out.Details.Subjects, 3)
	require.NotNil(t, out.Details.Subjects[0].Class)

	t.Run("platform scope", func(t *testing.T) {
		_, err := svc.Teacher(ctx, uuid.Nil, w.teacher.TeacherID)
		require.NoError(t, err)
	})

	t.Run("other school", func(t *testing.T) {
		_, err := svc.Teacher(ctx, uuid.New(), w.teacher.TeacherID)
		var fe *fiber.Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, fiber.StatusNotFound, fe.Code)
	})
}
