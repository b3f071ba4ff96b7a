package service

import (
	"context"
	"encoding/json"
	"testing"

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
	"schoolhub_backend/internals/features/schools/subjects/dto"
	teacherModel "schoolhub_backend/internals/features/schools/teachers/model"
	helper "schoolhub_backend/internals/helpers"
)

type fixture struct {
	svc     *SubjectService
	db      *gorm.DB
	school  *schoolModel.SchoolModel
	class   *classModel.ClassModel
	teacher *teacherModel.TeacherModel
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	school, err := schoolService.NewSchoolService(db).Create(context.Background(),
		schoolDTO.CreateSchoolRequest{Name: "Crescent Academy", SchoolType: "senior"})
	require.NoError(t, err)

	class := &classModel.ClassModel{ClassSchoolID: school.SchoolID, ClassAcademicSession: "2025/2026", ClassIsActive: true}
	class.Rename("SS 1", nil)
	require.NoError(t, db.Create(class).Error)

	teacher := &teacherModel.TeacherModel{
		TeacherSchoolID:  school.SchoolID,
		TeacherCode:      "TCHCRES001",
		TeacherFirstName: "Bola",
		TeacherLastName:  "Ige",
	}
	teacher.SetEmploymentStatus(teacherModel.EmploymentActive)
	require.NoError(t, db.Create(teacher).Error)

	return &fixture{svc: NewSubjectService(db), db: db, school: school, class: class, teacher: teacher}
}

func requireStatus(t *testing.T, err error, code int) {
	t.Helper()
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, code, fe.Code, fe.Message)
}

func (f *fixture) create(t *testing.T, name string, extra func(*dto.CreateSubjectRequest)) *dto.SubjectResponse {
	t.Helper()
	req := dto.CreateSubjectRequest{Name: name, ClassID: f.class.ClassID, TeacherID: f.teacher.TeacherID}
	if extra != nil {
		extra(&req)
	}
	req.Normalize()
	out, err := f.svc.Create(context.Background(), f.school.SchoolID, req)
	require.NoError(t, err)
	return out
}

func TestCreateSubject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	out := f.create(t, " Physics ", func(r *dto.CreateSubjectRequest) {
		code := " phy101 "
		r.Code = &code
	})
	assert.Equal(t, "Physics", out.Name)
	require.NotNil(t, out.Code)
	assert.Equal(t, "PHY101", *out.Code)
	assert.True(t, out.IsActive)
	require.NotNil(t, out.Teacher)
	assert.Equal(t, "Bola Ige", out.Teacher.FullName)

	t.Run("short name", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.school.SchoolID, dto.CreateSubjectRequest{Name: "X", ClassID: f.class.ClassID, TeacherID: f.teacher.TeacherID})
		requireStatus(t, err, fiber.StatusBadRequest)
	})

	t.Run("class of another school", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.school.SchoolID, dto.CreateSubjectRequest{Name: "Chemistry", ClassID: uuid.New(), TeacherID: f.teacher.TeacherID})
		requireStatus(t, err, fiber.StatusNotFound)
		assert.Contains(t, err.Error(), "Class")
	})

	t.Run("teacher of another school", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.school.SchoolID, dto.CreateSubjectRequest{Name: "Chemistry", ClassID: f.class.ClassID, TeacherID: uuid.New()})
		requireStatus(t, err, fiber.StatusNotFound)
		assert.Contains(t, err.Error(), "Teacher")
	})
}

func TestListSubjects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.create(t, "Mathematics", nil)
	f.create(t, "Biology", nil)
	f.create(t, "Geography", func(r *dto.CreateSubjectRequest) {
		inactive := false
		r.IsActive = &inactive
	})

	page := helper.Paging{Page: 1, PerPage: 50, Limit: 50}
	rows, total, err := f.svc.List(ctx, f.school.SchoolID, ListSubjectsFilter{ActiveOnly: true}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "Biology", rows[0].Name)

	rows, _, err = f.svc.List(ctx, f.school.SchoolID, ListSubjectsFilter{Search: "GEO"}, page)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Geography", rows[0].Name)

	all, err := f.svc.ForClassWithTeachers(ctx, f.school.SchoolID, f.class.ClassID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, s := range all {
		require.NotNil(t, s.Teacher)
	}

	_, err = f.svc.ForClassWithTeachers(ctx, f.school.SchoolID, uuid.New())
	requireStatus(t, err, fiber.StatusNotFound)
}

func TestUpdateSubject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := f.create(t, "Economics", nil)

	name := "Further Economics"
	inactive := false
	out, err := f.svc.Update(ctx, f.school.SchoolID, s.ID, dto.UpdateSubjectRequest{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Further Economics", out.Name)
	assert.False(t, out.IsActive)

	stranger := uuid.New()
	_, err = f.svc.Update(ctx, f.school.SchoolID, s.ID, dto.UpdateSubjectRequest{TeacherID: &stranger})
	requireStatus(t, err, fiber.StatusNotFound)

	_, err = f.svc.Update(ctx, uuid.New(), s.ID, dto.UpdateSubjectRequest{})
	requireStatus(t, err, fiber.StatusNotFound)
}

func TestCAStructure(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	plain := f.create(t, "Civic Education", nil)
	out, err := f.svc.CAStructure(ctx, f.school.SchoolID, plain.ID)
	require.NoError(t, err)
	assert.False(t, out.HasOverride)
	assert.Nil(t, out.Override)
	b, err := json.Marshal(out.CAStructure)
	require.NoError(t, err)
	assert.JSONEq(t, `"standard_30"`, string(b))

	custom := f.create(t, "Further Maths", func(r *dto.CreateSubjectRequest) {
		r.CAStructureOverride = json.RawMessage(`{"test1": 20, "exam": 80}`)
	})
	out, err = f.svc.CAStructure(ctx, f.school.SchoolID, custom.ID)
	require.NoError(t, err)
	assert.True(t, out.HasOverride)
	b, err = json.Marshal(out.CAStructure)
	require.NoError(t, err)
	assert.JSONEq(t, `{"test1": 20, "exam": 80}`, string(b))
	b, err = json.Marshal(out.SchoolDefault)
	require.NoError(t, err)
	assert.JSONEq(t, `"standard_30"`, string(b))

	t.Run("null removes the override", func(t *testing.T) {
		_, err := f.svc.Update(ctx, f.school.SchoolID, custom.ID, dto.UpdateSubjectRequest{CAStructureOverride: json.RawMessage(`null`)})
		require.NoError(t, err)
		out, err := f.svc.CAStructure(ctx, f.school.SchoolID, custom.ID)
		require.NoError(t, err)
		assert.False(t, out.HasOverride)
	})
}
