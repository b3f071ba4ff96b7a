package service

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"schoolhub_backend/internals/databases/testdb"
	"schoolhub_backend/internals/features/schools/classes/dto"
	schoolDTO "schoolhub_backend/internals/features/schools/schools/dto"
	schoolModel "schoolhub_backend/internals/features/schools/schools/model"
	schoolService "schoolhub_backend/internals/features/schools/schools/service"
	studentModel "schoolhub_backend/internals/features/schools/students/model"
	subjectModel "schoolhub_backend/internals/features/schools/subjects/model"
	teacherModel "schoolhub_backend/internals/features/schools/teachers/model"
	helper "schoolhub_backend/internals/helpers"
)

func setup(t *testing.T) (*ClassService, *gorm.DB, *schoolModel.SchoolModel) {
	t.Helper()
	db := testdb.Open(t)
	school, err := schoolService.NewSchoolService(db).Create(context.Background(),
		schoolDTO.CreateSchoolRequest{Name: "Bright Future", SchoolType: "junior"})
	require.NoError(t, err)
	return NewClassService(db), db, school
}

func requireStatus(t *testing.T, err error, code int) {
	t.Helper()
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, code, fe.Code, fe.Message)
}

func strp(s string) *string { return &s }

func newTeacher(t *testing.T, db *gorm.DB, schoolID uuid.UUID, code string) *teacherModel.TeacherModel {
	t.Helper()
	tm := &teacherModel.TeacherModel{
		TeacherSchoolID:  schoolID,
		TeacherCode:      code,
		TeacherFirstName: "Grace",
		TeacherLastName:  "Ade",
	}
	tm.SetEmploymentStatus(teacherModel.EmploymentActive)
	require.NoError(t, db.Create(tm).Error)
	return tm
}

func createClass(t *testing.T, svc *ClassService, schoolID uuid.UUID, level string, stream *string) *dto.ClassResponse {
	t.Helper()
	req := dto.CreateClassRequest{Level: level, Stream: stream, AcademicSession: "2025/2026"}
	req.Normalize()
	m, err := svc.Create(context.Background(), schoolID, req)
	require.NoError(t, err)
	r := dto.FromModel(m)
	return &r
}

func TestCreateClass(t *testing.T) {
	svc, db, school := setup(t)
	ctx := context.Background()

	c := createClass(t, svc, school.SchoolID, " JSS 1 ", strp("A"))
	assert.Equal(t, "JSS 1 A", c.DisplayName)
	assert.True(t, c.IsActive)

	noStream := createClass(t, svc, school.SchoolID, "JSS 2", strp("  "))
	assert.Equal(t, "JSS 2", noStream.DisplayName)
	assert.Nil(t, noStream.Stream)

	t.Run("duplicate in same session", func(t *testing.T) {
		_, err := svc.Create(ctx, school.SchoolID, dto.CreateClassRequest{Level: "JSS 1", Stream: strp("A"), AcademicSession: "2025/2026"})
		requireStatus(t, err, fiber.StatusConflict)
	})

	t.Run("same name next session is fine", func(t *testing.T) {
		_, err := svc.Create(ctx, school.SchoolID, dto.CreateClassRequest{Level: "JSS 1", Stream: strp("A"), AcademicSession: "2026/2027"})
		require.NoError(t, err)
	})

	t.Run("session without slash", func(t *testing.T) {
		_, err := svc.Create(ctx, school.SchoolID, dto.CreateClassRequest{Level: "JSS 3", AcademicSession: "2025"})
		requireStatus(t, err, fiber.StatusBadRequest)
	})

	t.Run("form teacher from another school", func(t *testing.T) {
		other := newTeacher(t, db, uuid.New(), "TCHXXXX001")
		_, err := svc.Create(ctx, school.SchoolID, dto.CreateClassRequest{Level: "JSS 3", AcademicSession: "2025/2026", FormTeacherID: &other.TeacherID})
		requireStatus(t, err, fiber.StatusNotFound)
		assert.Contains(t, err.Error(), "different school")
	})
}

func TestUpdateClass(t *testing.T) {
	svc, db, school := setup(t)
	ctx := context.Background()
	a := createClass(t, svc, school.SchoolID, "JSS 1", strp("A"))
	createClass(t, svc, school.SchoolID, "JSS 1", strp("B"))

	t.Run("rename recomputes display name", func(t *testing.T) {
		req := dto.UpdateClassRequest{Stream: strp("C")}
		req.Normalize()
		m, err := svc.Update(ctx, school.SchoolID, a.ID, req)
		require.NoError(t, err)
		assert.Equal(t, "JSS 1 C", m.ClassDisplayName)
	})

	t.Run("rename into existing name conflicts", func(t *testing.T) {
		req := dto.UpdateClassRequest{Stream: strp("B")}
		_, err := svc.Update(ctx, school.SchoolID, a.ID, req)
		requireStatus(t, err, fiber.StatusConflict)
	})

	t.Run("clear stream", func(t *testing.T) {
		req := dto.UpdateClassRequest{Stream: strp("")}
		m, err := svc.Update(ctx, school.SchoolID, a.ID, req)
		require.NoError(t, err)
		assert.Equal(t, "JSS 1", m.ClassDisplayName)
		assert.Nil(t, m.ClassStream)
	})

	t.Run("set and clear form teacher", func(t *testing.T) {
		tm := newTeacher(t, db, school.SchoolID, "TCHABCD001")
		id := tm.TeacherID.String()
		m, err := svc.Update(ctx, school.SchoolID, a.ID, dto.UpdateClassRequest{FormTeacherID: &id})
		require.NoError(t, err)
		require.NotNil(t, m.ClassFormTeacherID)

		m, err = svc.Update(ctx, school.SchoolID, a.ID, dto.UpdateClassRequest{FormTeacherID: strp("")})
		require.NoError(t, err)
		assert.Nil(t, m.ClassFormTeacherID)
	})

	t.Run("class of another school", func(t *testing.T) {
		_, err := svc.Update(ctx, uuid.New(), a.ID, dto.UpdateClassRequest{})
		requireStatus(t, err, fiber.StatusNotFound)
	})
}

func TestListAndDetail(t *testing.T) {
	svc, db, school := setup(t)
	ctx := context.Background()
	tm := newTeacher(t, db, school.SchoolID, "TCHABCD001")

	a := createClass(t, svc, school.SchoolID, "JSS 1", strp("A"))
	b := createClass(t, svc, school.SchoolID, "JSS 2", nil)
	_, _, err := svc.AssignFormTeacher(ctx, school.SchoolID, a.ID, tm.TeacherID)
	require.NoError(t, err)

	for i, active := range []bool{true, true, false} {
		require.NoError(t, db.Create(&studentModel.StudentModel{
			StudentSchoolID:  school.SchoolID,
			StudentCode:      "STUTEST00" + string(rune('1'+i)),
			StudentFirstName: "Kid",
			StudentLastName:  string(rune('C' - i)),
			StudentClassID:   &a.ID,
			StudentIsActive:  active,
		}).Error)
	}
	require.NoError(t, db.Create(&subjectModel.SubjectModel{
		SubjectSchoolID:  school.SchoolID,
		SubjectClassID:   a.ID,
		SubjectTeacherID: tm.TeacherID,
		SubjectName:      "English",
		SubjectIsActive:  true,
	}).Error)

	rows, total, err := svc.List(ctx, school.SchoolID, ListClassesFilter{ActiveOnly: true}, helper.Paging{Page: 1, PerPage: 20, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, a.ID, rows[0].ID)
	require.NotNil(t, rows[0].StudentCount)
	assert.EqualValues(t, 2, *rows[0].StudentCount)
	assert.EqualValues(t, 1, *rows[0].SubjectCount)
	require.NotNil(t, rows[0].FormTeacher)
	assert.Equal(t, "Grace Ade", rows[0].FormTeacher.FullName)
	assert.Equal(t, b.ID, rows[1].ID)
	assert.EqualValues(t, 0, *rows[1].StudentCount)

	detail, err := svc.Detail(ctx, school.SchoolID, a.ID)
	require.NoError(t, err)
	require.Len(t, detail.Students, 2)
	// ordered by last name
	assert.Equal(t, "B", detail.Students[0].LastName)
	require.Len(t, detail.Subjects, 1)
	require.NotNil(t, detail.Subjects[0].Teacher)
	assert.Equal(t, tm.TeacherID, detail.Subjects[0].Teacher.ID)
}

func TestAssignFormTeacherOtherSchool(t *testing.T) {
	svc, db, school := setup(t)
	a := createClass(t, svc, school.SchoolID, "JSS 1", nil)
	stranger := newTeacher(t, db, uuid.New(), "TCHZZZZ001")

	_, _, err := svc.AssignFormTeacher(context.Background(), school.SchoolID, a.ID, stranger.TeacherID)
	requireStatus(t, err, fiber.StatusNotFound)
}

func TestDisplayName(t *testing.T) {
	out, err := DisplayName(" SS 2 ", strp(" Science "))
	require.NoError(t, err)
	assert.Equal(t, "SS 2 Science", out.DisplayName)

	out, err = DisplayName("Primary 4", strp(""))
	require.NoError(t, err)
	assert.Equal(t, "Primary 4", out.DisplayName)
	assert.Nil(t, out.Stream)

	_, err = DisplayName("  ", nil)
	requireStatus(t, err, fiber.StatusBadRequest)
}
