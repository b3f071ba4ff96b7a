package service

import (
	"context"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	"schoolhub_backend/internals/databases/testdb"
	classModel "schoolhub_backend/internals/features/schools/classes/model"
	schoolDTO "schoolhub_backend/internals/features/schools/schools/dto"
	schoolModel "schoolhub_backend/internals/features/schools/schools/model"
	schoolService "schoolhub_backend/internals/features/schools/schools/service"
	subjectModel "schoolhub_backend/internals/features/schools/subjects/model"
	"schoolhub_backend/internals/features/schools/teachers/dto"
	"schoolhub_backend/internals/features/schools/teachers/model"
	authHelper "schoolhub_backend/internals/features/users/auth/helper"
	userModel "schoolhub_backend/internals/features/users/user/model"
	helper "schoolhub_backend/internals/helpers"
)

func setup(t *testing.T) (*TeacherService, *gorm.DB, *schoolModel.SchoolModel) {
	t.Helper()
	db := testdb.Open(t)
	school, err := schoolService.NewSchoolService(db).Create(context.Background(),
		schoolDTO.CreateSchoolRequest{Name: "Unity College", SchoolType: "senior"})
	require.NoError(t, err)
	return NewTeacherService(db), db, school
}

func requireStatus(t *testing.T, err error, code int) {
	t.Helper()
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, code, fe.Code, fe.Message)
}

func strp(s string) *string { return &s }

func createTeacher(t *testing.T, svc *TeacherService, schoolID uuid.UUID, req dto.CreateTeacherRequest) *CreateTeacherResult {
	t.Helper()
	req.Normalize()
	res, err := svc.Create(context.Background(), schoolID, req)
	require.NoError(t, err)
	return res
}

func TestCreateTeacherWithoutEmail(t *testing.T) {
	svc, db, school := setup(t)

	res := createTeacher(t, svc, school.SchoolID, dto.CreateTeacherRequest{FirstName: "Musa", LastName: "Bello"})
	assert.Nil(t, res.User)
	assert.Nil(t, res.TemporaryPassword)

	want := "TCH" + strings.ToUpper(school.SchoolID.String()[:4]) + "001"
	assert.Equal(t, want, res.Teacher.TeacherCode)
	assert.Equal(t, model.TeacherRoleTeacher, res.Teacher.TeacherRole)
	assert.True(t, res.Teacher.TeacherIsActive)

	var reloaded schoolModel.SchoolModel
	require.NoError(t, db.First(&reloaded, "school_id = ?", school.SchoolID).Error)
	assert.Equal(t, 1, reloaded.SchoolTeacherCount)

	second := createTeacher(t, svc, school.SchoolID, dto.CreateTeacherRequest{FirstName: "Ngozi", LastName: "Eze"})
	assert.True(t, strings.HasSuffix(second.Teacher.TeacherCode, "002"))
}

func TestCreateTeacherWithEmailCreatesAccount(t *testing.T) {
	svc, db, school := setup(t)

	res := createTeacher(t, svc, school.SchoolID, dto.CreateTeacherRequest{
		FirstName: "Musa", LastName: "Bello", Email: strp("  Musa@Unity.ng "),
	})
	require.NotNil(t, res.User)
	require.NotNil(t, res.TemporaryPassword)
	assert.Len(t, *res.TemporaryPassword, temporaryPasswordLength)

	var u userModel.UserModel
	require.NoError(t, db.First(&u, "id = ?", res.Teacher.TeacherID).Error)
	assert.Equal(t, "musa@unity.ng", u.Email)
	assert.Equal(t, constants.RoleTeacher, u.Role)
	assert.Equal(t, userModel.UserStatusActive, u.Status)
	require.NotNil(t, u.SchoolID)
	assert.Equal(t, school.SchoolID, *u.SchoolID)
	assert.True(t, authHelper.CheckPassword(u.Password, *res.TemporaryPassword))

	t.Run("email already registered", func(t *testing.T) {
		req := dto.CreateTeacherRequest{FirstName: "Other", LastName: "Person", Email: strp("musa@unity.ng")}
		req.Normalize()
		_, err := svc.Create(context.Background(), school.SchoolID, req)
		requireStatus(t, err, fiber.StatusConflict)

		// the failed insert must not consume a seat
		var reloaded schoolModel.SchoolModel
		require.NoError(t, db.First(&reloaded, "school_id = ?", school.SchoolID).Error)
		assert.Equal(t, 1, reloaded.SchoolTeacherCount)
	})
}

func TestCreateTeacherLimit(t *testing.T) {
	svc, db, school := setup(t)
	require.NoError(t, db.Model(&schoolModel.SchoolModel{}).
		Where("school_id = ?", school.SchoolID).
		Update("school_teacher_count", schoolModel.DefaultMaxTeachers).Error)

	req := dto.CreateTeacherRequest{FirstName: "Late", LastName: "Comer"}
	_, err := svc.Create(context.Background(), school.SchoolID, req)
	requireStatus(t, err, fiber.StatusBadRequest)
	assert.Contains(t, err.Error(), "teacher limit")
}

func TestDuplicateStaffNumber(t *testing.T) {
	svc, _, school := setup(t)
	createTeacher(t, svc, school.SchoolID, dto.CreateTeacherRequest{FirstName: "A", LastName: "B", StaffNumber: strp("ST-1")})

	req := dto.CreateTeacherRequest{FirstName: "C", LastName: "D", StaffNumber: strp("ST-1")}
	req.Normalize()
	_, err := svc.Create(context.Background(), school.SchoolID, req)
	requireStatus(t, err, fiber.StatusConflict)
}

func TestListTeachers(t *testing.T) {
	svc, _, school := setup(t)
	ctx := context.Background()

	createTeacher(t, svc, school.SchoolID, dto.CreateTeacherRequest{FirstName: "Amina", LastName: "Yusuf", Role: "head_teacher"})
	createTeacher(t, svc, school.SchoolID, dto.CreateTeacherRequest{FirstName: "Chidi", LastName: "Okafor"})
	createTeacher(t, svc, school.SchoolID, dto.CreateTeacherRequest{FirstName: "Tunde", LastName: "Ade", EmploymentStatus: "resigned"})

	all := helper.Paging{Page: 1, PerPage: 20, Limit: 20}

	rows, total, err := svc.List(ctx, school.SchoolID, ListTeachersFilter{ActiveOnly: true}, all)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	_, total, err = svc.List(ctx, school.SchoolID, ListTeachersFilter{}, all)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	rows, _, err = svc.List(ctx, school.SchoolID, ListTeachersFilter{Role: "HEAD_TEACHER"}, all)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Amina", rows[0].TeacherFirstName)

	rows, _, err = svc.List(ctx, school.SchoolID, ListTeachersFilter{Search: "okaf"}, all)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Chidi", rows[0].TeacherFirstName)

	_, total, err = svc.List(ctx, uuid.New(), ListTeachersFilter{}, all)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGetTeacherOtherSchoolIsNotFound(t *testing.T) {
	svc, _, school := setup(t)
	res := createTeacher(t, svc, school.SchoolID, dto.CreateTeacherRequest{FirstName: "A", LastName: "B"})

	_, err := svc.Get(context.Background(), uuid.New(), res.Teacher.TeacherID)
	requireStatus(t, err, fiber.StatusNotFound)
}

func TestUpdateSuspendsAccount(t *testing.T) {
	svc, db, school := setup(t)
	ctx := context.Background()
	res := createTeacher(t, svc, school.SchoolID, dto.CreateTeacherRequest{FirstName: "A", LastName: "B", Email: strp("a@b.ng")})
	id := res.Teacher.TeacherID

	req := dto.UpdateTeacherRequest{EmploymentStatus: strp("Suspended"), Phone: strp("0803")}
	req.Normalize()
	got, err := svc.Update(ctx, school.SchoolID, id, req)
	require.NoError(t, err)
	assert.False(t, got.TeacherIsActive)
	require.NotNil(t, got.TeacherPhone)

	var u userModel.UserModel
	require.NoError(t, db.First(&u, "id = ?", id).Error)
	assert.Equal(t, userModel.UserStatusSuspended, u.Status)

	got, err = svc.Activate(ctx, school.SchoolID, id)
	require.NoError(t, err)
	assert.True(t, got.TeacherIsActive)
	assert.Equal(t, model.EmploymentActive, got.TeacherEmploymentStatus)
	require.NoError(t, db.First(&u, "id = ?", id).Error)
	assert.Equal(t, userModel.UserStatusActive, u.Status)
}

func TestDetailAndSubjects(t *testing.T) {
	svc, db, school := setup(t)
	ctx := context.Background()
	res := createTeacher(t, svc, school.SchoolID, dto.CreateTeacherRequest{FirstName: "A", LastName: "B"})
	id := res.Teacher.TeacherID

	class := &classModel.ClassModel{
		ClassSchoolID:        school.SchoolID,
		ClassAcademicSession: "2025/2026",
		ClassFormTeacherID:   &id,
		ClassIsActive:        true,
	}
	class.Rename("JSS 1", strp("A"))
	require.NoError(t, db.Create(class).Error)

	for _, s := range []struct {
		name   string
		active bool
	}{{"Mathematics", true}, {"Basic Science", true}, {"Latin", false}} {
		require.NoError(t, db.Create(&subjectModel.SubjectModel{
			SubjectSchoolID:  school.SchoolID,
			SubjectClassID:   class.ClassID,
			SubjectTeacherID: id,
			SubjectName:      s.name,
			SubjectIsActive:  s.active,
		}).Error)
	}

	detail, err := svc.Detail(ctx, school.SchoolID, id)
	require.NoError(t, err)
	assert.Nil(t, detail.UserAccount)
	require.Len(t, detail.FormTeacherOf, 1)
	assert.Equal(t, "JSS 1 A", detail.FormTeacherOf[0].DisplayName)
	assert.Len(t, detail.SubjectsTaught, 3)

	subjects, err := svc.Subjects(ctx, school.SchoolID, id)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "Basic Science", subjects[0].Name)
	require.NotNil(t, subjects[0].Class)
	assert.Equal(t, class.ClassID, subjects[0].Class.ID)
}
