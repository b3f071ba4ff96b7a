package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	"schoolhub_backend/internals/databases/testdb"
	"schoolhub_backend/internals/features/schools/schools/dto"
	"schoolhub_backend/internals/features/schools/schools/model"
	teacherModel "schoolhub_backend/internals/features/schools/teachers/model"
	userModel "schoolhub_backend/internals/features/users/user/model"
	helper "schoolhub_backend/internals/helpers"
)

type fixedRand int

func (r fixedRand) IntN(n int) int { return int(r) % n }

// stuckRand repeats v for the first `stuck` calls, then counts upwards.
type stuckRand struct {
	v, stuck, calls int
}

func (r *stuckRand) IntN(n int) int {
	r.calls++
	if r.calls <= r.stuck {
		return r.v % n
	}
	return r.calls % n
}

func newTestService(t *testing.T) (*SchoolService, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t)
	svc := NewSchoolService(db)
	svc.Rand = fixedRand(7)
	return svc, db
}

func newUser(t *testing.T, db *gorm.DB, email string) *userModel.UserModel {
	t.Helper()
	u := &userModel.UserModel{FirstName: "Ada", LastName: "Obi", Email: email, Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func pagingAll() helper.Paging { return helper.Paging{Page: 1, PerPage: 100, Limit: 100} }

func requireStatus(t *testing.T, err error, code int) {
	t.Helper()
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, code, fe.Code, fe.Message)
}

func createSchool(t *testing.T, svc *SchoolService, name string, typ string) *model.SchoolModel {
	t.Helper()
	m, err := svc.Create(context.Background(), dto.CreateSchoolRequest{Name: name, SchoolType: typ})
	require.NoError(t, err)
	return m
}

func TestCreateSchool(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	m := createSchool(t, svc, "Echo High", "senior")
	assert.Equal(t, "echo-high", m.SchoolSlug)
	assert.Equal(t, "TCH-ECH007-HHH", m.SchoolTeacherRegistrationCode)
	assert.Equal(t, "STU-ECH007-HHH", m.SchoolStudentRegistrationCode)
	assert.Equal(t, model.SubscriptionTrial, m.SchoolSubscriptionStatus)
	require.NotNil(t, m.SchoolTrialEndsAt)

	var stored model.SchoolModel
	require.NoError(t, db.First(&stored, "school_id = ?", m.SchoolID).Error)
	ac, err := stored.AcademicConfig()
	require.NoError(t, err)
	assert.Equal(t, model.GradingWAEC, ac.GradingSystem)

	t.Run("duplicate slug", func(t *testing.T) {
		_, err := svc.Create(ctx, dto.CreateSchoolRequest{Name: "Echo High", SchoolType: "senior"})
		requireStatus(t, err, fiber.StatusConflict)
	})

	t.Run("single letter name", func(t *testing.T) {
		q, err := svc.Create(ctx, dto.CreateSchoolRequest{Name: "Q", SchoolType: "primary"})
		require.NoError(t, err)
		assert.Equal(t, "q", q.SchoolSlug)
		assert.Equal(t, "TCH-QXX007-HHH", q.SchoolTeacherRegistrationCode)
	})

	t.Run("invalid slug", func(t *testing.T) {
		bad := "Bad Slug!"
		_, err := svc.Create(ctx, dto.CreateSchoolRequest{Name: "Other", SchoolType: "primary", Slug: &bad})
		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "slug", ve.Field)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := svc.Create(ctx, dto.CreateSchoolRequest{Name: "Other", SchoolType: "college"})
		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "school_type", ve.Field)
	})

	t.Run("contact fields", func(t *testing.T) {
		email, phone := "info@kings.ng", "0800"
		got, err := svc.Create(ctx, dto.CreateSchoolRequest{
			Name: "Kings College", SchoolType: "combined", ContactEmail: &email, ContactPhone: &phone,
		})
		require.NoError(t, err)
		assert.Equal(t, "kings-college", got.SchoolSlug)
		require.Len(t, got.ContactChannels(), 2)
	})
}

func TestCreateSchoolRetriesCodeCollision(t *testing.T) {
	svc, _ := newTestService(t)
	first := createSchool(t, svc, "Echo High", "senior")

	// Same name code, same random draws for the first pair of codes.
	svc.Rand = &stuckRand{v: 7, stuck: 8}
	second, err := svc.Create(context.Background(), dto.CreateSchoolRequest{Name: "Echo Heights", SchoolType: "junior"})
	require.NoError(t, err)
	assert.NotEqual(t, first.SchoolTeacherRegistrationCode, second.SchoolTeacherRegistrationCode)
	assert.True(t, strings.HasPrefix(second.SchoolTeacherRegistrationCode, "TCH-ECH"))

	t.Run("gives up after max attempts", func(t *testing.T) {
		svc.Rand = fixedRand(7)
		_, err := svc.Create(context.Background(), dto.CreateSchoolRequest{Name: "Echo Hills", SchoolType: "junior"})
		requireStatus(t, err, fiber.StatusConflict)
	})
}

func TestJoinEchoHigh(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	school := createSchool(t, svc, "Echo High", "senior")
	require.True(t, strings.HasPrefix(school.SchoolTeacherRegistrationCode, "TCH-ECH"))

	u := newUser(t, db, "ada@example.com")
	res, err := svc.Join(ctx, u.ID, school.SchoolTeacherRegistrationCode, "teacher")
	require.NoError(t, err)

	wantCode := "TCH" + strings.ToUpper(school.SchoolID.String()[:4]) + "001"
	require.NotNil(t, res.Teacher)
	assert.Equal(t, u.ID, res.Teacher.TeacherID)
	assert.Equal(t, wantCode, res.Teacher.TeacherCode)
	assert.Equal(t, 1, res.School.SchoolTeacherCount)

	var reloaded model.SchoolModel
	require.NoError(t, db.First(&reloaded, "school_id = ?", school.SchoolID).Error)
	assert.Equal(t, 1, reloaded.SchoolTeacherCount)

	var tch teacherModel.TeacherModel
	require.NoError(t, db.First(&tch, "teacher_id = ?", u.ID).Error)
	assert.True(t, tch.TeacherIsActive)
	assert.Equal(t, wantCode, tch.TeacherCode)

	var user userModel.UserModel
	require.NoError(t, db.First(&user, "id = ?", u.ID).Error)
	require.NotNil(t, user.SchoolID)
	assert.Equal(t, school.SchoolID, *user.SchoolID)
	assert.Equal(t, constants.RoleTeacher, user.Role)
	require.NotNil(t, user.RegistrationCodeUsed)

	t.Run("already in a school", func(t *testing.T) {
		_, err := svc.Join(ctx, u.ID, school.SchoolTeacherRegistrationCode, "teacher")
		requireStatus(t, err, fiber.StatusBadRequest)
	})

	t.Run("unknown code", func(t *testing.T) {
		other := newUser(t, db, "bola@example.com")
		_, err := svc.Join(ctx, other.ID, "TCH-NOPE000-AAA", "teacher")
		requireStatus(t, err, fiber.StatusNotFound)
	})

	t.Run("teacher code used as student code", func(t *testing.T) {
		other := newUser(t, db, "chi@example.com")
		_, err := svc.Join(ctx, other.ID, school.SchoolTeacherRegistrationCode, "student")
		requireStatus(t, err, fiber.StatusNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Join(ctx, uuid.New(), school.SchoolTeacherRegistrationCode, "teacher")
		requireStatus(t, err, fiber.StatusNotFound)
	})

	t.Run("bad role type", func(t *testing.T) {
		_, err := svc.Join(ctx, u.ID, school.SchoolTeacherRegistrationCode, "parent")
		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
	})
}

func TestJoinRespectsPlanLimit(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	school := createSchool(t, svc, "Echo High", "senior")

	_, err := svc.Update(ctx, school.SchoolID, dto.UpdateSchoolRequest{
		SubscriptionConfig: map[string]any{"features": map[string]any{"max_students": 1}},
	})
	require.NoError(t, err)

	a := newUser(t, db, "a@example.com")
	b := newUser(t, db, "b@example.com")

	res, err := svc.Join(ctx, a.ID, school.SchoolStudentRegistrationCode, "student")
	require.NoError(t, err)
	require.NotNil(t, res.Student)
	assert.Equal(t, "STU"+strings.ToUpper(school.SchoolID.String()[:4])+"001", res.Student.StudentCode)

	_, err = svc.Join(ctx, b.ID, school.SchoolStudentRegistrationCode, "student")
	requireStatus(t, err, fiber.StatusBadRequest)

	var reloaded model.SchoolModel
	require.NoError(t, db.First(&reloaded, "school_id = ?", school.SchoolID).Error)
	assert.Equal(t, 1, reloaded.SchoolStudentCount)

	var user userModel.UserModel
	require.NoError(t, db.First(&user, "id = ?", b.ID).Error)
	assert.False(t, user.HasSchool())
}

func TestCreateAndJoin(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	createSchool(t, svc, "Echo High", "senior")

	svc.Rand = fixedRand(11)
	u := newUser(t, db, "owner@example.com")
	res, err := svc.CreateAndJoin(ctx, u.ID, dto.CreateAndJoinRequest{SchoolName: "Echo High", SchoolType: "primary"})
	require.NoError(t, err)
	assert.Equal(t, "echo-high-2", res.School.SchoolSlug)
	require.NotNil(t, res.School.SchoolContactEmail)
	assert.Equal(t, "owner@example.com", *res.School.SchoolContactEmail)
	assert.Equal(t, constants.RoleOwner, res.User.Role)

	var user userModel.UserModel
	require.NoError(t, db.First(&user, "id = ?", u.ID).Error)
	assert.Equal(t, constants.RoleOwner, user.Role)
	require.NotNil(t, user.SchoolID)
	assert.Equal(t, res.School.SchoolID, *user.SchoolID)

	_, err = svc.CreateAndJoin(ctx, u.ID, dto.CreateAndJoinRequest{SchoolName: "Another", SchoolType: "primary"})
	requireStatus(t, err, fiber.StatusBadRequest)
}

func TestUpdateSchool(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	school := createSchool(t, svc, "Echo High", "senior")

	motto := "Knowledge is light"
	got, err := svc.Update(ctx, school.SchoolID, dto.UpdateSchoolRequest{
		Motto:              &motto,
		AcademicConfig:     map[string]any{"current_term": 2, "report_footer": "Signed"},
		OperationalDetails: map[string]map[string]any{"transport": {"buses": 3}},
	})
	require.NoError(t, err)
	assert.True(t, got.SchoolSetupCompleted)
	assert.Equal(t, model.StageComplete, got.SchoolSetupStage)

	var stored model.SchoolModel
	require.NoError(t, db.First(&stored, "school_id = ?", school.SchoolID).Error)
	ac, err := stored.AcademicConfig()
	require.NoError(t, err)
	assert.Equal(t, 2, ac.CurrentTerm)
	assert.Equal(t, "Signed", ac.Extra["report_footer"])
	assert.True(t, ac.SetupCompleted)
	require.NotNil(t, stored.SchoolMotto)
	assert.Equal(t, motto, *stored.SchoolMotto)
	assert.Contains(t, stored.SchoolOperationalDetails, "transport")

	t.Run("invalid stage leaves row untouched", func(t *testing.T) {
		stage := "launch"
		phone := "0900"
		_, err := svc.Update(ctx, school.SchoolID, dto.UpdateSchoolRequest{ContactPhone: &phone, SetupStage: &stage})
		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "setup_stage", ve.Field)

		var again model.SchoolModel
		require.NoError(t, db.First(&again, "school_id = ?", school.SchoolID).Error)
		assert.Nil(t, again.SchoolContactPhone)
	})

	t.Run("config type error", func(t *testing.T) {
		_, err := svc.Update(ctx, school.SchoolID, dto.UpdateSchoolRequest{
			SubscriptionConfig: map[string]any{"trial_days": "thirty"},
		})
		var ce *model.ConfigTypeError
		require.ErrorAs(t, err, &ce)
	})

	t.Run("missing school", func(t *testing.T) {
		_, err := svc.Update(ctx, uuid.New(), dto.UpdateSchoolRequest{})
		requireStatus(t, err, fiber.StatusNotFound)
	})
}

func TestRegenerateCodes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	school := createSchool(t, svc, "Echo High", "senior")

	svc.Rand = fixedRand(3)
	out, err := svc.RegenerateCodes(ctx, school.SchoolID)
	require.NoError(t, err)
	assert.Equal(t, "TCH-ECH003-DDD", out.TeacherCode)
	assert.Equal(t, "STU-ECH003-DDD", out.StudentCode)

	got, err := svc.Get(ctx, school.SchoolID)
	require.NoError(t, err)
	assert.Equal(t, out.TeacherCode, got.SchoolTeacherRegistrationCode)
}

func TestSweepExpiredTrials(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	stale := createSchool(t, svc, "Old Trial", "primary")
	fresh := createSchool(t, svc, "New Trial", "primary")

	past := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&model.SchoolModel{}).
		Where("school_id = ?", stale.SchoolID).
		Update("school_trial_ends_at", past).Error)

	n, err := svc.SweepExpiredTrials(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := svc.Get(ctx, stale.SchoolID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionExpired, got.SchoolSubscriptionStatus)

	got, err = svc.Get(ctx, fresh.SchoolID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionTrial, got.SchoolSubscriptionStatus)
}

func TestStatsAndList(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	school := createSchool(t, svc, "Echo High", "senior")
	createSchool(t, svc, "Alpha Primary", "primary")

	u := newUser(t, db, "t@example.com")
	u.Activate(time.Now())
	require.NoError(t, db.Save(u).Error)
	_, err := svc.Join(ctx, u.ID, school.SchoolTeacherRegistrationCode, "teacher")
	require.NoError(t, err)

	st, err := svc.Stats(ctx, school.SchoolID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.TeacherCount)
	assert.Equal(t, int64(1), st.RoleDistribution[constants.RoleTeacher])
	assert.Equal(t, 20, st.SetupProgress)

	rows, total, err := svc.List(ctx, ListSchoolsFilter{Type: "primary", ActiveOnly: true}, pagingAll())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "alpha-primary", rows[0].SchoolSlug)

	rows, _, err = svc.List(ctx, ListSchoolsFilter{Search: "ECHO"}, pagingAll())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	ok, err := svc.SlugAvailable(ctx, "Echo-High")
	require.NoError(t, err)
	assert.False(t, ok)
}
