package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/databases/testdb"
	"schoolhub_backend/internals/features/users/auth/dto"
	authModel "schoolhub_backend/internals/features/users/auth/model"
	authRepo "schoolhub_backend/internals/features/users/auth/repository"
	userModel "schoolhub_backend/internals/features/users/user/model"
)

const testSecret = "test-secret"

type stubGoogle struct {
	id  *GoogleIdentity
	err error
}

func (s stubGoogle) Verify(string) (*GoogleIdentity, error) { return s.id, s.err }

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return &AuthService{
		DB:     testdb.Open(t),
		Secret: testSecret,
		TTL:    time.Hour,
		Google: stubGoogle{err: errors.New("not configured")},
	}
}

func requireStatus(t *testing.T, err error, code int) {
	t.Helper()
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, code, fe.Code, fe.Message)
}

func register(t *testing.T, s *AuthService, email, password string) *userModel.UserModel {
	t.Helper()
	u, err := s.Register(context.Background(), dto.RegisterRequest{
		Email: email, Password: password, FirstName: "Ada", LastName: "Obi",
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()

	u := register(t, s, "ada@school.test", "secret1")
	assert.Equal(t, "user", u.Role)
	assert.Equal(t, userModel.UserStatusActive, u.Status)
	assert.NotNil(t, u.VerifiedAt)
	assert.NotEqual(t, "secret1", u.Password)

	_, err := s.Register(ctx, dto.RegisterRequest{Email: "ada@school.test", Password: "secret1", FirstName: "A", LastName: "B"})
	requireStatus(t, err, fiber.StatusConflict)

	_, err = s.Register(ctx, dto.RegisterRequest{Email: "short@school.test", Password: "abc", FirstName: "A", LastName: "B"})
	requireStatus(t, err, fiber.StatusBadRequest)
}

func TestLogin(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()
	u := register(t, s, "ada@school.test", "secret1")

	out, err := s.Login(ctx, dto.LoginRequest{Email: "ada@school.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, u.ID, out.User.ID)

	claims, err := ParseAccessToken(out.AccessToken, testSecret, time.Now())
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "user", claims.Role)
	assert.Nil(t, claims.SchoolID)

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.Login(ctx, dto.LoginRequest{Email: "ada@school.test", Password: "nope"})
		requireStatus(t, err, fiber.StatusUnauthorized)
	})
	t.Run("unknown email", func(t *testing.T) {
		_, err := s.Login(ctx, dto.LoginRequest{Email: "ghost@school.test", Password: "secret1"})
		requireStatus(t, err, fiber.StatusUnauthorized)
	})
	t.Run("suspended", func(t *testing.T) {
		require.NoError(t, s.DB.Model(&userModel.UserModel{}).Where("id = ?", u.ID).
			Update("status", userModel.UserStatusSuspended).Error)
		_, err := s.Login(ctx, dto.LoginRequest{Email: "ada@school.test", Password: "secret1"})
		requireStatus(t, err, fiber.StatusForbidden)
	})
}

func TestLoginGoogle(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()

	_, err := s.LoginGoogle(ctx, "bad")
	requireStatus(t, err, fiber.StatusUnauthorized)

	s.Google = stubGoogle{id: &GoogleIdentity{Subject: "g-1", Email: "new@school.test", Name: "Chidi Okafor Eze"}}
	out, err := s.LoginGoogle(ctx, "token")
	require.NoError(t, err)
	created, err := authRepo.FindUserByID(s.DB, out.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chidi", created.FirstName)
	assert.Equal(t, "Okafor Eze", created.LastName)
	require.NotNil(t, created.GoogleID)
	assert.Equal(t, "g-1", *created.GoogleID)

	// an existing password account is linked by email, not duplicated
	existing := register(t, s, "ada@school.test", "secret1")
	s.Google = stubGoogle{id: &GoogleIdentity{Subject: "g-2", Email: "ada@school.test"}}
	out, err = s.LoginGoogle(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, out.User.ID)

	var n int64
	require.NoError(t, s.DB.Model(&userModel.UserModel{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestLogoutBlacklistsToken(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()
	register(t, s, "ada@school.test", "secret1")
	out, err := s.Login(ctx, dto.LoginRequest{Email: "ada@school.test", Password: "secret1"})
	require.NoError(t, err)

	revoked, err := s.IsRevoked(ctx, out.AccessToken)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Logout(ctx, out.AccessToken))
	require.NoError(t, s.Logout(ctx, out.AccessToken))

	revoked, err = s.IsRevoked(ctx, out.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	var n int64
	require.NoError(t, s.DB.Model(&authModel.TokenBlacklistModel{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	requireStatus(t, s.Logout(ctx, ""), fiber.StatusUnauthorized)
	requireStatus(t, s.Logout(ctx, "garbage"), fiber.StatusUnauthorized)

	removed, err := authRepo.CleanupExpiredBlacklist(s.DB, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}

func TestChangePassword(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()
	u := register(t, s, "ada@school.test", "secret1")

	err := s.ChangePassword(ctx, u.ID, dto.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "secret2"})
	requireStatus(t, err, fiber.StatusUnauthorized)

	err = s.ChangePassword(ctx, u.ID, dto.ChangePasswordRequest{OldPassword: "secret1", NewPassword: "abc"})
	requireStatus(t, err, fiber.StatusBadRequest)

	require.NoError(t, s.ChangePassword(ctx, u.ID, dto.ChangePasswordRequest{OldPassword: "secret1", NewPassword: "secret2"}))
	_, err = s.Login(ctx, dto.LoginRequest{Email: "ada@school.test", Password: "secret2"})
	require.NoError(t, err)

	err = s.ChangePassword(ctx, uuid.New(), dto.ChangePasswordRequest{OldPassword: "x", NewPassword: "secret3"})
	requireStatus(t, err, fiber.StatusNotFound)
}

func TestParseAccessToken(t *testing.T) {
	sid := uuid.New()
	u := &userModel.UserModel{ID: uuid.New(), Email: "t@school.test", Role: "teacher", SchoolID: &sid}
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	tok, exp, err := IssueAccessToken(u, testSecret, now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := ParseAccessToken(tok, testSecret, now.Add(time.Hour+ExpirySkew-time.Second))
	require.NoError(t, err)
	require.NotNil(t, claims.SchoolID)
	assert.Equal(t, sid, *claims.SchoolID)
	assert.Equal(t, "teacher", claims.Role)

	_, err = ParseAccessToken(tok, testSecret, now.Add(time.Hour+ExpirySkew+time.Second))
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = ParseAccessToken(tok, "other-secret", now)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, _, err = IssueAccessToken(u, " ", now, time.Hour)
	assert.Error(t, err)

	// tokens signed with another algorithm are rejected
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id": u.ID.String(), "exp": now.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseAccessToken(none, testSecret, now)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
