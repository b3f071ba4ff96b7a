package helper

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"pgx", &pgconn.PgError{Code: "23505"}, true},
		{"pgx fk", &pgconn.PgError{Code: "23503"}, false},
		{"pq", &pq.Error{Code: "23505"}, true},
		{"sqlite", errors.New("constraint failed: UNIQUE constraint failed: schools.school_slug (2067)"), true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsUniqueViolation(tc.err))
		})
	}
}

func renderErr(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return ToJSONErr(c, err) })

	resp, rerr := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, rerr)
	body, _ := io.ReadAll(resp.Body)

	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestToJSONErr(t *testing.T) {
	t.Run("taxonomy", func(t *testing.T) {
		cases := []struct {
			err  error
			code int
			tag  string
		}{
			{ErrValidation("name is required"), 400, "BAD_REQUEST"},
			{ErrNotFound("School not found"), 404, "NOT_FOUND"},
			{ErrConflict("slug taken"), 409, "CONFLICT"},
			{ErrForbidden("nope"), 403, "FORBIDDEN"},
			{ErrUnauthorized("login"), 401, "UNAUTHORIZED"},
		}
		for _, tc := range cases {
			status, out := renderErr(t, tc.err)
			assert.Equal(t, tc.code, status)
			assert.Equal(t, tc.tag, out.ErrorCode)
			assert.False(t, out.Success)
		}
	})

	t.Run("field errors", func(t *testing.T) {
		fe := &FieldErrors{}
		fe.Add("name", "name is required")
		fe.Add("school_type", "school_type must be one of: primary, junior, senior, combined")

		status, out := renderErr(t, fe)
		assert.Equal(t, 400, status)
		assert.Equal(t, "name is required", out.Message)
		assert.Len(t, out.Errors, 2)
	})

	t.Run("named field error", func(t *testing.T) {
		status, out := renderErr(t, fmt.Errorf("update: %w", namedErr{}))
		assert.Equal(t, 400, status)
		assert.Equal(t, "VALIDATION_ERROR", out.ErrorCode)
		assert.Equal(t, []string{"bad stage"}, out.Errors["setup_stage"])
		assert.Equal(t, "bad stage", out.Message)
	})

	t.Run("storage error does not leak", func(t *testing.T) {
		status, out := renderErr(t, ErrStorage("create school", errors.New("pq: password authentication failed")))
		assert.Equal(t, 500, status)
		assert.Equal(t, "Internal server error", out.Message)
	})

	t.Run("plain error", func(t *testing.T) {
		status, out := renderErr(t, errors.New("boom"))
		assert.Equal(t, 500, status)
		assert.Equal(t, "INTERNAL_ERROR", out.ErrorCode)
		assert.NotContains(t, out.Message, "boom")
	})
}

func TestFieldErrorsOrNil(t *testing.T) {
	fe := &FieldErrors{}
	assert.NoError(t, fe.OrNil())
	fe.Add("x", "x is invalid")
	assert.Error(t, fe.OrNil())
}

func TestValidateStruct(t *testing.T) {
	type req struct {
		Email string `json:"email" validate:"required,email"`
		Kind  string `json:"kind" validate:"omitempty,oneof=a b"`
	}

	assert.NoError(t, ValidateStruct(req{Email: "a@b.co"}))

	err := ValidateStruct(req{Kind: "c"})
	var fe *FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, []string{"email is required"}, fe.Fields["email"])
	assert.Equal(t, []string{"kind must be one of: a, b"}, fe.Fields["kind"])
}

type namedErr struct{}

func (namedErr) Error() string     { return "bad stage" }
func (namedErr) FieldName() string { return "setup_stage" }
