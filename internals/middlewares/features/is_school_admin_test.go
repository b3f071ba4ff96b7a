package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/databases/testdb"
	"schoolhub_backend/internals/features/schools/schools/dto"
	schoolService "schoolhub_backend/internals/features/schools/schools/service"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type caller struct {
	role     string
	schoolID string
}

func TestIsSchoolAdmin(t *testing.T) {
	db := testdb.Open(t)
	sc, err := schoolService.NewSchoolService(db).Create(context.Background(),
		dto.CreateSchoolRequest{Name: "Greenfield College", SchoolType: "senior"})
	require.NoError(t, err)
	mine := sc.SchoolID.String()
	other := uuid.NewString()

	tests := []struct {
		name   string
		who    caller
		target string
		header string
		want   int
	}{
		{"owner of school", caller{"owner", mine}, mine, "", fiber.StatusOK},
		{"admin of school", caller{"admin", mine}, mine, "", fiber.StatusOK},
		{"teacher of school", caller{"teacher", mine}, mine, "", fiber.StatusForbidden},
		{"owner of another school", caller{"owner", other}, mine, "", fiber.StatusForbidden},
		{"platform admin", caller{"admin", ""}, mine, "", fiber.StatusOK},
		{"platform admin unknown school", caller{"admin", ""}, other, "", fiber.StatusNotFound},
		{"bad uuid", caller{"owner", mine}, "nope", "", fiber.StatusBadRequest},
		{"header fallback", caller{"owner", mine}, "", mine, fiber.StatusOK},
		{"missing school", caller{"owner", mine}, "", "", fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(func(c *fiber.Ctx) error {
				c.Locals(helperAuth.LocUserID, uuid.NewString())
				c.Locals(helperAuth.LocRole, tt.who.role)
				if tt.who.schoolID != "" {
					c.Locals(helperAuth.LocSchoolID, tt.who.schoolID)
				}
				return c.Next()
			})
			handler := func(c *fiber.Ctx) error {
				id, err := helperAuth.GetScopedSchoolID(c)
				if err != nil {
					return err
				}
				return c.SendString(id.String())
			}
			app.Get("/a/:school_id/ping", IsSchoolAdmin(db), handler)
			app.Get("/ping", IsSchoolAdmin(db), handler)

			path := "/ping"
			if tt.target != "" {
				path = "/a/" + tt.target + "/ping"
			}
			req := httptest.NewRequest("GET", path, nil)
			if tt.header != "" {
				req.Header.Set("X-School-ID", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
