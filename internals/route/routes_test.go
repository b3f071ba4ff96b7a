package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/configs"
	"schoolhub_backend/internals/databases/testdb"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/middlewares"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	prev := configs.JWTSecret
	configs.JWTSecret = "route-test-secret"
	t.Cleanup(func() { configs.JWTSecret = prev })

	db := testdb.Open(t)
	metrics, err := middlewares.NewMetrics()
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler})
	app.Use(metrics.Middleware())
	BaseRoutes(app, db, metrics)
	SetupRoutes(app, db)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token, body string) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "OK", out["status"])
	assert.Equal(t, "Connected", out["database"])

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminScopeFlow(t *testing.T) {
	app := newTestApp(t)

	code, _ := call(t, app, "GET", "/api/a/"+uuid.NewString()+"/school", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = call(t, app, "POST", "/api/auth/register", "",
		`{"email":"Owner@School.test","password":"secret1","first_name":"Ngozi","last_name":"Ade"}`)
	require.Equal(t, fiber.StatusCreated, code)

	code, env := call(t, app, "POST", "/api/auth/login", "", `{"email":"owner@school.test","password":"secret1"}`)
	require.Equal(t, fiber.StatusOK, code)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	token := login.AccessToken
	require.NotEmpty(t, token)

	// not a member of any school yet
	code, _ = call(t, app, "GET", "/api/a/"+uuid.NewString()+"/school", token, "")
	assert.Equal(t, fiber.StatusForbidden, code)

	code, env = call(t, app, "POST", "/api/u/schools/create-and-join", token,
		`{"school_name":"Bright Future Academy","school_type":"primary"}`)
	require.Equal(t, fiber.StatusCreated, code, env.Message)
	var created struct {
		School struct {
			ID   uuid.UUID `json:"id"`
			Slug string    `json:"slug"`
		} `json:"school"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	schoolID := created.School.ID.String()

	// membership is read from the database, so the old token works at once
	code, env = call(t, app, "GET", "/api/a/"+schoolID+"/school", token, "")
	assert.Equal(t, fiber.StatusOK, code, env.Message)

	code, _ = call(t, app, "GET", "/api/a/"+uuid.NewString()+"/school", token, "")
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = call(t, app, "GET", "/api/a/not-a-uuid/school", token, "")
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = call(t, app, "GET", "/api/public/schools/slug/"+created.School.Slug, "", "")
	assert.Equal(t, fiber.StatusOK, code)

	// school owners are not platform admins
	code, _ = call(t, app, "GET", "/api/o/users", token, "")
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = call(t, app, "POST", "/api/auth/logout", token, "")
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = call(t, app, "GET", "/api/auth/me", token, "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestSubscriptionNotificationIsPublic(t *testing.T) {
	prev := configs.MidtransServerKey
	configs.MidtransServerKey = ""
	t.Cleanup(func() { configs.MidtransServerKey = prev })
	app := newTestApp(t)

	// reachable without a token; with no server key the gateway is disabled
	code, _ := call(t, app, "POST", "/api/public/subscriptions/notification", "",
		`{"order_id":"SUB-1","status_code":"200","gross_amount":"1000.00","transaction_status":"settlement"}`)
	assert.Equal(t, fiber.StatusServiceUnavailable, code)
}
