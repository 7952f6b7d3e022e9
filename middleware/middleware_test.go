package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus_essentials/models"
	apperr "campus_essentials/pkg/errors"
	"campus_essentials/pkg/logger"
	"campus_essentials/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.Discard())})
	app.Use(requestid.New())
	return app
}

func decodeError(t *testing.T, resp *http.Response) models.APIError {
	t.Helper()
	defer resp.Body.Close()
	var body models.APIError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestErrorHandler_MapsCodesToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{apperr.InvalidArg("bad price"), 400, "INVALID_ARGUMENT", "bad price"},
		{apperr.Unauthorized("login"), 401, "UNAUTHENTICATED", "login"},
		{apperr.Forbidden("not yours"), 403, "PERMISSION_DENIED", "not yours"},
		{apperr.NotFound("gone"), 404, "NOT_FOUND", "gone"},
		{apperr.AlreadyExists("taken"), 409, "ALREADY_EXISTS", "taken"},
		{apperr.Upstream("provider down", nil), 502, "UPSTREAM_FAILURE", "provider down"},
		{apperr.FromContext("op", context.DeadlineExceeded), 504, "DEADLINE_EXCEEDED", "request timed out"},
		{apperr.Internal("db exploded", pkgerrors.New("boom")), 500, "INTERNAL", "internal server error"},
		{pkgerrors.New("raw"), 500, "INTERNAL", "internal server error"},
		{fiber.ErrUnprocessableEntity, 422, "INVALID_ARGUMENT", "Unprocessable Entity"},
	}

	for _, tc := range cases {
		t.Run(tc.code+"/"+tc.msg, func(t *testing.T) {
			app := newApp()
			app.Get("/", func(*fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			body := decodeError(t, resp)
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.msg, body.Error)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestNotFound(t *testing.T) {
	app := newApp()
	app.Use(NotFound)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
}

func TestTimeout_SetsDeadline(t *testing.T) {
	app := newApp()
	app.Use(Timeout(time.Second))
	app.Get("/", func(c *fiber.Ctx) error {
		deadline, ok := c.UserContext().Deadline()
		if !ok || time.Until(deadline) > time.Second {
			return fiber.ErrTeapot
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRequireAuth(t *testing.T) {
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	valid, err := tokens.Issue(12, models.RoleUser, "a@campus.test")
	require.NoError(t, err)

	expired, err := utils.NewTokenManager("test-secret", time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		Issue(12, models.RoleUser, "a@campus.test")
	require.NoError(t, err)

	app := newApp()
	app.Get("/me", RequireAuth(tokens), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": UserID(c), "role": Role(c), "email": Email(c)})
	})
	app.Get("/ws", RequireAuth(tokens, FromQuery, FromCookie, FromHeader), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/admin", RequireAuth(tokens), RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+valid)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			ID    uint   `json:"id"`
			Role  string `json:"role"`
			Email string `json:"email"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.EqualValues(t, 12, body.ID)
		assert.Equal(t, models.RoleUser, body.Role)
		assert.Equal(t, "a@campus.test", body.Email)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: valid})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("query only where allowed", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws?token="+valid, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/me?token="+valid, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing, expired and forged", func(t *testing.T) {
		forged, err := utils.NewTokenManager("other-secret", time.Hour).Issue(12, models.RoleAdmin, "")
		require.NoError(t, err)

		for _, token := range []string{"", expired, forged, "garbage"} {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "UNAUTHENTICATED", decodeError(t, resp).Code)
		}
	})

	t.Run("role gate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+valid)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		admin, err := tokens.Issue(1, models.RoleAdmin, "admin@campus.test")
		require.NoError(t, err)
		req = httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+admin)
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}
