package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"idcard.link/models"
	"idcard.link/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	services.IAuthService
	valid string
}

func (s stubAuth) Verify(ctx context.Context, token string) (*services.Session, error) {
	if token == s.valid {
		return &services.Session{UserID: 7, Username: "encoder", TokenID: "jti"}, nil
	}
	return nil, services.ErrSessionInvalid
}

func newGateApp() *fiber.App {
	auth := NewAuth(stubAuth{valid: "good"}, "token")
	app := fiber.New()
	app.Get("/api/me", auth.API, func(c *fiber.Ctx) error {
		s := CurrentSession(c)
		if s == nil || models.UserIDFromContext(c.UserContext()) != s.UserID {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(s.Username)
	})
	app.Get("/home", auth.Page, func(c *fiber.Ctx) error { return c.SendString("home") })
	app.Get("/signin", auth.Guest, func(c *fiber.Ctx) error { return c.SendString("signin") })
	return app
}

func TestAuthGates(t *testing.T) {
	app := newGateApp()

	cases := []struct {
		name     string
		path     string
		cookie   string
		bearer   string
		status   int
		location string
	}{
		{name: "api without token", path: "/api/me", status: http.StatusUnauthorized},
		{name: "api with cookie", path: "/api/me", cookie: "good", status: http.StatusOK},
		{name: "api with bearer", path: "/api/me", bearer: "good", status: http.StatusOK},
		{name: "api with bad token", path: "/api/me", cookie: "bad", status: http.StatusUnauthorized},
		{name: "page redirects", path: "/home", status: http.StatusFound, location: "/signin"},
		{name: "page with session", path: "/home", cookie: "good", status: http.StatusOK},
		{name: "guest page", path: "/signin", status: http.StatusOK},
		{name: "guest page signed in", path: "/signin", cookie: "good", status: http.StatusFound, location: "/home"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tc.cookie})
			}
			if tc.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tc.bearer)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
			if tc.location != "" {
				require.Equal(t, tc.location, resp.Header.Get("Location"))
			}
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	app := fiber.New()
	app.Use(RequestTimeout(50 * time.Millisecond))
	app.Get("/", func(c *fiber.Ctx) error {
		deadline, ok := c.UserContext().Deadline()
		if !ok || time.Until(deadline) > 50*time.Millisecond {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}
