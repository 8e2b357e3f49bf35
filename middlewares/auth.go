package middlewares

import (
	"errors"
	"strings"

	"idcard.link/configs/configslog"
	"idcard.link/pkg/response"
	"idcard.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionLocalsKey fiber Locals key holding *services.Session.
const SessionLocalsKey = "session"

// CurrentSession returns the session set by one of the auth middlewares, or nil.
func CurrentSession(c *fiber.Ctx) *services.Session {
	s, _ := c.Locals(SessionLocalsKey).(*services.Session)
	return s
}

// Auth builds the request gates around one auth service and cookie name.
type Auth struct {
	service    services.IAuthService
	cookieName string
}

func NewAuth(service services.IAuthService, cookieName string) *Auth {
	return &Auth{service: service, cookieName: cookieName}
}

func (a *Auth) token(c *fiber.Ctx) string {
	if t := c.Cookies(a.cookieName); t != "" {
		return t
	}
	if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func (a *Auth) resolve(c *fiber.Ctx) (*services.Session, error) {
	session, err := a.service.Verify(c.UserContext(), a.token(c))
	if err != nil {
		return nil, err
	}
	c.Locals(SessionLocalsKey, session)
	c.SetUserContext(services.ContextWithSession(c.UserContext(), session))
	return session, nil
}

// API rejects requests without a valid session with 401 JSON.
func (a *Auth) API(c *fiber.Ctx) error {
	if _, err := a.resolve(c); err != nil {
		if errors.Is(err, services.ErrAuthInternal) {
			configslog.Log.Error("API auth check failed", zap.String("path", c.Path()), zap.Error(err))
			return response.Error(c, fiber.StatusInternalServerError, "Internal server error")
		}
		return response.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	return c.Next()
}

// Page redirects visitors without a valid session to /signin.
func (a *Auth) Page(c *fiber.Ctx) error {
	if _, err := a.resolve(c); err != nil {
		a.clearCookie(c)
		return c.Redirect("/signin", fiber.StatusFound)
	}
	return c.Next()
}

// Guest sends signed-in visitors to /home.
func (a *Auth) Guest(c *fiber.Ctx) error {
	if _, err := a.resolve(c); err == nil {
		return c.Redirect("/home", fiber.StatusFound)
	}
	return c.Next()
}

// Optional attaches the session when there is one and never blocks.
func (a *Auth) Optional(c *fiber.Ctx) error {
	_, _ = a.resolve(c)
	return c.Next()
}

func (a *Auth) clearCookie(c *fiber.Ctx) {
	if c.Cookies(a.cookieName) == "" {
		return
	}
	c.ClearCookie(a.cookieName)
}
