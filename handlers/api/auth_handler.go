package handlers

import (
	"time"

	"idcard.link/middlewares"
	"idcard.link/pkg/response"
	"idcard.link/services"

	"github.com/gofiber/fiber/v2"
)

// CookieOptions session cookie attributes.
type CookieOptions struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	service services.IAuthService
	cookie  CookieOptions
}

func NewAuthHandler(service services.IAuthService, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{service: service, cookie: cookie}
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login POST /api/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	token, session, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return writeError(c, "Login", err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return response.Success(c, "Login successful", session)
}

// Logout POST /api/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.UserContext(), middlewares.CurrentSession(c)); err != nil {
		return writeError(c, "Logout", err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return response.Success(c, "Logged out", nil)
}

// Me GET /api/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return response.Success(c, "", middlewares.CurrentSession(c))
}
