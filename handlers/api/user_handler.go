package handlers

import (
	"idcard.link/models"
	"idcard.link/pkg/response"
	"idcard.link/pkg/validation"
	"idcard.link/services"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	service services.IUserService
}

func NewUserHandler(service services.IUserService) *UserHandler {
	return &UserHandler{service: service}
}

// List GET /api/users
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return writeError(c, "User list", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return response.Success(c, "", users)
}

// Update PUT /api/users?user_id=N
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id := c.QueryInt("user_id", 0)
	if id <= 0 {
		return response.Error(c, fiber.StatusBadRequest, "user_id is required")
	}
	var in services.UpdateUserInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validation.Struct(in); err != nil {
		return response.ErrorWithDetails(c, fiber.StatusBadRequest, "Validation failed", validation.Fields(err))
	}
	user, err := h.service.Update(c.UserContext(), uint(id), in)
	if err != nil {
		return writeError(c, "User update", err)
	}
	return response.Success(c, "User updated", user)
}
