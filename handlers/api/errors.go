package handlers

import (
	"errors"

	"idcard.link/configs/configslog"
	"idcard.link/pkg/response"
	"idcard.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// writeError maps service errors onto status codes. Unknown errors are logged
// and answered with a generic 500.
func writeError(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, services.ErrCardNotFound),
		errors.Is(err, services.ErrAssetNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return response.Error(c, fiber.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrCardInvalidInput),
		errors.Is(err, services.ErrCardDuplicate),
		errors.Is(err, services.ErrCardNoEditForbidden),
		errors.Is(err, services.ErrCardInvalidStatus),
		errors.Is(err, services.ErrSuffixExhausted),
		errors.Is(err, services.ErrAssetInvalidCategory),
		errors.Is(err, services.ErrAssetInvalidName),
		errors.Is(err, services.ErrAssetInvalidImage),
		errors.Is(err, services.ErrUserInvalidInput):
		return response.Error(c, fiber.StatusBadRequest, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUserInactive),
		errors.Is(err, services.ErrSessionInvalid),
		errors.Is(err, services.ErrSessionRevoked):
		return response.Error(c, fiber.StatusUnauthorized, err.Error())
	}

	configslog.Log.Error(op+" failed",
		zap.String("path", c.Path()),
		zap.String("request_id", requestID(c)),
		zap.Error(err))
	return response.Error(c, fiber.StatusInternalServerError, "Internal server error")
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
