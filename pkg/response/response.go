// Package response writes the JSON envelope shared by every API endpoint.
package response

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope {success, data, message, warnings, steps}.
type Envelope struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Message  string      `json:"message,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
	Steps    interface{} `json:"steps,omitempty"`
	Errors   interface{} `json:"errors,omitempty"`
}

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return SuccessWithCode(c, fiber.StatusOK, message, data)
}

func SuccessWithCode(c *fiber.Ctx, code int, message string, data interface{}) error {
	return c.Status(code).JSON(Envelope{Success: true, Message: message, Data: data})
}

// WithReport answers a cascading operation: data plus per-step outcome and warnings.
func WithReport(c *fiber.Ctx, message string, data interface{}, warnings []string, steps interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Success:  true,
		Message:  message,
		Data:     data,
		Warnings: warnings,
		Steps:    steps,
	})
}

func Error(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(Envelope{Success: false, Message: message})
}

func ErrorWithDetails(c *fiber.Ctx, code int, message string, details interface{}) error {
	return c.Status(code).JSON(Envelope{Success: false, Message: message, Errors: details})
}
