package routes

import (
	"errors"
	"net/http"
	"strings"

	"idcard.link/configs"
	"idcard.link/configs/configslog"
	"idcard.link/pkg/response"
	"idcard.link/views"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"
)

// uploads carry base64 photos
const bodyLimit = 12 * 1024 * 1024

// NewApp creates the fiber app with the embedded templates and the shared error handler.
func NewApp(cfg *configs.AppConfig) *fiber.App {
	engine := html.NewFileSystem(http.FS(views.FS), ".html")
	return fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		Views:        engine,
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api")
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		configslog.Log.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err))
		message = "Internal server error"
	}

	if isAPI(c) {
		return response.Error(c, code, message)
	}
	view, title := "errors/500", message
	if code == fiber.StatusNotFound {
		view, title = "errors/404", "Page not found"
	}
	if rerr := c.Status(code).Render(view, fiber.Map{"Title": title, "Code": code}, "layouts/error"); rerr != nil {
		configslog.Log.Error("Error page render failed", zap.Error(rerr))
		return c.Status(code).SendString(title)
	}
	return nil
}

func notFoundHandler(c *fiber.Ctx) error {
	if isAPI(c) || c.Accepts("application/json", "text/html") == "application/json" {
		return response.Error(c, fiber.StatusNotFound, "Resource not found")
	}
	return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{"Title": "Page not found"}, "layouts/error")
}
