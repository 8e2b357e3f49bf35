package routes

import (
	"time"

	"idcard.link/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// SetupRoutes installs the global middleware, the API, the pages and the 404 handler.
func SetupRoutes(app *fiber.App, c *Container) {
	cfg := c.Config

	app.Use(recoverMiddleware.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(compress.New())
	if cfg.CORSOrigin != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigin,
			AllowCredentials: true,
		}))
	}
	app.Use(middlewares.RequestTimeout(cfg.RequestTimeout))

	auth := middlewares.NewAuth(c.Auth, cfg.CookieName)

	registerAPIRoutes(app, c, auth)
	registerPageRoutes(app, c, auth)

	app.Use(notFoundHandler)
}

func loginLimit(max int) []fiber.Handler {
	if max <= 0 {
		return nil
	}
	return []fiber.Handler{newLoginLimiter(max, time.Minute)}
}
