package routes

import (
	page_handlers "idcard.link/handlers/pages"
	"idcard.link/middlewares"

	"github.com/gofiber/fiber/v2"
)

func registerPageRoutes(app *fiber.App, c *Container, auth *middlewares.Auth) {
	pages := page_handlers.NewPagesHandler(c.Config.AppName,
		page_handlers.SourceFor(c.Senior),
		page_handlers.SourceFor(c.Youth),
	)

	app.Get("/signin", auth.Guest, pages.SignIn)
	app.Get("/home", auth.Page, pages.Home)
	app.Get("/print/:variant/:cardNo", auth.Page, pages.Print)
	app.Get("/", auth.Optional, pages.Root)
}
