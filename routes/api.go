package routes

import (
	"time"

	api_handlers "idcard.link/handlers/api"
	"idcard.link/middlewares"
	"idcard.link/models"
	"idcard.link/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func newLoginLimiter(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests, "Too many login attempts, try again later")
		},
	})
}

func registerAPIRoutes(app *fiber.App, c *Container, auth *middlewares.Auth) {
	cfg := c.Config
	authHandler := api_handlers.NewAuthHandler(c.Auth, api_handlers.CookieOptions{
		Name:   cfg.CookieName,
		Secure: cfg.CookieSecure,
		TTL:    cfg.SessionTTL,
	})

	api := app.Group("/api")

	// the only endpoint reachable without a session
	login := append(loginLimit(cfg.LoginRateLimit), authHandler.Login)
	api.Post("/login", login...)

	secured := api.Group("", auth.API)
	secured.Post("/logout", authHandler.Logout)
	secured.Get("/me", authHandler.Me)

	api_handlers.NewCardHandler[models.SeniorCard, *models.SeniorCard](c.Senior).Register(secured)
	api_handlers.NewCardHandler[models.YouthCard, *models.YouthCard](c.Youth).Register(secured)

	assetHandler := api_handlers.NewAssetHandler(c.Assets)
	secured.Post("/upload", assetHandler.Upload)
	assetHandler.RegisterVariant(secured, c.Senior.Variant())
	assetHandler.RegisterVariant(secured, c.Youth.Variant())

	candidateHandler := api_handlers.NewCandidateHandler(c.Candidates)
	secured.Get("/searchVL", candidateHandler.Search)

	userHandler := api_handlers.NewUserHandler(c.Users)
	secured.Get("/users", userHandler.List)
	secured.Put("/users", userHandler.Update)
}
