package handlers

import (
	"context"
	"errors"

	"idcard.link/configs/configslog"
	"idcard.link/middlewares"
	"idcard.link/models"
	"idcard.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PrintSource looks up cards of one variant for the print page.
type PrintSource struct {
	Variant models.Variant
	Find    func(ctx context.Context, cardNo string) (interface{}, error)
}

// SourceFor adapts a card service to a PrintSource.
func SourceFor[T any](svc services.ICardService[T]) PrintSource {
	return PrintSource{
		Variant: svc.Variant(),
		Find: func(ctx context.Context, cardNo string) (interface{}, error) {
			card, err := svc.Get(ctx, cardNo)
			if err != nil {
				return nil, err
			}
			return card, nil
		},
	}
}

type PagesHandler struct {
	appName string
	sources map[string]PrintSource
}

func NewPagesHandler(appName string, sources ...PrintSource) *PagesHandler {
	m := make(map[string]PrintSource, len(sources))
	for _, s := range sources {
		m[s.Variant.Key] = s
	}
	return &PagesHandler{appName: appName, sources: m}
}

// SignIn GET /signin
func (h *PagesHandler) SignIn(c *fiber.Ctx) error {
	return c.Render("signin", fiber.Map{
		"Title":   "Sign in",
		"AppName": h.appName,
	}, "layouts/main")
}

// Home GET /home
func (h *PagesHandler) Home(c *fiber.Ctx) error {
	variants := make([]models.Variant, 0, len(h.sources))
	for _, key := range []string{models.VariantSenior, models.VariantYouth} {
		if s, ok := h.sources[key]; ok {
			variants = append(variants, s.Variant)
		}
	}
	return c.Render("home", fiber.Map{
		"Title":    "Home",
		"AppName":  h.appName,
		"Session":  middlewares.CurrentSession(c),
		"Variants": variants,
	}, "layouts/main")
}

// Print GET /print/:variant/:cardNo
func (h *PagesHandler) Print(c *fiber.Ctx) error {
	src, ok := h.sources[c.Params("variant")]
	if !ok {
		return fiber.ErrNotFound
	}
	cardNo := c.Params("cardNo")
	card, err := src.Find(c.UserContext(), cardNo)
	if err != nil {
		if errors.Is(err, services.ErrCardNotFound) {
			return fiber.ErrNotFound
		}
		configslog.Log.Error("Print page: card lookup failed", zap.String("card_no", cardNo), zap.Error(err))
		return fiber.ErrInternalServerError
	}
	layout, err := services.NewPrintLayout(src.Variant.Key, src.Variant.Label, src.Variant.AssetRoute, cardNo, card)
	if err != nil {
		configslog.Log.Error("Print page: layout failed", zap.String("card_no", cardNo), zap.Error(err))
		return fiber.ErrInternalServerError
	}
	return c.Render("print", fiber.Map{
		"Title":   src.Variant.Label + " ID " + cardNo,
		"AppName": h.appName,
		"Layout":  layout,
	}, "layouts/print")
}

// Root GET /
func (h *PagesHandler) Root(c *fiber.Ctx) error {
	if middlewares.CurrentSession(c) != nil {
		return c.Redirect("/home", fiber.StatusFound)
	}
	return c.Redirect("/signin", fiber.StatusFound)
}
