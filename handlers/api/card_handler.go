package handlers

import (
	"strconv"
	"strings"

	"idcard.link/models"
	"idcard.link/pkg/response"
	"idcard.link/pkg/validation"
	"idcard.link/services"

	"github.com/gofiber/fiber/v2"
)

// CardHandler serves /api/scid and /api/youthid.
type CardHandler[T any, P models.CardPtr[T]] struct {
	service services.ICardService[T]
	variant models.Variant
}

func NewCardHandler[T any, P models.CardPtr[T]](service services.ICardService[T]) *CardHandler[T, P] {
	return &CardHandler[T, P]{service: service, variant: service.Variant()}
}

// Search GET ?query=a,b
func (h *CardHandler[T, P]) Search(c *fiber.Ctx) error {
	cards, err := h.service.Search(c.UserContext(), c.Query("query"))
	if err != nil {
		return writeError(c, "Card search", err)
	}
	if cards == nil {
		cards = []T{}
	}
	return response.Success(c, "", cards)
}

type customID struct {
	CustomID string `json:"customId"`
}

// Create POST. The card number is assigned by the server; customId asks for a specific number.
func (h *CardHandler[T, P]) Create(c *fiber.Ctx) error {
	card := new(T)
	if err := c.BodyParser(card); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	var custom customID
	_ = c.BodyParser(&custom)

	if err := validation.Struct(card); err != nil {
		return response.ErrorWithDetails(c, fiber.StatusBadRequest, "Validation failed", validation.Fields(err))
	}
	created, err := h.service.Create(c.UserContext(), card, custom.CustomID)
	if err != nil {
		return writeError(c, "Card create", err)
	}
	return response.SuccessWithCode(c, fiber.StatusOK, P(created).CardNo()+" added successfully", []*T{created})
}

// Update PUT. Keyed by id, or by the card number when id is missing.
func (h *CardHandler[T, P]) Update(c *fiber.Ctx) error {
	card := new(T)
	if err := c.BodyParser(card); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validation.Struct(card); err != nil {
		return response.ErrorWithDetails(c, fiber.StatusBadRequest, "Validation failed", validation.Fields(err))
	}
	updated, report, err := h.service.Update(c.UserContext(), card)
	if err != nil {
		return writeError(c, "Card update", err)
	}
	return response.WithReport(c, "Record updated", []*T{updated}, report.Warnings, report.Steps)
}

// Delete DELETE ?scid=|?YouthID= or ?id=
func (h *CardHandler[T, P]) Delete(c *fiber.Ctx) error {
	var id uint
	if raw := c.Query("id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 {
			return response.Error(c, fiber.StatusBadRequest, "Invalid id")
		}
		id = uint(n)
	}
	cardNo := c.Query(h.variant.QueryKey)
	if cardNo == "" {
		cardNo = c.Query(strings.ToLower(h.variant.QueryKey))
	}
	if id == 0 && strings.TrimSpace(cardNo) == "" {
		return response.Error(c, fiber.StatusBadRequest, "No valid identifier provided")
	}
	report, err := h.service.Delete(c.UserContext(), cardNo, id)
	if err != nil {
		return writeError(c, "Card delete", err)
	}
	return response.WithReport(c, "Record deleted", nil, report.Warnings, report.Steps)
}

// Next GET /next. A preview only; Create allocates on its own.
func (h *CardHandler[T, P]) Next(c *fiber.Ctx) error {
	next, err := h.service.Peek(c.UserContext())
	if err != nil {
		return writeError(c, "Card number preview", err)
	}
	return c.JSON(fiber.Map{"success": true, "next": next})
}

// CheckID GET /checkID?scid=123
func (h *CardHandler[T, P]) CheckID(c *fiber.Ctx) error {
	raw := c.Query(h.variant.IDField)
	if raw == "" {
		raw = c.Query(h.variant.QueryKey)
	}
	exists, err := h.service.Exists(c.UserContext(), raw)
	if err != nil {
		return writeError(c, "Card number check", err)
	}
	return c.JSON(fiber.Map{"exists": exists})
}

// SetStatus PUT /status {scid|youthid, status}
func (h *CardHandler[T, P]) SetStatus(c *fiber.Ctx) error {
	body := map[string]string{}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	cardNo := body[h.variant.IDField]
	if cardNo == "" {
		cardNo = body[h.variant.QueryKey]
	}
	status := models.CardStatus(body["status"])
	if err := h.service.SetStatus(c.UserContext(), cardNo, status); err != nil {
		return writeError(c, "Card status", err)
	}
	return response.Success(c, "Status updated", fiber.Map{h.variant.IDField: cardNo, "status": strings.ToUpper(string(status))})
}

// History GET /:cardNo/history
func (h *CardHandler[T, P]) History(c *fiber.Ctx) error {
	entries, err := h.service.History(c.UserContext(), c.Params("cardNo"))
	if err != nil {
		return writeError(c, "Card history", err)
	}
	if entries == nil {
		entries = []models.CardAudit{}
	}
	return response.Success(c, "", entries)
}

// Register mounts the handler on router under /<APIPath>.
func (h *CardHandler[T, P]) Register(router fiber.Router) {
	g := router.Group("/" + h.variant.APIPath)
	g.Get("/", h.Search)
	g.Post("/", h.Create)
	g.Put("/", h.Update)
	g.Delete("/", h.Delete)
	g.Get("/next", h.Next)
	g.Get("/checkID", h.CheckID)
	g.Put("/status", h.SetStatus)
	g.Get("/:cardNo/history", h.History)
}
