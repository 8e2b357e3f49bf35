package handlers

import (
	"idcard.link/pkg/response"
	"idcard.link/services"

	"github.com/gofiber/fiber/v2"
)

type CandidateHandler struct {
	service services.ICandidateService
}

func NewCandidateHandler(service services.ICandidateService) *CandidateHandler {
	return &CandidateHandler{service: service}
}

// Search GET /api/searchVL?search=
func (h *CandidateHandler) Search(c *fiber.Ctx) error {
	term := c.Query("search")
	rows, err := h.service.Search(c.UserContext(), term)
	if err != nil {
		return writeError(c, "Candidate search", err)
	}
	msg := ""
	if term == "" {
		msg = "Enter a name to search"
	}
	return response.Success(c, msg, rows)
}
