package handlers

import (
	"strings"

	"idcard.link/models"
	"idcard.link/pkg/response"
	"idcard.link/pkg/validation"
	"idcard.link/services"

	"github.com/gofiber/fiber/v2"
)

// AssetHandler photo and signature endpoints.
type AssetHandler struct {
	store services.IAssetStore
}

func NewAssetHandler(store services.IAssetStore) *AssetHandler {
	return &AssetHandler{store: store}
}

// Upload POST /api/upload {image, folder, filename, crop?}
func (h *AssetHandler) Upload(c *fiber.Ctx) error {
	var req services.StoreAssetRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return response.ErrorWithDetails(c, fiber.StatusBadRequest, "Image and folder are required", validation.Fields(err))
	}
	path, err := h.store.Store(c.UserContext(), req)
	if err != nil {
		return writeError(c, "Asset upload", err)
	}
	return c.JSON(fiber.Map{"success": true, "filePath": path})
}

// Serve GET /api/<pics>/:category/:file
func (h *AssetHandler) Serve(c *fiber.Ctx) error {
	category, err := services.ParseCategory(c.Params("category"))
	if err != nil {
		return writeError(c, "Asset fetch", err)
	}
	data, contentType, err := h.store.Fetch(c.UserContext(), category, c.Params("file"))
	if err != nil {
		return writeError(c, "Asset fetch", err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "private, no-cache")
	return c.Send(data)
}

type renameRequest struct {
	Old string `json:"old"`
	New string `json:"new"`
	// field names used by older clients
	OldScid    string `json:"oldScid"`
	NewScid    string `json:"newScid"`
	OldYouthid string `json:"oldYouthid"`
	NewYouthid string `json:"newYouthid"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Rename POST /api/<pics>/edit {old, new}
func (h *AssetHandler) Rename(c *fiber.Ctx) error {
	var req renameRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	oldKey := firstNonEmpty(req.Old, req.OldScid, req.OldYouthid)
	newKey := firstNonEmpty(req.New, req.NewScid, req.NewYouthid)
	if oldKey == "" || newKey == "" {
		return response.Error(c, fiber.StatusBadRequest, "Missing old or new name")
	}
	report := &services.OperationReport{}
	report.AddAll(h.store.Rename(c.UserContext(), oldKey, newKey))
	return response.WithReport(c, "", nil, report.Warnings, report.Steps)
}

// DeleteFor returns DELETE /api/<pics>/delete?<key>= for one variant.
func (h *AssetHandler) DeleteFor(variant models.Variant) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := firstNonEmpty(c.Query(variant.QueryKey), c.Query(variant.IDField))
		if key == "" {
			return response.Error(c, fiber.StatusBadRequest, "Missing "+variant.QueryKey)
		}
		report := &services.OperationReport{}
		report.AddAll(h.store.Delete(c.UserContext(), key))
		msg := "No files deleted"
		for _, s := range report.Steps {
			if s.Status == services.StepOK {
				msg = "Files deleted successfully"
				break
			}
		}
		return response.WithReport(c, msg, nil, report.Warnings, report.Steps)
	}
}

// RegisterVariant mounts the /api/<AssetRoute> endpoints.
func (h *AssetHandler) RegisterVariant(router fiber.Router, variant models.Variant) {
	g := router.Group("/" + variant.AssetRoute)
	g.Post("/edit", h.Rename)
	g.Delete("/delete", h.DeleteFor(variant))
	g.Get("/:category/:file", h.Serve)
}
