package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"openup/internal/config"
	"openup/internal/db"
	"openup/internal/models"
	"openup/internal/planlimit"
	"openup/internal/qr"
	"openup/internal/validation"
)

// QRHandler handles QR code CRUD.
type QRHandler struct {
	db      *db.DB
	cfg     *config.Config
	builder *qr.Builder
}

// NewQRHandler creates a new QR code handler.
func NewQRHandler(database *db.DB, cfg *config.Config) *QRHandler {
	return &QRHandler{
		db:      database,
		cfg:     cfg,
		builder: qr.NewBuilder(cfg.QREndpoint),
	}
}

// List returns the caller's QR codes.
func (h *QRHandler) List(c fiber.Ctx) error {
	user := currentUser(c)

	codes, err := h.db.GetQRCodesByUser(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch QR codes")
	}

	return c.JSON(fiber.Map{"qr_codes": codes})
}

// Create creates a QR code behind the plan's QR quota. The target may
// be a raw URL or one of the caller's links.
func (h *QRHandler) Create(c fiber.Ctx) error {
	user := currentUser(c)

	var body struct {
		Name   string         `json:"name"`
		URL    string         `json:"url"`
		LinkID *string        `json:"link_id"`
		Style  map[string]any `json:"style"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	target := body.URL
	var linkID *uuid.UUID
	if body.LinkID != nil && *body.LinkID != "" {
		id, err := uuid.Parse(*body.LinkID)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid link_id")
		}
		link, err := h.db.GetLinkByID(c.Context(), id)
		if err != nil || link.UserID != user.ID {
			return jsonError(c, fiber.StatusNotFound, "link not found")
		}
		linkID = &id
		target = h.cfg.BaseURL + "/r/" + link.Slug
	}

	if target == "" {
		return jsonError(c, fiber.StatusBadRequest, "url or link_id is required")
	}
	if valid, msg := validation.ValidateURL(target); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	plan, err := h.db.GetEffectivePlan(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to resolve plan")
	}
	count, err := h.db.CountQRCodesByUser(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to count QR codes")
	}
	if decision := planlimit.Check("QR code", count, plan.QRLimit); !decision.Allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":        decision.Message,
			"upgrade_path": decision.UpgradePath,
		})
	}

	code := &models.QRCode{
		UserID:    user.ID,
		LinkID:    linkID,
		Name:      body.Name,
		TargetURL: target,
		ImageURL:  h.builder.ImageURL(target, body.Style),
		Style:     body.Style,
	}
	if err := h.db.CreateQRCode(c.Context(), code); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create QR code")
	}

	return c.Status(fiber.StatusCreated).JSON(code)
}

// Update updates an owned QR code's name, target, and style.
func (h *QRHandler) Update(c fiber.Ctx) error {
	user := currentUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid QR code id")
	}

	code, err := h.db.GetQRCodeByID(c.Context(), id)
	if err != nil || code.UserID != user.ID {
		return jsonError(c, fiber.StatusNotFound, "QR code not found")
	}

	var body struct {
		Name  *string        `json:"name"`
		URL   *string        `json:"url"`
		Style map[string]any `json:"style"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if body.Name != nil {
		code.Name = *body.Name
	}
	if body.URL != nil {
		if valid, msg := validation.ValidateURL(*body.URL); !valid {
			return jsonError(c, fiber.StatusBadRequest, msg)
		}
		code.TargetURL = *body.URL
	}
	if body.Style != nil {
		code.Style = body.Style
	}
	code.ImageURL = h.builder.ImageURL(code.TargetURL, code.Style)

	if err := h.db.UpdateQRCode(c.Context(), code); err != nil {
		if errors.Is(err, db.ErrQRCodeNotFound) {
			return jsonError(c, fiber.StatusNotFound, "QR code not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update QR code")
	}

	return c.JSON(code)
}

// Delete removes an owned QR code.
func (h *QRHandler) Delete(c fiber.Ctx) error {
	user := currentUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid QR code id")
	}

	if err := h.db.DeleteQRCode(c.Context(), id, user.ID); err != nil {
		if errors.Is(err, db.ErrQRCodeNotFound) {
			return jsonError(c, fiber.StatusNotFound, "QR code not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete QR code")
	}

	return c.JSON(fiber.Map{"success": true})
}
