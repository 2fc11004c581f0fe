package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"openup/internal/db"
	"openup/internal/models"
)

// ThemeHandler handles the bio page theme.
type ThemeHandler struct {
	db *db.DB
}

// NewThemeHandler creates a new theme handler.
func NewThemeHandler(database *db.DB) *ThemeHandler {
	return &ThemeHandler{db: database}
}

// Get returns the caller's theme, defaulted if never saved.
func (h *ThemeHandler) Get(c fiber.Ctx) error {
	user := currentUser(c)

	theme, err := h.db.GetTheme(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch theme")
	}

	return c.JSON(theme)
}

// Put replaces the caller's theme after validating every enum field.
func (h *ThemeHandler) Put(c fiber.Ctx) error {
	user := currentUser(c)

	var theme models.BioTheme
	if err := json.Unmarshal(c.Body(), &theme); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := theme.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.db.SaveTheme(c.Context(), user.ID, theme); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to save theme")
	}

	return c.JSON(theme)
}
