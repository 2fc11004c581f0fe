package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"openup/internal/db"
)

// BioHandler serves the public link-in-bio page data.
type BioHandler struct {
	db *db.DB
}

// NewBioHandler creates a new bio handler.
func NewBioHandler(database *db.DB) *BioHandler {
	return &BioHandler{db: database}
}

// Show handles GET /u/:username. Only active links and the public
// profile fields leave the server.
func (h *BioHandler) Show(c fiber.Ctx) error {
	username := c.Params("username")

	profile, err := h.db.GetProfileByUsername(c.Context(), username)
	if err != nil {
		if errors.Is(err, db.ErrProfileNotFound) {
			return jsonError(c, fiber.StatusNotFound, "page not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to load page")
	}

	links, err := h.db.GetActiveLinksByUser(c.Context(), profile.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load links")
	}

	theme, err := h.db.GetTheme(c.Context(), profile.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load theme")
	}

	return c.JSON(fiber.Map{
		"profile": fiber.Map{
			"username":   profile.Username,
			"full_name":  profile.FullName,
			"avatar_url": profile.AvatarURL,
			"bio":        profile.Bio,
			"website":    profile.Website,
		},
		"links": links,
		"theme": theme,
	})
}
