package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v3"

	"openup/internal/db"
	"openup/internal/validation"
)

// ProfileHandler handles the caller's own profile.
type ProfileHandler struct {
	db *db.DB
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(database *db.DB) *ProfileHandler {
	return &ProfileHandler{db: database}
}

// Show returns the caller's profile.
func (h *ProfileHandler) Show(c fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

// Update updates the caller's editable profile fields. The username
// doubles as the public bio page slug, so slug rules apply to it.
func (h *ProfileHandler) Update(c fiber.Ctx) error {
	user := currentUser(c)

	var body struct {
		FullName *string `json:"full_name"`
		Username *string `json:"username"`
		Bio      *string `json:"bio"`
		Website  *string `json:"website"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if body.FullName != nil {
		user.FullName = strings.TrimSpace(*body.FullName)
	}
	if body.Username != nil {
		username := validation.NormalizeSlug(*body.Username)
		if username != "" {
			if !validation.ValidateSlug(username) {
				return jsonError(c, fiber.StatusBadRequest, "username must contain only letters, numbers, hyphens, and underscores")
			}
			if validation.ReservedSlugs[username] {
				return jsonError(c, fiber.StatusBadRequest, "this username is reserved")
			}
		}
		user.Username = username
	}
	if body.Bio != nil {
		user.Bio = *body.Bio
	}
	if body.Website != nil {
		if *body.Website != "" {
			if valid, msg := validation.ValidateURL(*body.Website); !valid {
				return jsonError(c, fiber.StatusBadRequest, msg)
			}
		}
		user.Website = *body.Website
	}

	if err := h.db.UpdateProfile(c.Context(), user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to update profile")
	}

	return c.JSON(user)
}
