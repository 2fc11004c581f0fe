package handlers

import (
	"github.com/gofiber/fiber/v3"

	"openup/internal/models"
)

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// currentUser returns the authenticated profile placed in locals by
// the auth middleware, or nil.
func currentUser(c fiber.Ctx) *models.Profile {
	user, _ := c.Locals("user").(*models.Profile)
	return user
}
