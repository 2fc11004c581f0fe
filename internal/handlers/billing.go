package handlers

import (
	"github.com/gofiber/fiber/v3"

	"openup/internal/db"
)

// BillingHandler serves the caller's invoice history.
type BillingHandler struct {
	db *db.DB
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(database *db.DB) *BillingHandler {
	return &BillingHandler{db: database}
}

// History returns the caller's invoices, newest first.
func (h *BillingHandler) History(c fiber.Ctx) error {
	user := currentUser(c)

	entries, err := h.db.GetBillingHistory(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch billing history")
	}

	return c.JSON(fiber.Map{"billing_history": entries})
}
