package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"openup/internal/db"
	"openup/internal/models"
	"openup/internal/planlimit"
)

// PlanHandler serves the plan catalog and the caller's subscription.
type PlanHandler struct {
	db *db.DB
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(database *db.DB) *PlanHandler {
	return &PlanHandler{db: database}
}

// List returns the plan catalog ordered by price.
func (h *PlanHandler) List(c fiber.Ctx) error {
	plans, err := h.db.GetPlans(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch plans")
	}

	type planView struct {
		models.Plan
		PriceMonthly float64  `json:"price_monthly"`
		FeatureNames []string `json:"feature_names"`
	}
	views := make([]planView, 0, len(plans))
	for _, p := range plans {
		views = append(views, planView{
			Plan:         p,
			PriceMonthly: p.PriceMonthly(),
			FeatureNames: p.Features.Names(),
		})
	}

	return c.JSON(fiber.Map{"plans": views})
}

// Subscription returns the caller's subscription with its effective
// plan. Users with no subscription row are on the free plan.
func (h *PlanHandler) Subscription(c fiber.Ctx) error {
	user := currentUser(c)

	sub, err := h.db.GetSubscriptionByUser(c.Context(), user.ID)
	if err != nil && !errors.Is(err, db.ErrSubscriptionNotFound) {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch subscription")
	}

	plan, err := h.db.GetEffectivePlan(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to resolve plan")
	}

	return c.JSON(fiber.Map{
		"subscription": sub,
		"plan":         plan,
	})
}

// UpdateSubscription switches the caller to another plan. There is no
// payment provider; the subscription row is written directly and a
// billing entry records the change.
func (h *PlanHandler) UpdateSubscription(c fiber.Ctx) error {
	user := currentUser(c)

	var body struct {
		Plan              string `json:"plan"`
		CancelAtPeriodEnd *bool  `json:"cancel_at_period_end"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.Plan == "" {
		return jsonError(c, fiber.StatusBadRequest, "plan is required")
	}

	plan, err := h.db.GetPlanByCode(c.Context(), body.Plan)
	if err != nil {
		if errors.Is(err, db.ErrPlanNotFound) {
			return jsonError(c, fiber.StatusBadRequest, "unknown plan")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to resolve plan")
	}

	now := time.Now()
	sub := &models.Subscription{
		UserID:             user.ID,
		PlanID:             plan.ID,
		Status:             models.SubStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 1, 0),
	}
	if body.CancelAtPeriodEnd != nil {
		sub.CancelAtPeriodEnd = *body.CancelAtPeriodEnd
	}

	if err := h.db.UpsertSubscription(c.Context(), sub); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to update subscription")
	}

	// The invoice record is bookkeeping; its failure must not undo the
	// plan change.
	if plan.PriceMonthlyCents > 0 {
		entry := &models.BillingEntry{
			UserID:      user.ID,
			InvoiceID:   "inv_" + uuid.NewString(),
			AmountCents: plan.PriceMonthlyCents,
			Currency:    plan.Currency,
			Status:      models.BillingPaid,
		}
		if err := h.db.InsertBillingEntry(c.Context(), entry); err != nil {
			log.Printf("Failed to record billing entry for %s: %v", user.ID, err)
		}
	}

	sub.Plan = plan
	return c.JSON(fiber.Map{"subscription": sub, "plan": plan})
}

// Usage returns the caller's quota consumption against their plan, so
// the dashboard can show remaining headroom without extra round trips.
func (h *PlanHandler) Usage(c fiber.Ctx) error {
	user := currentUser(c)

	plan, err := h.db.GetEffectivePlan(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to resolve plan")
	}

	linkCount, err := h.db.CountLinksByUser(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to count links")
	}
	qrCount, err := h.db.CountQRCodesByUser(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to count QR codes")
	}

	return c.JSON(fiber.Map{
		"plan": plan.Code,
		"links": fiber.Map{
			"used":      linkCount,
			"limit":     plan.LinksLimit,
			"remaining": planlimit.Remaining(linkCount, plan.LinksLimit),
		},
		"qr_codes": fiber.Map{
			"used":      qrCount,
			"limit":     plan.QRLimit,
			"remaining": planlimit.Remaining(qrCount, plan.QRLimit),
		},
	})
}
