package handlers

import (
	"errors"
	"sync"

	"github.com/gofiber/fiber/v3"

	"openup/internal/config"
	"openup/internal/db"
)

// OverviewHandler assembles the dashboard overview in one response.
type OverviewHandler struct {
	db  *db.DB
	cfg *config.Config
}

// NewOverviewHandler creates a new overview handler.
func NewOverviewHandler(database *db.DB, cfg *config.Config) *OverviewHandler {
	return &OverviewHandler{db: database, cfg: cfg}
}

// overviewSection is one independently-loaded slice of the dashboard.
// A failed section reports its error without failing the others.
type overviewSection struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Get fans out the section queries concurrently and returns whatever
// loaded. Each section fails independently.
func (h *OverviewHandler) Get(c fiber.Ctx) error {
	user := currentUser(c)
	ctx := c.Context()

	var (
		wg sync.WaitGroup

		links   overviewSection
		clicks  overviewSection
		teams   overviewSection
		plan    overviewSection
		qrCodes overviewSection
		theme   overviewSection
		billing overviewSection
	)

	run := func(section *overviewSection, load func() (any, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := load()
			if err != nil {
				section.Error = err.Error()
				return
			}
			section.Data = data
		}()
	}

	run(&links, func() (any, error) {
		return h.db.GetLinksByUser(ctx, user.ID)
	})
	run(&clicks, func() (any, error) {
		counts, err := h.db.ClickCountsByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		var total int64
		for _, n := range counts {
			total += n
		}
		return fiber.Map{"total": total, "by_link": counts}, nil
	})
	run(&teams, func() (any, error) {
		return h.db.GetTeamsForUser(ctx, user.ID)
	})
	run(&plan, func() (any, error) {
		sub, err := h.db.GetSubscriptionByUser(ctx, user.ID)
		if err != nil && !errors.Is(err, db.ErrSubscriptionNotFound) {
			return nil, err
		}
		effective, err := h.db.GetEffectivePlan(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return fiber.Map{"subscription": sub, "plan": effective}, nil
	})
	run(&qrCodes, func() (any, error) {
		return h.db.GetQRCodesByUser(ctx, user.ID)
	})
	run(&theme, func() (any, error) {
		return h.db.GetTheme(ctx, user.ID)
	})
	run(&billing, func() (any, error) {
		return h.db.GetBillingHistory(ctx, user.ID)
	})

	wg.Wait()

	return c.JSON(fiber.Map{
		"links":    links,
		"clicks":   clicks,
		"teams":    teams,
		"plan":     plan,
		"qr_codes": qrCodes,
		"theme":    theme,
		"billing":  billing,
	})
}
