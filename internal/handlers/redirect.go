package handlers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"openup/internal/db"
	"openup/internal/metrics"
	"openup/internal/models"
)

// Redirect outcomes.
const (
	outcomeOK          = "ok"
	outcomeNotFound    = "not_found"
	outcomeInactive    = "inactive"
	outcomeExpired     = "expired"
	outcomeOverLimit   = "over_limit"
	outcomePasswordReq = "password_required"
	outcomeBadPassword = "bad_password"
)

// RedirectHandler resolves short links on the public edge.
type RedirectHandler struct {
	db *db.DB
}

// NewRedirectHandler creates a new redirect handler.
func NewRedirectHandler(database *db.DB) *RedirectHandler {
	return &RedirectHandler{db: database}
}

// resolveOutcome decides how a redirect request ends. key is the
// cleartext password supplied by the visitor, empty if none.
func resolveOutcome(link *models.Link, clicks int64, key string, now time.Time) string {
	if !link.IsActive {
		return outcomeInactive
	}
	if link.Expired(now) {
		return outcomeExpired
	}
	if link.OverClickLimit(clicks) {
		return outcomeOverLimit
	}
	if link.PasswordProtected() {
		if key == "" {
			return outcomePasswordReq
		}
		if hashKey(key) != *link.PasswordHash {
			return outcomeBadPassword
		}
	}
	return outcomeOK
}

// Resolve handles GET /r/:slug. A successful resolution records the
// click asynchronously so the visitor never waits on the write.
func (h *RedirectHandler) Resolve(c fiber.Ctx) error {
	slug := c.Params("slug")

	link, err := h.db.GetLinkBySlug(c.Context(), slug)
	if err != nil {
		if errors.Is(err, db.ErrLinkNotFound) {
			metrics.RedirectsTotal.WithLabelValues(outcomeNotFound).Inc()
			return fiber.NewError(fiber.StatusNotFound, "link not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to resolve link")
	}

	clicks, err := h.db.CountClicks(c.Context(), link.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to resolve link")
	}

	outcome := resolveOutcome(link, clicks, c.Query("key", ""), time.Now())
	metrics.RedirectsTotal.WithLabelValues(outcome).Inc()

	switch outcome {
	case outcomeInactive, outcomeExpired, outcomeOverLimit:
		return fiber.NewError(fiber.StatusGone, "link is no longer available")
	case outcomePasswordReq:
		return fiber.NewError(fiber.StatusUnauthorized, "this link requires a password")
	case outcomeBadPassword:
		return fiber.NewError(fiber.StatusUnauthorized, "incorrect password")
	}

	click := &models.LinkClick{
		LinkID:     link.ID,
		Referrer:   c.Get("Referer"),
		DeviceType: deviceType(c.Get("User-Agent")),
	}
	go func() {
		if err := h.db.RecordClick(context.Background(), click); err != nil {
			log.Printf("Failed to record click for %s: %v", link.Slug, err)
		}
	}()

	return c.Redirect().Status(fiber.StatusFound).To(link.OriginalURL)
}

// deviceType does a coarse user-agent classification. Enough for the
// analytics rollup, nothing more.
func deviceType(ua string) string {
	ua = strings.ToLower(ua)
	switch {
	case strings.Contains(ua, "mobile"), strings.Contains(ua, "android"), strings.Contains(ua, "iphone"):
		return "mobile"
	case strings.Contains(ua, "tablet"), strings.Contains(ua, "ipad"):
		return "tablet"
	case ua == "":
		return "unknown"
	default:
		return "desktop"
	}
}
