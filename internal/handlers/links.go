package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"openup/internal/config"
	"openup/internal/db"
	"openup/internal/linkfilter"
	"openup/internal/models"
	"openup/internal/planlimit"
	"openup/internal/validation"
)

// LinkHandler handles link CRUD via JSON API.
type LinkHandler struct {
	db  *db.DB
	cfg *config.Config
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(database *db.DB, cfg *config.Config) *LinkHandler {
	return &LinkHandler{db: database, cfg: cfg}
}

// List returns the caller's links filtered and sorted by the query
// string parameters.
func (h *LinkHandler) List(c fiber.Ctx) error {
	user := currentUser(c)

	links, err := h.db.GetLinksByUser(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch links")
	}

	counts, err := h.db.ClickCountsByUser(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch click counts")
	}

	views := make([]linkfilter.LinkView, 0, len(links))
	for _, link := range links {
		views = append(views, linkfilter.FromLink(link, counts[link.ID], h.cfg.BaseURL))
	}

	spec, err := parseFilterSpec(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	filtered := linkfilter.Apply(views, spec, time.Now())
	return c.JSON(fiber.Map{"links": filtered, "total": len(filtered)})
}

// parseFilterSpec builds a filter spec from the request's query string.
func parseFilterSpec(c fiber.Ctx) (linkfilter.Spec, error) {
	spec := linkfilter.Spec{
		Query:  c.Query("q", ""),
		Status: linkfilter.Status(c.Query("status", "all")),
		Period: linkfilter.Period(c.Query("period", "all")),
		SortBy: linkfilter.SortKey(c.Query("sort", "newest")),
	}

	if tags := c.Query("tags", ""); tags != "" {
		spec.Tags = strings.Split(tags, ",")
	}

	if v := c.Query("min_clicks", ""); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return spec, errors.New("invalid min_clicks")
		}
		spec.MinClicks = n
	}
	if v := c.Query("max_clicks", ""); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return spec, errors.New("invalid max_clicks")
		}
		spec.MaxClicks = n
	}

	if v := c.Query("date_start", ""); v != "" {
		t, err := time.Parse(linkfilter.DateLayout, v)
		if err != nil {
			return spec, errors.New("invalid date_start, expected dd/mm/yyyy")
		}
		spec.DateStart = t
	}
	if v := c.Query("date_end", ""); v != "" {
		t, err := time.Parse(linkfilter.DateLayout, v)
		if err != nil {
			return spec, errors.New("invalid date_end, expected dd/mm/yyyy")
		}
		spec.DateEnd = t
	}

	return spec, nil
}

// Create creates a new link behind the plan's links quota.
func (h *LinkHandler) Create(c fiber.Ctx) error {
	user := currentUser(c)

	var body struct {
		Slug       string     `json:"slug"`
		Title      string     `json:"title"`
		URL        string     `json:"url"`
		Type       string     `json:"type"`
		Password   string     `json:"password"`
		ExpiresAt  *time.Time `json:"expires_at"`
		ClickLimit *int       `json:"click_limit"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if body.URL == "" {
		return jsonError(c, fiber.StatusBadRequest, "url is required")
	}
	if valid, msg := validation.ValidateURL(body.URL); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	body.Slug = validation.NormalizeSlug(body.Slug)
	if body.Slug == "" {
		body.Slug = validation.GenerateSlug(7)
	} else {
		if !validation.ValidateSlug(body.Slug) {
			return jsonError(c, fiber.StatusBadRequest, "slug must contain only letters, numbers, hyphens, and underscores")
		}
		if validation.ReservedSlugs[body.Slug] {
			return jsonError(c, fiber.StatusBadRequest, "this slug is reserved")
		}
	}

	plan, err := h.db.GetEffectivePlan(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to resolve plan")
	}
	count, err := h.db.CountLinksByUser(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to count links")
	}
	if decision := planlimit.Check("link", count, plan.LinksLimit); !decision.Allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":        decision.Message,
			"upgrade_path": decision.UpgradePath,
		})
	}
	if body.Password != "" && !plan.HasFeature(planlimit.FeaturePasswordProtection) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":        "Password-protected links are not included in your plan",
			"upgrade_path": planlimit.UpgradePath,
		})
	}
	if body.ExpiresAt != nil && !plan.HasFeature(planlimit.FeatureExpiringLinks) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":        "Expiring links are not included in your plan",
			"upgrade_path": planlimit.UpgradePath,
		})
	}

	link := &models.Link{
		UserID:      user.ID,
		Slug:        body.Slug,
		Title:       body.Title,
		OriginalURL: body.URL,
		Type:        body.Type,
		IsActive:    true,
		ExpiresAt:   body.ExpiresAt,
		ClickLimit:  body.ClickLimit,
	}
	if body.Password != "" {
		hash := hashKey(body.Password)
		link.PasswordHash = &hash
	}

	if err := h.db.CreateLink(c.Context(), link); err != nil {
		if errors.Is(err, db.ErrDuplicateSlug) {
			return jsonError(c, fiber.StatusConflict, "a link with this slug already exists")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to create link")
	}

	return c.Status(fiber.StatusCreated).JSON(link)
}

// Get returns a single owned link with its click total.
func (h *LinkHandler) Get(c fiber.Ctx) error {
	user := currentUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid link id")
	}

	link, err := h.db.GetLinkByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrLinkNotFound) {
			return jsonError(c, fiber.StatusNotFound, "link not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch link")
	}
	if link.UserID != user.ID {
		return jsonError(c, fiber.StatusNotFound, "link not found")
	}

	clicks, err := h.db.CountClicks(c.Context(), link.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to count clicks")
	}

	return c.JSON(fiber.Map{"link": link, "clicks": clicks})
}

// Update updates an owned link's editable fields.
func (h *LinkHandler) Update(c fiber.Ctx) error {
	user := currentUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid link id")
	}

	link, err := h.db.GetLinkByID(c.Context(), id)
	if err != nil || link.UserID != user.ID {
		return jsonError(c, fiber.StatusNotFound, "link not found")
	}

	var body struct {
		Title      *string    `json:"title"`
		URL        *string    `json:"url"`
		IsActive   *bool      `json:"is_active"`
		Password   *string    `json:"password"`
		ExpiresAt  *time.Time `json:"expires_at"`
		ClickLimit *int       `json:"click_limit"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if body.Title != nil {
		link.Title = *body.Title
	}
	if body.URL != nil {
		if valid, msg := validation.ValidateURL(*body.URL); !valid {
			return jsonError(c, fiber.StatusBadRequest, msg)
		}
		link.OriginalURL = *body.URL
	}
	if body.IsActive != nil {
		link.IsActive = *body.IsActive
	}
	if body.Password != nil {
		if *body.Password == "" {
			link.PasswordHash = nil
		} else {
			hash := hashKey(*body.Password)
			link.PasswordHash = &hash
		}
	}
	if body.ExpiresAt != nil {
		link.ExpiresAt = body.ExpiresAt
	}
	if body.ClickLimit != nil {
		link.ClickLimit = body.ClickLimit
	}

	if err := h.db.UpdateLink(c.Context(), link); err != nil {
		if errors.Is(err, db.ErrLinkNotFound) {
			return jsonError(c, fiber.StatusNotFound, "link not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update link")
	}

	return c.JSON(link)
}

// Delete removes an owned link.
func (h *LinkHandler) Delete(c fiber.Ctx) error {
	user := currentUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid link id")
	}

	if err := h.db.DeleteLink(c.Context(), id, user.ID); err != nil {
		if errors.Is(err, db.ErrLinkNotFound) {
			return jsonError(c, fiber.StatusNotFound, "link not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete link")
	}

	return c.JSON(fiber.Map{"success": true})
}

// Reorder rewrites the display order of the caller's links.
func (h *LinkHandler) Reorder(c fiber.Ctx) error {
	user := currentUser(c)

	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(body.IDs) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "ids are required")
	}

	ids := make([]uuid.UUID, 0, len(body.IDs))
	for _, raw := range body.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid link id in ids")
		}
		ids = append(ids, id)
	}

	if err := h.db.ReorderLinks(c.Context(), user.ID, ids); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to reorder links")
	}

	return c.JSON(fiber.Map{"success": true})
}

// hashKey hashes a link password for storage and comparison.
func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
