package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"openup/internal/config"
	"openup/internal/db"
	"openup/internal/email"
	"openup/internal/metrics"
	"openup/internal/models"
	"openup/internal/planlimit"
	"openup/internal/validation"
)

// TeamHandler handles teams, memberships, and the invite flow.
type TeamHandler struct {
	db       *db.DB
	cfg      *config.Config
	notifier *email.Notifier
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(database *db.DB, cfg *config.Config, notifier *email.Notifier) *TeamHandler {
	return &TeamHandler{db: database, cfg: cfg, notifier: notifier}
}

// inviteRequest is the POST /team-invite body.
type inviteRequest struct {
	TeamID string `json:"team_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// validateInviteRequest normalizes and checks an invite request,
// returning the parsed team ID or a user-facing message.
func validateInviteRequest(req *inviteRequest) (uuid.UUID, string) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Role == "" {
		req.Role = models.RoleViewer
	}

	if req.TeamID == "" || req.Email == "" {
		return uuid.Nil, "team_id and email are required"
	}

	teamID, err := uuid.Parse(req.TeamID)
	if err != nil {
		return uuid.Nil, "invalid team_id"
	}

	if !validation.ValidateEmail(req.Email) {
		return uuid.Nil, "invalid email address"
	}

	if !models.ValidRole(req.Role) || req.Role == models.RoleOwner {
		return uuid.Nil, "invalid role"
	}

	return teamID, ""
}

// buildAcceptURL builds the link the invitee clicks to join.
func buildAcceptURL(frontendURL, token string) string {
	return strings.TrimSuffix(frontendURL, "/") + "/invite/accept?token=" + token
}

// Invite handles POST /team-invite. Only the team owner may invite,
// and the team member quota of the owner's plan applies.
func (h *TeamHandler) Invite(c fiber.Ctx) error {
	user := currentUser(c)

	var req inviteRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	teamID, msg := validateInviteRequest(&req)
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	team, err := h.db.GetTeamByID(c.Context(), teamID)
	if err != nil {
		if errors.Is(err, db.ErrTeamNotFound) {
			return jsonError(c, fiber.StatusBadRequest, "team not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to load team")
	}

	membership, err := h.db.GetMembership(c.Context(), teamID, user.ID)
	if err != nil || !membership.IsOwner() {
		return jsonError(c, fiber.StatusForbidden, "Only the team owner can send invites")
	}

	plan, err := h.db.GetEffectivePlan(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to resolve plan")
	}
	memberCount, err := h.db.CountTeamMembers(c.Context(), teamID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to count members")
	}
	if decision := planlimit.Check("team member", memberCount, plan.TeamMembersLimit); !decision.Allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":        decision.Message,
			"upgrade_path": decision.UpgradePath,
		})
	}

	invite := &models.TeamInvite{
		TeamID: teamID,
		Email:  req.Email,
		Role:   req.Role,
		Status: models.InviteStatusPending,
		Token:  uuid.NewString(),
	}
	if err := h.db.CreateInvite(c.Context(), invite); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create invite")
	}

	acceptURL := buildAcceptURL(h.cfg.FrontendURL, invite.Token)
	h.notifier.NotifyTeamInvite(team, user, invite, acceptURL)
	metrics.InvitesTotal.WithLabelValues("invited").Inc()

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Invitation sent to " + invite.Email,
		"accept_url": acceptURL,
		"invite":     invite,
	})
}

// acceptRequest is the POST /team-accept body.
type acceptRequest struct {
	Token string `json:"token"`
}

// Accept handles POST /team-accept. The invite is consumed exactly
// once; joining an already-joined team still succeeds.
func (h *TeamHandler) Accept(c fiber.Ctx) error {
	user := currentUser(c)

	var req acceptRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" {
		return jsonError(c, fiber.StatusBadRequest, "token is required")
	}

	invite, err := h.db.GetInviteByToken(c.Context(), req.Token)
	if err != nil {
		if errors.Is(err, db.ErrInviteNotFound) {
			return jsonError(c, fiber.StatusNotFound, "Invite not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to load invite")
	}

	member := &models.TeamMember{
		TeamID: invite.TeamID,
		UserID: user.ID,
		Role:   invite.Role,
	}
	if err := h.db.AcceptInvite(c.Context(), invite.ID, member); err != nil {
		if errors.Is(err, db.ErrInviteConsumed) {
			return jsonError(c, fiber.StatusBadRequest, "Invite already used")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to accept invite")
	}

	if team, err := h.db.GetTeamByID(c.Context(), invite.TeamID); err == nil {
		h.notifier.NotifyInviteAccepted(c.Context(), team, user)
	}
	metrics.InvitesTotal.WithLabelValues("accepted").Inc()

	return c.JSON(fiber.Map{"success": true})
}

// AcceptPage renders the invite landing page for the browser flow.
func (h *TeamHandler) AcceptPage(c fiber.Ctx) error {
	tok := c.Query("token", "")
	if tok == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing invite token")
	}

	invite, err := h.db.GetInviteByToken(c.Context(), tok)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "invite not found")
	}

	team, err := h.db.GetTeamByID(c.Context(), invite.TeamID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "team not found")
	}

	return c.Render("invite", fiber.Map{
		"Title":      "Join " + team.Name,
		"SiteTitle":  h.cfg.SiteTitle,
		"SiteFooter": h.cfg.SiteFooter,
		"Team":       team,
		"Invite":     invite,
		"Consumed":   invite.Status != models.InviteStatusPending,
		"Token":      tok,
	})
}

// AcceptWeb handles the invite landing page's form post. Same flow as
// Accept, but session-authenticated and ending in a redirect.
func (h *TeamHandler) AcceptWeb(c fiber.Ctx) error {
	user := currentUser(c)

	tok := c.FormValue("token")
	if tok == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing invite token")
	}

	invite, err := h.db.GetInviteByToken(c.Context(), tok)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "invite not found")
	}

	member := &models.TeamMember{
		TeamID: invite.TeamID,
		UserID: user.ID,
		Role:   invite.Role,
	}
	if err := h.db.AcceptInvite(c.Context(), invite.ID, member); err != nil {
		if errors.Is(err, db.ErrInviteConsumed) {
			return fiber.NewError(fiber.StatusBadRequest, "invite already used")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to accept invite")
	}

	if team, err := h.db.GetTeamByID(c.Context(), invite.TeamID); err == nil {
		h.notifier.NotifyInviteAccepted(c.Context(), team, user)
	}
	metrics.InvitesTotal.WithLabelValues("accepted").Inc()

	return c.Redirect().To(h.cfg.FrontendURL)
}

// Create creates a new team owned by the caller.
func (h *TeamHandler) Create(c fiber.Ctx) error {
	user := currentUser(c)

	var body struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return jsonError(c, fiber.StatusBadRequest, "name is required")
	}

	team := &models.Team{Name: body.Name, OwnerID: user.ID}
	if err := h.db.CreateTeam(c.Context(), team); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create team")
	}

	return c.Status(fiber.StatusCreated).JSON(team)
}

// List returns the caller's teams.
func (h *TeamHandler) List(c fiber.Ctx) error {
	user := currentUser(c)

	teams, err := h.db.GetTeamsForUser(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch teams")
	}

	return c.JSON(fiber.Map{"teams": teams})
}

// Members returns a team's member roster; members only.
func (h *TeamHandler) Members(c fiber.Ctx) error {
	user := currentUser(c)

	teamID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid team id")
	}

	if _, err := h.db.GetMembership(c.Context(), teamID, user.ID); err != nil {
		return jsonError(c, fiber.StatusForbidden, "not a member of this team")
	}

	members, err := h.db.GetTeamMembers(c.Context(), teamID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch members")
	}

	return c.JSON(fiber.Map{"members": members})
}

// PendingInvites returns a team's outstanding invites; owner only.
func (h *TeamHandler) PendingInvites(c fiber.Ctx) error {
	user := currentUser(c)

	teamID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid team id")
	}

	membership, err := h.db.GetMembership(c.Context(), teamID, user.ID)
	if err != nil || !membership.IsOwner() {
		return jsonError(c, fiber.StatusForbidden, "Only the team owner can view invites")
	}

	invites, err := h.db.GetPendingInvitesByTeam(c.Context(), teamID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch invites")
	}

	return c.JSON(fiber.Map{"invites": invites})
}

// RemoveMember removes a member from a team; owner only, and the
// owner cannot remove themselves.
func (h *TeamHandler) RemoveMember(c fiber.Ctx) error {
	user := currentUser(c)

	teamID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid team id")
	}
	memberID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid user id")
	}

	membership, err := h.db.GetMembership(c.Context(), teamID, user.ID)
	if err != nil || !membership.IsOwner() {
		return jsonError(c, fiber.StatusForbidden, "Only the team owner can remove members")
	}
	if memberID == user.ID {
		return jsonError(c, fiber.StatusBadRequest, "the owner cannot leave their own team")
	}

	if err := h.db.RemoveTeamMember(c.Context(), teamID, memberID); err != nil {
		if errors.Is(err, db.ErrNotMember) {
			return jsonError(c, fiber.StatusNotFound, "member not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to remove member")
	}

	return c.JSON(fiber.Map{"success": true})
}

// RevokeInvite deletes a pending invite; owner only.
func (h *TeamHandler) RevokeInvite(c fiber.Ctx) error {
	user := currentUser(c)

	teamID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid team id")
	}
	inviteID, err := uuid.Parse(c.Params("inviteId"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid invite id")
	}

	membership, err := h.db.GetMembership(c.Context(), teamID, user.ID)
	if err != nil || !membership.IsOwner() {
		return jsonError(c, fiber.StatusForbidden, "Only the team owner can revoke invites")
	}

	if err := h.db.DeleteInvite(c.Context(), inviteID); err != nil {
		if errors.Is(err, db.ErrInviteNotFound) {
			return jsonError(c, fiber.StatusNotFound, "invite not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to revoke invite")
	}

	metrics.InvitesTotal.WithLabelValues("revoked").Inc()
	return c.JSON(fiber.Map{"success": true})
}
