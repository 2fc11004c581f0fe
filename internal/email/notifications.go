package email

import (
	"context"
	"log"

	"github.com/google/uuid"

	"openup/internal/config"
	"openup/internal/models"
)

// ProfileGetter is the slice of the database the notifier needs.
type ProfileGetter interface {
	GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Notifier sends email notifications for team events.
type Notifier struct {
	service   *Service
	templates *Templates
	cfg       *config.Config
	db        ProfileGetter
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg *config.Config, db ProfileGetter) *Notifier {
	return &Notifier{
		service:   NewService(cfg),
		templates: NewTemplates(cfg),
		cfg:       cfg,
		db:        db,
	}
}

// NotifyTeamInvite sends the invitation email to the invitee.
func (n *Notifier) NotifyTeamInvite(team *models.Team, inviter *models.Profile, invite *models.TeamInvite, acceptURL string) {
	if !n.service.IsEnabled() {
		return
	}

	subject, htmlBody, textBody := n.templates.TeamInvite(team, inviter, invite.Role, acceptURL)
	n.service.SendAsync([]string{invite.Email}, subject, htmlBody, textBody)
}

// NotifyInviteAccepted tells the team owner someone joined.
func (n *Notifier) NotifyInviteAccepted(ctx context.Context, team *models.Team, member *models.Profile) {
	if !n.service.IsEnabled() {
		return
	}

	owner, err := n.db.GetProfileByID(ctx, team.OwnerID)
	if err != nil {
		log.Printf("Failed to get team owner: %v", err)
		return
	}

	subject, htmlBody, textBody := n.templates.InviteAccepted(team, member)
	n.service.SendAsync([]string{owner.Email}, subject, htmlBody, textBody)
}
