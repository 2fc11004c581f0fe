package email

import (
	"fmt"
	"html"

	"openup/internal/config"
	"openup/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #2563eb; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .button { display: inline-block; background: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 10px 0; }
        .button:hover { background: #1d4ed8; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        .value { color: #6b7280; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// TeamInvite generates the invitation email sent to a prospective
// team member.
func (t *Templates) TeamInvite(team *models.Team, inviter *models.Profile, role, acceptURL string) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] You've been invited to join %s", t.cfg.SiteTitle, team.Name)

	inviterName := inviter.FullName
	if inviterName == "" {
		inviterName = inviter.Email
	}

	content := fmt.Sprintf(`
        <p>%s has invited you to join the team <strong>%s</strong>.</p>

        <div class="info-box">
            <p><span class="label">Team:</span> <span class="value">%s</span></p>
            <p><span class="label">Role:</span> <span class="value">%s</span></p>
            <p><span class="label">Invited by:</span> <span class="value">%s (%s)</span></p>
        </div>

        <p style="text-align: center;">
            <a href="%s" class="button">Accept Invitation</a>
        </p>

        <p>If you weren't expecting this invitation, you can ignore this email.</p>
    `,
		html.EscapeString(inviterName),
		html.EscapeString(team.Name),
		html.EscapeString(team.Name),
		html.EscapeString(role),
		html.EscapeString(inviterName),
		html.EscapeString(inviter.Email),
		acceptURL,
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`You've been invited to join %s

Team: %s
Role: %s
Invited by: %s (%s)

Accept at: %s

If you weren't expecting this invitation, you can ignore this email.

--
%s
%s`,
		team.Name,
		team.Name,
		role,
		inviterName,
		inviter.Email,
		acceptURL,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return subject, htmlBody, textBody
}

// InviteAccepted notifies the team owner that an invite was accepted.
func (t *Templates) InviteAccepted(team *models.Team, member *models.Profile) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] %s joined %s", t.cfg.SiteTitle, member.Email, team.Name)

	content := fmt.Sprintf(`
        <p><strong>%s</strong> accepted their invitation and joined <strong>%s</strong>.</p>
    `,
		html.EscapeString(member.Email),
		html.EscapeString(team.Name),
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`%s accepted their invitation and joined %s.

--
%s
%s`,
		member.Email,
		team.Name,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return subject, htmlBody, textBody
}
