package models

import (
	"time"

	"github.com/google/uuid"
)

// Link represents a short link owned by a user. Click counts live in
// link_clicks and are aggregated on read, never stored inline.
type Link struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	OriginalURL  string     `json:"original_url"`
	Type         string     `json:"type"` // "url" or "link_in_bio"
	IsActive     bool       `json:"is_active"`
	PasswordHash *string    `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	ClickLimit   *int       `json:"click_limit,omitempty"`
	Position     int        `json:"position"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Link types.
const (
	LinkTypeURL = "url"
	LinkTypeBio = "link_in_bio"
)

// Expired reports whether the link's expiration has passed.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// OverClickLimit reports whether the link has used up its click budget.
func (l *Link) OverClickLimit(clicks int64) bool {
	return l.ClickLimit != nil && clicks >= int64(*l.ClickLimit)
}

// PasswordProtected reports whether the link requires a key to resolve.
func (l *Link) PasswordProtected() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}

// LinkClick is one recorded visit to a link.
type LinkClick struct {
	ID         uuid.UUID `json:"id"`
	LinkID     uuid.UUID `json:"link_id"`
	ClickedAt  time.Time `json:"clicked_at"`
	Referrer   string    `json:"referrer"`
	DeviceType string    `json:"device_type"`
	Browser    string    `json:"browser"`
	OS         string    `json:"os"`
	Country    string    `json:"country"`
}
