package models

import (
	"time"

	"github.com/google/uuid"
)

// Team roles.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// ValidRole reports whether a role string is one of the known team roles.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Team is a group of users collaborating on a shared workspace.
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamMember is one user's membership in a team.
// (team_id, user_id) is unique; a duplicate insert means the user
// already joined.
type TeamMember struct {
	ID        uuid.UUID `json:"id"`
	TeamID    uuid.UUID `json:"team_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	// Populated by queries that join profiles.
	Profile *Profile `json:"profile,omitempty"`
}

// IsOwner reports whether the membership carries the owner role.
func (m *TeamMember) IsOwner() bool {
	return m.Role == RoleOwner
}

// Invite statuses. An invite transitions pending -> accepted exactly once.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
)

// TeamInvite is a pending invitation to join a team, redeemed by token.
type TeamInvite struct {
	ID        uuid.UUID `json:"id"`
	TeamID    uuid.UUID `json:"team_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
