package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents a user account authenticated via OIDC.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Sub       string    `json:"sub"` // OIDC subject identifier
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Username  string    `json:"username"` // public bio page slug
	AvatarURL string    `json:"avatar_url"`
	Bio       string    `json:"bio"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
