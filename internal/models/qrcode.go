package models

import (
	"time"

	"github.com/google/uuid"
)

// QRCode is a generated QR image pointing at a target URL, optionally
// tied to one of the user's links.
type QRCode struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	LinkID    *uuid.UUID     `json:"link_id,omitempty"`
	Name      string         `json:"name"`
	TargetURL string         `json:"target_url"`
	ImageURL  string         `json:"qr_image_url"`
	Style     map[string]any `json:"style"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
