package db

import "errors"

// Domain-level database error sentinels.
var (
	// Profile errors
	ErrProfileNotFound = errors.New("profile not found")

	// Plan / subscription errors
	ErrPlanNotFound         = errors.New("plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// Link errors
	ErrLinkNotFound  = errors.New("link not found")
	ErrDuplicateSlug = errors.New("slug already exists")

	// QR code errors
	ErrQRCodeNotFound = errors.New("qr code not found")

	// Team errors
	ErrTeamNotFound = errors.New("team not found")
	ErrNotMember    = errors.New("not a member of this team")

	// Invite errors
	ErrInviteNotFound = errors.New("invite not found")
	ErrInviteConsumed = errors.New("invite already accepted or invalid")
)
