package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription statuses, mirroring the billing provider's lifecycle.
const (
	SubStatusActive     = "active"
	SubStatusTrialing   = "trialing"
	SubStatusPastDue    = "past_due"
	SubStatusCanceled   = "canceled"
	SubStatusIncomplete = "incomplete"
	SubStatusUnpaid     = "unpaid"
)

// Subscription links a user to a paid plan. A user without a
// subscription row is on the free plan.
type Subscription struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	PlanID             uuid.UUID `json:"plan_id"`
	Status             string    `json:"status"`
	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`
	CancelAtPeriodEnd  bool      `json:"cancel_at_period_end"`

	// Populated by queries that join plans.
	Plan *Plan `json:"plan,omitempty"`
}

// IsEntitled reports whether the subscription grants access to its plan.
// Past-due and canceled subscriptions fall back to the free plan.
func (s *Subscription) IsEntitled() bool {
	return s.Status == SubStatusActive || s.Status == SubStatusTrialing
}
