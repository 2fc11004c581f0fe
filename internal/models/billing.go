package models

import (
	"time"

	"github.com/google/uuid"
)

// Billing entry statuses.
const (
	BillingPaid     = "paid"
	BillingPending  = "pending"
	BillingRefunded = "refunded"
)

// BillingEntry is one invoice in a user's billing history, recorded
// when the subscription changes to a paid plan.
type BillingEntry struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	InvoiceID   string    `json:"invoice_id"`
	AmountCents int       `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	InvoiceURL  string    `json:"invoice_url"`
	CreatedAt   time.Time `json:"created_at"`
}
