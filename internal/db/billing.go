package db

import (
	"context"

	"github.com/google/uuid"

	"openup/internal/models"
)

// GetBillingHistory retrieves a user's invoices, newest first.
func (d *DB) GetBillingHistory(ctx context.Context, userID uuid.UUID) ([]models.BillingEntry, error) {
	query := `
		SELECT id, user_id, invoice_id, amount_cents, currency, status, invoice_url, created_at
		FROM billing_history
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.BillingEntry
	for rows.Next() {
		var e models.BillingEntry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.InvoiceID, &e.AmountCents, &e.Currency, &e.Status, &e.InvoiceURL, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertBillingEntry records one invoice for a plan change.
func (d *DB) InsertBillingEntry(ctx context.Context, entry *models.BillingEntry) error {
	query := `
		INSERT INTO billing_history (user_id, invoice_id, amount_cents, currency, status, invoice_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return d.Pool.QueryRow(ctx, query,
		entry.UserID, entry.InvoiceID, entry.AmountCents, entry.Currency, entry.Status, entry.InvoiceURL,
	).Scan(&entry.ID, &entry.CreatedAt)
}
