package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"openup/internal/models"
)

const qrColumns = `id, user_id, link_id, name, target_url, image_url, style, created_at, updated_at`

func scanQRCode(row pgx.Row) (*models.QRCode, error) {
	var qr models.QRCode
	var style []byte
	err := row.Scan(
		&qr.ID,
		&qr.UserID,
		&qr.LinkID,
		&qr.Name,
		&qr.TargetURL,
		&qr.ImageURL,
		&style,
		&qr.CreatedAt,
		&qr.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQRCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(style) > 0 {
		if err := json.Unmarshal(style, &qr.Style); err != nil {
			return nil, err
		}
	}
	return &qr, nil
}

// CreateQRCode inserts a new QR code row.
func (d *DB) CreateQRCode(ctx context.Context, qr *models.QRCode) error {
	style, err := json.Marshal(qr.Style)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO qr_codes (user_id, link_id, name, target_url, image_url, style)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query,
		qr.UserID, qr.LinkID, qr.Name, qr.TargetURL, qr.ImageURL, style,
	).Scan(&qr.ID, &qr.CreatedAt, &qr.UpdatedAt)
}

// GetQRCodesByUser retrieves a user's QR codes, newest first.
func (d *DB) GetQRCodesByUser(ctx context.Context, userID uuid.UUID) ([]models.QRCode, error) {
	query := `SELECT ` + qrColumns + ` FROM qr_codes WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []models.QRCode
	for rows.Next() {
		qr, err := scanQRCode(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, *qr)
	}
	return codes, rows.Err()
}

// GetQRCodeByID retrieves a QR code by its ID.
func (d *DB) GetQRCodeByID(ctx context.Context, id uuid.UUID) (*models.QRCode, error) {
	query := `SELECT ` + qrColumns + ` FROM qr_codes WHERE id = $1`
	return scanQRCode(d.Pool.QueryRow(ctx, query, id))
}

// CountQRCodesByUser counts a user's QR codes for the plan-limit gate.
func (d *DB) CountQRCodesByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM qr_codes WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// UpdateQRCode updates a QR code's editable fields, scoped to its owner.
func (d *DB) UpdateQRCode(ctx context.Context, qr *models.QRCode) error {
	style, err := json.Marshal(qr.Style)
	if err != nil {
		return err
	}

	query := `
		UPDATE qr_codes
		SET name = $1, target_url = $2, image_url = $3, style = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
		RETURNING updated_at
	`
	err = d.Pool.QueryRow(ctx, query,
		qr.Name, qr.TargetURL, qr.ImageURL, style, qr.ID, qr.UserID,
	).Scan(&qr.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrQRCodeNotFound
	}
	return err
}

// DeleteQRCode deletes a QR code, scoped to its owner.
func (d *DB) DeleteQRCode(ctx context.Context, id, userID uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `DELETE FROM qr_codes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrQRCodeNotFound
	}
	return nil
}
