package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"openup/internal/models"
)

// GetTheme retrieves a user's bio theme. Users who never saved one get
// the default theme.
func (d *DB) GetTheme(ctx context.Context, userID uuid.UUID) (models.BioTheme, error) {
	var raw []byte
	err := d.Pool.QueryRow(ctx,
		`SELECT theme FROM bio_themes WHERE user_id = $1`, userID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultBioTheme(), nil
	}
	if err != nil {
		return models.BioTheme{}, err
	}

	var theme models.BioTheme
	if err := json.Unmarshal(raw, &theme); err != nil {
		return models.BioTheme{}, err
	}
	return theme, nil
}

// SaveTheme upserts a user's bio theme.
func (d *DB) SaveTheme(ctx context.Context, userID uuid.UUID, theme models.BioTheme) error {
	raw, err := json.Marshal(theme)
	if err != nil {
		return err
	}

	_, err = d.Pool.Exec(ctx, `
		INSERT INTO bio_themes (user_id, theme)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET theme = EXCLUDED.theme, updated_at = NOW()
	`, userID, raw)
	return err
}
