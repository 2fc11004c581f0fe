package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"openup/internal/models"
)

const profileColumns = `id, sub, email, full_name, username, avatar_url, bio, website, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID,
		&p.Sub,
		&p.Email,
		&p.FullName,
		&p.Username,
		&p.AvatarURL,
		&p.Bio,
		&p.Website,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertProfile inserts or refreshes a profile keyed by OIDC subject.
// Called on every login callback.
func (d *DB) UpsertProfile(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (sub, email, full_name, username, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sub) DO UPDATE
		SET email = EXCLUDED.email,
		    full_name = EXCLUDED.full_name,
		    avatar_url = EXCLUDED.avatar_url,
		    updated_at = NOW()
		RETURNING id, username, bio, website, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query,
		p.Sub, p.Email, p.FullName, p.Username, p.AvatarURL,
	).Scan(&p.ID, &p.Username, &p.Bio, &p.Website, &p.CreatedAt, &p.UpdatedAt)
}

// GetProfileByID retrieves a profile by its ID.
func (d *DB) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(d.Pool.QueryRow(ctx, query, id))
}

// GetProfileByUsername retrieves a profile by its public username.
func (d *DB) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE username = $1`
	return scanProfile(d.Pool.QueryRow(ctx, query, username))
}

// UpdateProfile updates the user-editable profile fields.
func (d *DB) UpdateProfile(ctx context.Context, p *models.Profile) error {
	query := `
		UPDATE profiles
		SET full_name = $1, username = $2, avatar_url = $3, bio = $4, website = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`
	err := d.Pool.QueryRow(ctx, query,
		p.FullName, p.Username, p.AvatarURL, p.Bio, p.Website, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrProfileNotFound
	}
	return err
}
