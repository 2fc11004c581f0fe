package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"openup/internal/models"
)

const linkColumns = `id, user_id, slug, title, original_url, type, is_active,
	password_hash, expires_at, click_limit, position, created_at, updated_at`

func scanLink(row pgx.Row) (*models.Link, error) {
	var link models.Link
	err := row.Scan(
		&link.ID,
		&link.UserID,
		&link.Slug,
		&link.Title,
		&link.OriginalURL,
		&link.Type,
		&link.IsActive,
		&link.PasswordHash,
		&link.ExpiresAt,
		&link.ClickLimit,
		&link.Position,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func scanLinks(rows pgx.Rows) ([]models.Link, error) {
	defer rows.Close()

	var links []models.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}
	return links, rows.Err()
}

// CreateLink inserts a new link at the end of the owner's ordering.
func (d *DB) CreateLink(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (user_id, slug, title, original_url, type, is_active,
			password_hash, expires_at, click_limit, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			(SELECT COALESCE(MAX(position), -1) + 1 FROM links WHERE user_id = $1))
		RETURNING id, position, created_at, updated_at
	`

	linkType := link.Type
	if linkType == "" {
		linkType = models.LinkTypeURL
	}

	err := d.Pool.QueryRow(ctx, query,
		link.UserID,
		link.Slug,
		link.Title,
		link.OriginalURL,
		linkType,
		link.IsActive,
		link.PasswordHash,
		link.ExpiresAt,
		link.ClickLimit,
	).Scan(&link.ID, &link.Position, &link.CreatedAt, &link.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSlug
		}
		return err
	}

	link.Type = linkType
	return nil
}

// GetLinksByUser retrieves all links owned by a user in display order.
func (d *DB) GetLinksByUser(ctx context.Context, userID uuid.UUID) ([]models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE user_id = $1 ORDER BY position ASC, created_at ASC`
	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanLinks(rows)
}

// GetActiveLinksByUser retrieves a user's active links for the public
// bio page.
func (d *DB) GetActiveLinksByUser(ctx context.Context, userID uuid.UUID) ([]models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE user_id = $1 AND is_active ORDER BY position ASC`
	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanLinks(rows)
}

// GetLinkByID retrieves a link by its ID.
func (d *DB) GetLinkByID(ctx context.Context, id uuid.UUID) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`
	return scanLink(d.Pool.QueryRow(ctx, query, id))
}

// GetLinkBySlug retrieves a link by slug for redirect resolution.
func (d *DB) GetLinkBySlug(ctx context.Context, slug string) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE slug = $1`
	return scanLink(d.Pool.QueryRow(ctx, query, slug))
}

// CountLinksByUser counts a user's links for the plan-limit gate.
func (d *DB) CountLinksByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM links WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// UpdateLink updates a link's editable fields, scoped to its owner.
func (d *DB) UpdateLink(ctx context.Context, link *models.Link) error {
	query := `
		UPDATE links
		SET title = $1, original_url = $2, is_active = $3, password_hash = $4,
		    expires_at = $5, click_limit = $6, updated_at = NOW()
		WHERE id = $7 AND user_id = $8
		RETURNING updated_at
	`
	err := d.Pool.QueryRow(ctx, query,
		link.Title, link.OriginalURL, link.IsActive, link.PasswordHash,
		link.ExpiresAt, link.ClickLimit, link.ID, link.UserID,
	).Scan(&link.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrLinkNotFound
	}
	return err
}

// DeleteLink deletes a link, scoped to its owner.
func (d *DB) DeleteLink(ctx context.Context, id, userID uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `DELETE FROM links WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// ReorderLinks rewrites the positions of a user's links from an
// ordered id list, in one transaction. IDs not owned by the user are
// ignored by the WHERE clause rather than failing the whole reorder.
func (d *DB) ReorderLinks(ctx context.Context, userID uuid.UUID, orderedIDs []uuid.UUID) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, id := range orderedIDs {
		if _, err := tx.Exec(ctx,
			`UPDATE links SET position = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
			i, id, userID,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// DeactivateExpiredLinks disables links whose expiration has passed.
// Returns the number of links swept.
func (d *DB) DeactivateExpiredLinks(ctx context.Context, now time.Time) (int64, error) {
	result, err := d.Pool.Exec(ctx,
		`UPDATE links SET is_active = FALSE, updated_at = NOW()
		 WHERE is_active AND expires_at IS NOT NULL AND expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// DeactivateOverLimitLinks disables links that have reached their
// click limit.
func (d *DB) DeactivateOverLimitLinks(ctx context.Context) (int64, error) {
	result, err := d.Pool.Exec(ctx, `
		UPDATE links SET is_active = FALSE, updated_at = NOW()
		WHERE is_active AND click_limit IS NOT NULL
		  AND click_limit <= (SELECT COUNT(*) FROM link_clicks WHERE link_clicks.link_id = links.id)
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
