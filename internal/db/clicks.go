package db

import (
	"context"

	"github.com/google/uuid"

	"openup/internal/models"
)

// RecordClick inserts one visit row. Click totals are always derived
// from this table, never kept as inline counters.
func (d *DB) RecordClick(ctx context.Context, click *models.LinkClick) error {
	query := `
		INSERT INTO link_clicks (link_id, referrer, device_type, browser, os, country)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, clicked_at
	`
	return d.Pool.QueryRow(ctx, query,
		click.LinkID, click.Referrer, click.DeviceType, click.Browser, click.OS, click.Country,
	).Scan(&click.ID, &click.ClickedAt)
}

// CountClicks returns the total clicks for one link.
func (d *DB) CountClicks(ctx context.Context, linkID uuid.UUID) (int64, error) {
	var count int64
	err := d.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM link_clicks WHERE link_id = $1`, linkID,
	).Scan(&count)
	return count, err
}

// ClickCountsByUser returns per-link click totals for all of a user's
// links in one query.
func (d *DB) ClickCountsByUser(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int64, error) {
	query := `
		SELECT l.id, COUNT(c.id)
		FROM links l
		LEFT JOIN link_clicks c ON c.link_id = l.id
		WHERE l.user_id = $1
		GROUP BY l.id
	`
	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var id uuid.UUID
		var count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

// SlugClicks is one row of the per-slug click totals used by the
// metrics collector.
type SlugClicks struct {
	Slug  string
	Count int64
}

// GetClickTotals returns click totals per slug across all links.
func (d *DB) GetClickTotals(ctx context.Context) ([]SlugClicks, error) {
	query := `
		SELECT l.slug, COUNT(c.id)
		FROM links l
		JOIN link_clicks c ON c.link_id = l.id
		GROUP BY l.slug
	`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []SlugClicks
	for rows.Next() {
		var t SlugClicks
		if err := rows.Scan(&t.Slug, &t.Count); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// PruneClicks deletes click rows older than the retention window.
func (d *DB) PruneClicks(ctx context.Context, retentionDays int) (int64, error) {
	result, err := d.Pool.Exec(ctx,
		`DELETE FROM link_clicks WHERE clicked_at < NOW() - make_interval(days => $1)`,
		retentionDays,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
