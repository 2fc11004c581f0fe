package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"openup/internal/config"
	"openup/internal/models"
	"openup/internal/planlimit"
)

const planColumns = `id, code, name, price_monthly_cents, currency, links_limit, qr_limit,
	team_members_limit, analytics_retention_days, features`

func scanPlan(row pgx.Row) (*models.Plan, error) {
	var p models.Plan
	var features int64
	err := row.Scan(
		&p.ID,
		&p.Code,
		&p.Name,
		&p.PriceMonthlyCents,
		&p.Currency,
		&p.LinksLimit,
		&p.QRLimit,
		&p.TeamMembersLimit,
		&p.AnalyticsRetentionDays,
		&features,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Features = planlimit.FeatureSet(features)
	return &p, nil
}

// UpsertPlan inserts or updates one catalog entry, keyed by code.
func (d *DB) UpsertPlan(ctx context.Context, entry config.PlanEntry, features planlimit.FeatureSet) error {
	query := `
		INSERT INTO plans (code, name, price_monthly_cents, currency, links_limit, qr_limit,
			team_members_limit, analytics_retention_days, features)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (code) DO UPDATE
		SET name = EXCLUDED.name,
		    price_monthly_cents = EXCLUDED.price_monthly_cents,
		    currency = EXCLUDED.currency,
		    links_limit = EXCLUDED.links_limit,
		    qr_limit = EXCLUDED.qr_limit,
		    team_members_limit = EXCLUDED.team_members_limit,
		    analytics_retention_days = EXCLUDED.analytics_retention_days,
		    features = EXCLUDED.features
	`
	_, err := d.Pool.Exec(ctx, query,
		entry.Code, entry.Name, entry.PriceMonthlyCents, entry.Currency,
		entry.LinksLimit, entry.QRLimit, entry.TeamMembersLimit,
		entry.AnalyticsRetentionDays, int64(features),
	)
	return err
}

// GetPlans retrieves the full catalog ordered by price.
func (d *DB) GetPlans(ctx context.Context) ([]models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans ORDER BY price_monthly_cents ASC`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// GetPlanByCode retrieves a plan by its code.
func (d *DB) GetPlanByCode(ctx context.Context, code string) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE code = $1`
	return scanPlan(d.Pool.QueryRow(ctx, query, code))
}

// GetEffectivePlan resolves the plan governing a user's quotas: the
// subscribed plan while the subscription is entitled, otherwise free.
func (d *DB) GetEffectivePlan(ctx context.Context, userID uuid.UUID) (*models.Plan, error) {
	sub, err := d.GetSubscriptionByUser(ctx, userID)
	if err != nil && !errors.Is(err, ErrSubscriptionNotFound) {
		return nil, err
	}
	if err == nil && sub.IsEntitled() && sub.Plan != nil {
		return sub.Plan, nil
	}
	return d.GetPlanByCode(ctx, models.PlanFree)
}
