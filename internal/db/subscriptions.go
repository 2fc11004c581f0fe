package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"openup/internal/models"
	"openup/internal/planlimit"
)

// GetSubscriptionByUser retrieves a user's subscription with its plan
// joined. Returns ErrSubscriptionNotFound when the user is on free.
func (d *DB) GetSubscriptionByUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	query := `
		SELECT s.id, s.user_id, s.plan_id, s.status,
		       s.current_period_start, s.current_period_end, s.cancel_at_period_end,
		       p.id, p.code, p.name, p.price_monthly_cents, p.currency, p.links_limit,
		       p.qr_limit, p.team_members_limit, p.analytics_retention_days, p.features
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		WHERE s.user_id = $1
	`

	var sub models.Subscription
	var plan models.Plan
	var features int64
	err := d.Pool.QueryRow(ctx, query, userID).Scan(
		&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status,
		&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.CancelAtPeriodEnd,
		&plan.ID, &plan.Code, &plan.Name, &plan.PriceMonthlyCents, &plan.Currency,
		&plan.LinksLimit, &plan.QRLimit, &plan.TeamMembersLimit,
		&plan.AnalyticsRetentionDays, &features,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}

	plan.Features = planlimit.FeatureSet(features)
	sub.Plan = &plan
	return &sub, nil
}

// UpsertSubscription inserts or replaces a user's subscription when
// they change plan.
func (d *DB) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, plan_id, status, current_period_start, current_period_end, cancel_at_period_end)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET plan_id = EXCLUDED.plan_id,
		    status = EXCLUDED.status,
		    current_period_start = EXCLUDED.current_period_start,
		    current_period_end = EXCLUDED.current_period_end,
		    cancel_at_period_end = EXCLUDED.cancel_at_period_end
		RETURNING id
	`
	return d.Pool.QueryRow(ctx, query,
		sub.UserID, sub.PlanID, sub.Status,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd,
	).Scan(&sub.ID)
}
