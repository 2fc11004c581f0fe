package models

import (
	"github.com/google/uuid"

	"openup/internal/planlimit"
)

// Plan codes, ordered by price.
const (
	PlanFree     = "free"
	PlanStarter  = "starter"
	PlanPro      = "pro"
	PlanBusiness = "business"
)

// Plan is a subscription tier bounding resource quotas and enabled features.
type Plan struct {
	ID                     uuid.UUID            `json:"id"`
	Code                   string               `json:"code"`
	Name                   string               `json:"name"`
	PriceMonthlyCents      int                  `json:"price_monthly_cents"`
	Currency               string               `json:"currency"`
	LinksLimit             int                  `json:"links_limit"`
	QRLimit                int                  `json:"qr_limit"`
	TeamMembersLimit       int                  `json:"team_members_limit"`
	AnalyticsRetentionDays int                  `json:"analytics_retention_days"`
	Features               planlimit.FeatureSet `json:"features"`
}

// PriceMonthly returns the monthly price in currency units.
func (p *Plan) PriceMonthly() float64 {
	return float64(p.PriceMonthlyCents) / 100
}

// HasFeature reports whether the plan enables a feature.
func (p *Plan) HasFeature(f planlimit.Feature) bool {
	return p.Features.Has(f)
}
