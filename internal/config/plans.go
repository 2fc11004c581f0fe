package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"openup/internal/planlimit"
)

// PlanCatalog is the plans.yaml structure. The catalog is upserted into
// the plans table at startup so tier changes ship as config, not
// migrations.
type PlanCatalog struct {
	Plans []PlanEntry `yaml:"plans"`
}

// PlanEntry defines one subscription tier in the catalog.
type PlanEntry struct {
	Code                   string   `yaml:"code"`
	Name                   string   `yaml:"name"`
	PriceMonthlyCents      int      `yaml:"price_monthly_cents"`
	Currency               string   `yaml:"currency"`
	LinksLimit             int      `yaml:"links_limit"`
	QRLimit                int      `yaml:"qr_limit"`
	TeamMembersLimit       int      `yaml:"team_members_limit"`
	AnalyticsRetentionDays int      `yaml:"analytics_retention_days"`
	Features               []string `yaml:"features"`
}

// FeatureSet resolves the entry's feature names against the closed enum.
func (e *PlanEntry) FeatureSet() (planlimit.FeatureSet, error) {
	var s planlimit.FeatureSet
	for _, name := range e.Features {
		f, err := planlimit.ParseFeature(name)
		if err != nil {
			return 0, fmt.Errorf("plan %s: %w", e.Code, err)
		}
		s = s.Add(f)
	}
	return s, nil
}

// MaxRetentionDays returns the longest analytics retention window of
// any plan. Click rows older than this serve nobody.
func (c *PlanCatalog) MaxRetentionDays() int {
	max := 0
	for _, p := range c.Plans {
		if p.AnalyticsRetentionDays > max {
			max = p.AnalyticsRetentionDays
		}
	}
	if max == 0 {
		max = 30
	}
	return max
}

// LoadPlanCatalog loads the plan catalog YAML. A missing file falls
// back to the built-in default catalog.
func LoadPlanCatalog(path string) (*PlanCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultPlanCatalog(), nil
		}
		return nil, err
	}

	var catalog PlanCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse plan catalog: %w", err)
	}

	if len(catalog.Plans) == 0 {
		return nil, fmt.Errorf("plan catalog %s defines no plans", path)
	}

	for i := range catalog.Plans {
		if catalog.Plans[i].Code == "" {
			return nil, fmt.Errorf("plan catalog %s: entry %d has no code", path, i)
		}
		if catalog.Plans[i].Currency == "" {
			catalog.Plans[i].Currency = "eur"
		}
	}

	return &catalog, nil
}

// defaultPlanCatalog mirrors the shipped plans.yaml.
func defaultPlanCatalog() *PlanCatalog {
	return &PlanCatalog{Plans: []PlanEntry{
		{
			Code: "free", Name: "Free", Currency: "eur",
			LinksLimit: 5, QRLimit: 2, TeamMembersLimit: 1,
			AnalyticsRetentionDays: 30,
		},
		{
			Code: "starter", Name: "Starter", PriceMonthlyCents: 900, Currency: "eur",
			LinksLimit: 50, QRLimit: 20, TeamMembersLimit: 3,
			AnalyticsRetentionDays: 90,
			Features:               []string{"password_protection", "expiring_links"},
		},
		{
			Code: "pro", Name: "Pro", PriceMonthlyCents: 2900, Currency: "eur",
			LinksLimit: 500, QRLimit: 200, TeamMembersLimit: 10,
			AnalyticsRetentionDays: 365,
			Features: []string{
				"custom_domain", "analytics_export", "password_protection",
				"expiring_links", "deep_links", "branded_qr", "api_access",
				"team_collaboration",
			},
		},
		{
			Code: "business", Name: "Business", PriceMonthlyCents: 9900, Currency: "eur",
			LinksLimit: 5000, QRLimit: 2000, TeamMembersLimit: 50,
			AnalyticsRetentionDays: 730,
			Features: []string{
				"custom_domain", "analytics_export", "password_protection",
				"expiring_links", "geo_targeting", "deep_links", "branded_qr",
				"api_access", "team_collaboration", "priority_support",
				"white_label",
			},
		},
	}}
}
