// Package metrics exposes Prometheus metrics: live counters for
// redirect and invite activity, plus a collector that reads per-slug
// click totals from the database on each scrape.
package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"openup/internal/db"
)

var (
	slugClicksDesc = prometheus.NewDesc(
		"openup_slug_clicks_total",
		"Total recorded clicks by slug",
		[]string{"slug"},
		nil,
	)

	// RedirectsTotal counts redirect resolutions by outcome.
	RedirectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openup_redirects_total",
			Help: "Total redirect resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// InvitesTotal counts team invite operations by action.
	InvitesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openup_team_invites_total",
			Help: "Total team invite operations by action",
		},
		[]string{"action"},
	)
)

// ClickCollector is a custom Prometheus collector that reads per-slug
// click totals from the database on each scrape.
type ClickCollector struct {
	db *db.DB
}

// Describe sends the metric descriptor to the channel.
func (c *ClickCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- slugClicksDesc
}

// Collect queries the database for click totals and emits them as counters.
func (c *ClickCollector) Collect(ch chan<- prometheus.Metric) {
	totals, err := c.db.GetClickTotals(context.Background())
	if err != nil {
		slog.Error("failed to collect click metrics", "error", err)
		return
	}
	for _, t := range totals {
		ch <- prometheus.MustNewConstMetric(
			slugClicksDesc,
			prometheus.CounterValue,
			float64(t.Count),
			t.Slug,
		)
	}
}

var initOnce sync.Once

// Init registers the collectors. Must be called once at startup.
func Init(database *db.DB) {
	initOnce.Do(func() {
		prometheus.MustRegister(RedirectsTotal, InvitesTotal)
		prometheus.MustRegister(&ClickCollector{db: database})
	})
}
