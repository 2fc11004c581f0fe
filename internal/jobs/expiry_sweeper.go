// Package jobs contains the background loops: the link expiry sweeper
// and the analytics retention pruner.
package jobs

import (
	"context"
	"log"
	"time"

	"openup/internal/db"
)

// ExpirySweeper disables links whose expiration has passed or whose
// click budget is used up, so the redirect edge and the dashboard see
// a consistent is_active flag.
type ExpirySweeper struct {
	db       *db.DB
	interval time.Duration
}

// NewExpirySweeper creates a new expiry sweeper.
func NewExpirySweeper(database *db.DB, interval time.Duration) *ExpirySweeper {
	return &ExpirySweeper{db: database, interval: interval}
}

// Start begins the background sweep loop.
func (s *ExpirySweeper) Start(ctx context.Context) {
	log.Printf("Expiry sweeper started (interval: %v)", s.interval)

	// Run immediately on start
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	expired, err := s.db.DeactivateExpiredLinks(ctx, time.Now())
	if err != nil {
		log.Printf("Expiry sweeper: failed to deactivate expired links: %v", err)
	} else if expired > 0 {
		log.Printf("Expiry sweeper: deactivated %d expired links", expired)
	}

	overLimit, err := s.db.DeactivateOverLimitLinks(ctx)
	if err != nil {
		log.Printf("Expiry sweeper: failed to deactivate over-limit links: %v", err)
	} else if overLimit > 0 {
		log.Printf("Expiry sweeper: deactivated %d over-limit links", overLimit)
	}
}

// RetentionPruner deletes click rows older than the longest analytics
// retention window of any plan, keeping the clicks table bounded.
type RetentionPruner struct {
	db            *db.DB
	interval      time.Duration
	retentionDays int
}

// NewRetentionPruner creates a new retention pruner.
func NewRetentionPruner(database *db.DB, interval time.Duration, retentionDays int) *RetentionPruner {
	return &RetentionPruner{db: database, interval: interval, retentionDays: retentionDays}
}

// Start begins the background prune loop.
func (p *RetentionPruner) Start(ctx context.Context) {
	log.Printf("Retention pruner started (interval: %v, retention: %d days)", p.interval, p.retentionDays)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Retention pruner stopped")
			return
		case <-ticker.C:
			pruned, err := p.db.PruneClicks(ctx, p.retentionDays)
			if err != nil {
				log.Printf("Retention pruner: failed to prune clicks: %v", err)
			} else if pruned > 0 {
				log.Printf("Retention pruner: pruned %d click rows", pruned)
			}
		}
	}
}
