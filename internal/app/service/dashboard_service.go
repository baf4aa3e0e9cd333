package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

// DashboardService keeps the node health message fresh: once per interval, and on
// demand whenever a node connects or drops.
type DashboardService struct {
	nodes    NodeSource
	pub      StatusPublisher
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewDashboardService(nodes NodeSource, pub StatusPublisher, interval time.Duration, log zerolog.Logger) *DashboardService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &DashboardService{
		nodes:    nodes,
		pub:      pub,
		interval: interval,
		log:      log.With().Str("component", "dashboard").Logger(),
		now:      time.Now,
	}
}

// Refresh publishes one report built from the current node snapshots.
func (d *DashboardService) Refresh(ctx context.Context) {
	r := domain.NewStatusReport(d.nodes.Snapshots(), d.now())
	d.log.Debug().Int("nodes", len(r.Nodes)).Str("health", r.Health.String()).Msg("refresh")
	d.pub.PublishStatus(ctx, r)
}

// Trigger refreshes out of band without blocking the caller. Overlapping refreshes
// are absorbed by the idempotent upsert on the publishing side.
func (d *DashboardService) Trigger(ctx context.Context) {
	go d.Refresh(ctx)
}

// Run refreshes right away, then on every tick until ctx is done.
func (d *DashboardService) Run(ctx context.Context) {
	d.Refresh(ctx)
	t := time.NewTicker(d.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			d.Refresh(ctx)
		}
	}
}
