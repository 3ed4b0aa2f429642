package services

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/Faisal-Sha/eco-product-task/internal/domain"
	"github.com/Faisal-Sha/eco-product-task/pkg/logger"
)

// StatsReporter periodically pushes the hub's connection snapshot to
// the admin room so the admin console sees live numbers without
// polling the stats endpoint.
type StatsReporter struct {
	broadcaster domain.ProductBroadcaster
	schedule    string
	cron        *cron.Cron
	log         logger.Logger
}

func NewStatsReporter(broadcaster domain.ProductBroadcaster, schedule string, log logger.Logger) *StatsReporter {
	return &StatsReporter{
		broadcaster: broadcaster,
		schedule:    schedule,
		cron:        cron.New(),
		log:         log,
	}
}

func (r *StatsReporter) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.report); err != nil {
		return fmt.Errorf("invalid stats schedule %q: %w", r.schedule, err)
	}
	r.cron.Start()
	r.log.Info("Stats reporter started", "schedule", r.schedule)
	return nil
}

func (r *StatsReporter) Stop() {
	r.cron.Stop()
	r.log.Info("Stats reporter stopped")
}

func (r *StatsReporter) report() {
	stats := r.broadcaster.ConnectionStats()
	r.broadcaster.SendAdminAlert(domain.AdminAlert{
		Type: domain.EventStatsSnapshot,
		Message: fmt.Sprintf("%d connections, %d authenticated, %d admins",
			stats.TotalConnections, stats.AuthenticatedUsers, stats.AdminConnections),
		Stats: &stats,
	})
	r.log.Debug("Reported connection stats",
		"total", stats.TotalConnections,
		"authenticated", stats.AuthenticatedUsers,
		"admins", stats.AdminConnections)
}
