// Package jobs runs periodic background work next to the HTTP server.
package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/iliyamo/car-pooling/internal/model"
)

// Auditable is the part of the engine the audit needs.
type Auditable interface {
	CheckInvariants() error
	Stats() model.PoolStats
}

// StatsSink receives the fleet snapshot taken by each audit.
type StatsSink interface {
	SetStats(model.PoolStats)
}

// AuditJob checks the engine's seat accounting and refreshes the fleet
// gauges.
type AuditJob struct {
	Engine Auditable
	Sink   StatsSink
	Log    *zap.Logger
}

func NewAuditJob(engine Auditable, sink StatsSink, log *zap.Logger) *AuditJob {
	return &AuditJob{Engine: engine, Sink: sink, Log: log.Named("audit")}
}

// Run performs one audit.  A failed invariant check is returned and the
// gauges are still refreshed.
func (j *AuditJob) Run() error {
	stats := j.Engine.Stats()
	if j.Sink != nil {
		j.Sink.SetStats(stats)
	}
	if err := j.Engine.CheckInvariants(); err != nil {
		return fmt.Errorf("audit: allocation state inconsistent: %w", err)
	}
	j.Log.Debug("allocation state consistent",
		zap.Int("cars", stats.Cars),
		zap.Int("free_seats", stats.FreeSeats),
		zap.Int("groups_seated", stats.GroupsSeated),
		zap.Int("groups_waiting", stats.GroupsWaiting),
	)
	return nil
}

// Schedule registers the audit on a new cron scheduler using spec
// (standard cron syntax or descriptors such as "@every 1m").  The caller
// starts and stops the returned scheduler.
func (j *AuditJob) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := j.Run(); err != nil {
			j.Log.Error("audit failed", zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("audit: invalid schedule %q: %w", spec, err)
	}
	return c, nil
}
