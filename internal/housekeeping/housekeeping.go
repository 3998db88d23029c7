// Package housekeeping evicts stored jobs that fell out of the retention
// window. Pure maintenance: failures are logged, never propagated.
package housekeeping

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Store is the slice of the persistence layer the janitor needs.
type Store interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error)
	RefreshRecent(ctx context.Context) error
}

// Janitor runs the retention purge on a fixed interval and refreshes the
// recent-jobs materialization afterwards so the fast path never serves rows
// the purge just removed.
type Janitor struct {
	cron      *cron.Cron
	store     Store
	logger    *zap.Logger
	retention time.Duration
	spec      string
}

func New(store Store, logger *zap.Logger, interval, retention time.Duration) *Janitor {
	return &Janitor{
		cron:      cron.New(),
		store:     store,
		logger:    logger,
		retention: retention,
		spec:      fmt.Sprintf("@every %s", interval),
	}
}

// Start registers the maintenance job and starts the schedule.
func (j *Janitor) Start(ctx context.Context) error {
	_, err := j.cron.AddFunc(j.spec, func() {
		j.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	j.cron.Start()
	j.logger.Info("housekeeping started",
		zap.String("spec", j.spec),
		zap.Duration("retention", j.retention))
	return nil
}

// Stop shuts the schedule down, waiting for a running purge to finish.
func (j *Janitor) Stop() {
	stopCtx := j.cron.Stop()
	<-stopCtx.Done()
	j.logger.Info("housekeeping stopped")
}

// RunOnce executes a single purge-and-refresh cycle.
func (j *Janitor) RunOnce(ctx context.Context) {
	purged, err := j.store.PurgeOlderThan(ctx, j.retention)
	if err != nil {
		j.logger.Error("retention purge failed", zap.Error(err))
		return
	}

	if err := j.store.RefreshRecent(ctx); err != nil {
		j.logger.Error("recent jobs refresh failed", zap.Error(err))
	}

	j.logger.Info("retention purge complete",
		zap.Int64("purged", purged),
		zap.Duration("retention", j.retention))
}
