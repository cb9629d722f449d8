package jobs

import (
	"context"
	"log/slog"

	"foodcourt/internal/pkg/ephemeral"

	"github.com/robfig/cron/v3"
)

// StoreSweepJob periodically evicts expired entries from the ephemeral store
// so write-heavy namespaces that are never read do not grow without bound.
type StoreSweepJob struct {
	store  ephemeral.Store
	cron   *cron.Cron
	logger *slog.Logger
}

// NewStoreSweepJob creates the sweep job. The Redis-backed store expires keys
// natively and its Sweep is a no-op, which makes the job harmless to run
// against either backend.
func NewStoreSweepJob(store ephemeral.Store, logger *slog.Logger) *StoreSweepJob {
	return &StoreSweepJob{
		store:  store,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With("component", "store_sweep_job"),
	}
}

// Start begins sweeping once a minute.
func (j *StoreSweepJob) Start() error {
	_, err := j.cron.AddFunc("0 * * * * *", func() {
		ctx := context.Background()

		evicted, sweepErr := j.store.Sweep(ctx)
		if sweepErr != nil {
			j.logger.ErrorContext(ctx, "Ephemeral store sweep failed", "error", sweepErr)
			return
		}
		if evicted > 0 {
			j.logger.DebugContext(ctx, "Ephemeral store swept", "evicted", evicted)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Store sweep job started (running every minute)")
	return nil
}

// Stop stops the sweep job.
func (j *StoreSweepJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Store sweep job stopped")
}
