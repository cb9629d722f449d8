package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"foodcourt/internal/pkg/ephemeral"
	"foodcourt/internal/realtime"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	storeSweepJob       *StoreSweepJob
	connectionReaperJob *ConnectionReaperJob
}

// NewJobManager creates a job manager with all required jobs.
func NewJobManager(
	store ephemeral.Store,
	hub *realtime.Hub,
	maxIdle time.Duration,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		storeSweepJob:       NewStoreSweepJob(store, logger),
		connectionReaperJob: NewConnectionReaperJob(hub, maxIdle, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.storeSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start store sweep job: %w", err)
	}

	if err := jm.connectionReaperJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.storeSweepJob.Stop()
		return fmt.Errorf("failed to start connection reaper job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.storeSweepJob.Stop()
	jm.connectionReaperJob.Stop()
}
