// Package jobs provides scheduled background tasks for the platform.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle the periodic housekeeping the engine needs.
//
// # Available Jobs
//
// 1. StoreSweepJob - Runs every minute to evict expired ephemeral store entries
// 2. ConnectionReaperJob - Runs every second to close idle realtime connections
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with the shared store and hub
//	jobManager := jobs.NewJobManager(store, hub, maxIdle, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Sweep errors are logged and retried on the next tick
// - Reaped connections are counted and logged; reaping is idempotent
// - Failed job starts will stop any already running jobs
package jobs
