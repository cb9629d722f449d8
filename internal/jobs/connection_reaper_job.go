package jobs

import (
	"context"
	"log/slog"
	"time"

	"foodcourt/internal/realtime"

	"github.com/robfig/cron/v3"
)

// DefaultMaxIdle is how long a websocket may stay silent before the reaper
// closes it. Clients heartbeat well inside this window.
const DefaultMaxIdle = 90 * time.Second

// ConnectionReaperJob closes realtime connections whose peers stopped sending
// frames. Runs every second so a dead connection never lingers long enough to
// overflow its outbox with critical events.
type ConnectionReaperJob struct {
	hub     *realtime.Hub
	maxIdle time.Duration
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewConnectionReaperJob creates the reaper. maxIdle <= 0 falls back to
// DefaultMaxIdle.
func NewConnectionReaperJob(hub *realtime.Hub, maxIdle time.Duration, logger *slog.Logger) *ConnectionReaperJob {
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdle
	}
	return &ConnectionReaperJob{
		hub:     hub,
		maxIdle: maxIdle,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "connection_reaper_job"),
	}
}

// Start begins reaping idle connections every second.
func (j *ConnectionReaperJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", func() {
		if closed := j.hub.ReapIdle(j.maxIdle); closed > 0 {
			j.logger.Info("Reaped idle connections", "closed", closed)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Connection reaper job started (running every second)")
	return nil
}

// Stop stops the reaper job.
func (j *ConnectionReaperJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Connection reaper job stopped")
}
