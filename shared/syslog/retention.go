package syslog

import (
	"context"
	"time"

	"github.com/a2z-dev/a2z/shared/logger"
)

type PruneStorage interface {
	PruneLogs(ctx context.Context, before time.Time) (int64, error)
}

// CleanupStats describes one retention run.
type CleanupStats struct {
	RunAt      time.Time
	Cutoff     time.Time
	Deleted    int64
	DurationMs int64
}

// Janitor removes system log entries older than the retention window.
type Janitor struct {
	storage   PruneStorage
	retention time.Duration
	now       func() time.Time
}

func NewJanitor(storage PruneStorage, retention time.Duration) *Janitor {
	return &Janitor{storage: storage, retention: retention, now: time.Now}
}

// RunCleanup deletes everything logged before now minus the retention window.
func (j *Janitor) RunCleanup(ctx context.Context) (CleanupStats, error) {
	start := j.now()
	stats := CleanupStats{RunAt: start, Cutoff: start.Add(-j.retention)}

	deleted, err := j.storage.PruneLogs(ctx, stats.Cutoff)
	if err != nil {
		return stats, err
	}
	stats.Deleted = deleted
	stats.DurationMs = j.now().Sub(start).Milliseconds()
	return stats, nil
}

// StartBackgroundCleanup runs RunCleanup every interval until ctx is cancelled.
func (j *Janitor) StartBackgroundCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started system log retention",
		"component", "syslog_janitor",
		"interval", interval,
		"retention", j.retention)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				stats, err := j.RunCleanup(ctx)
				if err != nil {
					logger.Log.Error("system log cleanup failed", "component", "syslog_janitor", "error", err)
					continue
				}
				logger.Log.Info("system log cleanup completed",
					"component", "syslog_janitor",
					"deleted", stats.Deleted,
					"cutoff", stats.Cutoff,
					"duration_ms", stats.DurationMs)
			case <-ctx.Done():
				logger.Log.Info("system log retention shutting down", "component", "syslog_janitor")
				return
			}
		}
	}()
}
