package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zokybot/zoky-messenger-go/internal/logger"
)

const (
	jobSessionSweep = "session_sweep"
	jobCacheCleanup = "cache_cleanup"
)

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.WithError(err).Error("cron: "+msg, keysAndValues...)
}

// newScheduler registers the periodic jobs. Jobs never overlap with
// themselves and a panic inside one is logged instead of killing the process.
func (a *Application) newScheduler() (*cron.Cron, error) {
	cl := cronLogger{log: a.logger.WithModule("cron")}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	if _, err := c.AddFunc(a.cfg.SessionSweepSpec, func() { a.runJob(jobSessionSweep, a.sweepSessions) }); err != nil {
		return nil, fmt.Errorf("%s spec %q: %w", jobSessionSweep, a.cfg.SessionSweepSpec, err)
	}
	if _, err := c.AddFunc(a.cfg.CacheCleanupSpec, func() { a.runJob(jobCacheCleanup, a.cleanupSearchCache) }); err != nil {
		return nil, fmt.Errorf("%s spec %q: %w", jobCacheCleanup, a.cfg.CacheCleanupSpec, err)
	}
	return c, nil
}

// runJob times a job and records its outcome.
func (a *Application) runJob(name string, fn func(context.Context) error) {
	start := time.Now()
	err := fn(a.jobCtx)
	status := "success"
	if err != nil {
		status = "error"
		a.logger.WithError(err).WithField("job", name).Error("Background job failed")
	}
	a.metrics.RecordJob(name, status, time.Since(start).Seconds())
}

// sweepSessions drops idle sender sessions and refreshes the gauge.
func (a *Application) sweepSessions(_ context.Context) error {
	removed := a.sessions.Sweep(time.Now())
	remaining := a.sessions.Len()
	a.metrics.SetActiveSessions(remaining)
	if removed > 0 {
		a.logger.WithField("removed", removed).
			WithField("remaining", remaining).
			Debug("Session sweep complete")
	}
	return nil
}

// cleanupSearchCache deletes cached lookups older than the cache TTL.
func (a *Application) cleanupSearchCache(ctx context.Context) error {
	deleted, err := a.db.DeleteExpiredSearchResults(ctx)
	if err != nil {
		return fmt.Errorf("delete expired search results: %w", err)
	}
	a.logger.WithField("deleted", deleted).Info("Search cache cleanup complete")
	return nil
}
