package main

import (
	"context"
	"fmt"
	"time"

	"swasthyaflow/internal/jobs"
	"swasthyaflow/internal/stream"
	"swasthyaflow/pkg/logger"
)

func (app *Application) initJobs() error {
	if app.registry == nil {
		logger.WarnCtx(app.ctx, "Subscriber registry not initialized yet, skipping background task registration")
		return nil
	}

	manager := jobs.NewManager(app.ctx, jobs.WithLocation(app.location))
	manager.Register(newSummaryRefreshJob(app.config.Analytics.Refresh(), app.registry))

	app.jobsManager = manager
	return nil
}

// summaryRefreshJob rebroadcasts to every open channel on the hour so dashboards
// roll over hourly buckets and the day boundary without waiting for a mutation.
type summaryRefreshJob struct {
	interval time.Duration
	registry *stream.Registry
}

func newSummaryRefreshJob(interval time.Duration, registry *stream.Registry) jobs.Job {
	if interval <= 0 {
		interval = time.Hour
	}
	return &summaryRefreshJob{
		interval: interval,
		registry: registry,
	}
}

func (j *summaryRefreshJob) Name() string {
	return "analytics-summary-refresh"
}

func (j *summaryRefreshJob) Interval() time.Duration {
	return j.interval
}

func (j *summaryRefreshJob) AlignToInterval() bool {
	return true
}

func (j *summaryRefreshJob) Run(ctx context.Context) error {
	if j.registry == nil {
		return fmt.Errorf("subscriber registry not configured")
	}

	channels := j.registry.Total()
	if channels == 0 {
		return nil
	}

	logger.InfoCtx(ctx, "refreshing analytics for %d open channels", channels)
	j.registry.BroadcastAll(ctx)
	return nil
}
