package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultHistoryMaxAge is used when no positive age is configured.
	DefaultHistoryMaxAge = time.Hour

	everyMinute = "0 * * * * *"
)

// MetricsCleanupJob evicts old entries from the coordinator's history of
// finished units. Aggregate counters are not affected.
type MetricsCleanupJob struct {
	registry transactionRegistry
	maxAge   time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewMetricsCleanupJob(registry transactionRegistry, maxAge time.Duration, logger *slog.Logger) *MetricsCleanupJob {
	if maxAge <= 0 {
		maxAge = DefaultHistoryMaxAge
	}
	return &MetricsCleanupJob{
		registry: registry,
		maxAge:   maxAge,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "metrics_cleanup_job"),
	}
}

// Start schedules the cleanup at the top of every minute.
func (j *MetricsCleanupJob) Start() error {
	if _, err := j.cron.AddFunc(everyMinute, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Metrics cleanup job started", "max_age", j.maxAge)
	return nil
}

func (j *MetricsCleanupJob) run(ctx context.Context) int {
	removed := j.registry.Cleanup(j.maxAge)
	if removed > 0 {
		j.logger.DebugContext(ctx, "Evicted finished units from history", "removed", removed)
	}
	return removed
}

// Stop stops the job and waits for a running cleanup to return.
func (j *MetricsCleanupJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Metrics cleanup job stopped")
}
