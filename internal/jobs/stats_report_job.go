package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// StatsReportJob logs the coordinator's aggregate statistics once a minute.
type StatsReportJob struct {
	registry transactionRegistry
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewStatsReportJob(registry transactionRegistry, logger *slog.Logger) *StatsReportJob {
	return &StatsReportJob{
		registry: registry,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "stats_report_job"),
	}
}

func (j *StatsReportJob) Start() error {
	if _, err := j.cron.AddFunc(everyMinute, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stats report job started")
	return nil
}

func (j *StatsReportJob) run(ctx context.Context) {
	stats := j.registry.Stats()
	j.logger.InfoContext(ctx, "Transaction stats",
		"total", stats.Total,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"retries", stats.Retries,
		"in_flight", stats.InFlight,
		"average_duration", stats.AverageDuration,
	)
}

func (j *StatsReportJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Stats report job stopped")
}
