package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"parking/internal/core/application/txcoord"
)

// transactionRegistry is the part of the coordinator the jobs need.
type transactionRegistry interface {
	Cleanup(maxAge time.Duration) int
	Stats() txcoord.Stats
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	metricsCleanupJob *MetricsCleanupJob
	statsReportJob    *StatsReportJob
}

// NewJobManager creates a job manager for the coordinator's maintenance jobs.
// historyMaxAge is how long finished units stay in the history.
func NewJobManager(registry transactionRegistry, historyMaxAge time.Duration, logger *slog.Logger) *JobManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobManager{
		metricsCleanupJob: NewMetricsCleanupJob(registry, historyMaxAge, logger),
		statsReportJob:    NewStatsReportJob(registry, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.metricsCleanupJob.Start(); err != nil {
		return fmt.Errorf("failed to start metrics cleanup job: %w", err)
	}

	if err := jm.statsReportJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.metricsCleanupJob.Stop()
		return fmt.Errorf("failed to start stats report job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.statsReportJob.Stop()
	jm.metricsCleanupJob.Stop()
}
