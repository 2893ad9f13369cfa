// Package jobs provides scheduled background tasks for the parking service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to keep the transaction coordinator's bookkeeping bounded and visible.
//
// # Available Jobs
//
// 1. MetricsCleanupJob - Runs every minute and evicts finished units older than the configured age from the history
// 2. StatsReportJob - Runs every minute and logs aggregate transaction statistics
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(coordinator, historyMaxAge, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		return fmt.Errorf("failed to start jobs: %w", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Failed job starts stop any already running jobs.
package jobs
