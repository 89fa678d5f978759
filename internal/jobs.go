package internal

import (
	"context"
	"fmt"
	"sort"

	"car-finder/internal/adapters/scheduler"
	"car-finder/internal/configs"
	"car-finder/internal/core/port"
)

const (
	JobPriceHistory      = "price-history"
	JobSavedSearchAlerts = "saved-search-alerts"
	JobFeedSync          = "feed-sync"
)

// jobRunners - задачи, которые запускаются и планировщиком, и разово из CLI
func jobRunners(uc *useCases, logger port.LoggerPort) map[string]func(ctx context.Context) error {
	return map[string]func(ctx context.Context) error{
		JobPriceHistory: func(ctx context.Context) error {
			report, err := uc.recordHistory.Execute(ctx)
			if err != nil {
				return err
			}
			logger.Info("Price history snapshot finished", port.Fields{
				"processed": report.Processed, "inserted": report.Inserted, "skipped": report.Skipped,
			})
			return nil
		},
		JobSavedSearchAlerts: func(ctx context.Context) error {
			report, err := uc.sendAlerts.Execute(ctx)
			if err != nil {
				return err
			}
			logger.Info("Saved search alerts finished", port.Fields{
				"processed": report.Processed, "emails_sent": report.EmailsSent,
				"skipped": report.Skipped, "errors": len(report.Errors),
			})
			return nil
		},
		JobFeedSync: func(ctx context.Context) error {
			report, err := uc.syncFeeds.Execute(ctx)
			if err != nil {
				return err
			}
			logger.Info("Dealer feed sync finished", port.Fields{
				"dealers": len(report.Dealers), "failed": report.Failed,
			})
			return nil
		},
	}
}

func newScheduledJobs(uc *useCases, cfg configs.SchedulerConfig, baseLogger port.LoggerPort) []scheduler.Job {
	runners := jobRunners(uc, baseLogger.WithFields(port.Fields{"component": "jobs"}))
	return []scheduler.Job{
		{Name: JobPriceHistory, Interval: cfg.PriceHistoryInterval, Run: runners[JobPriceHistory]},
		{Name: JobSavedSearchAlerts, Interval: cfg.SavedSearchInterval, Run: runners[JobSavedSearchAlerts]},
		{Name: JobFeedSync, Interval: cfg.FeedSyncInterval, Run: runners[JobFeedSync]},
	}
}

// JobNames - список задач для справки CLI
func JobNames() []string {
	names := make([]string, 0, 3)
	for name := range jobRunners(nil, nil) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunJob выполняет одну задачу и освобождает ресурсы
func RunJob(ctx context.Context, name string) error {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading application configuration: %w", err)
	}

	infra, err := newInfrastructure(appConfig, "jobs")
	if err != nil {
		return err
	}
	defer infra.close()

	uc, err := newUseCases(infra)
	if err != nil {
		infra.appLogger.Error("Failed to initialize use cases", err, nil)
		return err
	}

	run, ok := jobRunners(uc, infra.appLogger.WithFields(port.Fields{"job": name}))[name]
	if !ok {
		return fmt.Errorf("unknown job '%s'", name)
	}

	infra.appLogger.Info("Running job", port.Fields{"job": name})
	if err := run(ctx); err != nil {
		infra.appLogger.Error("Job failed", err, port.Fields{"job": name})
		return fmt.Errorf("job %s failed: %w", name, err)
	}
	return nil
}
