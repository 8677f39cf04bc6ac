// Package di provides dependency injection for scheduler jobs.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/portfolio/internal/config"
	"github.com/aristath/portfolio/internal/reliability"
	"github.com/aristath/portfolio/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the scheduler and registers the maintenance and backup jobs.
// The scheduler is not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{}
	container.Scheduler = scheduler.New(log)

	// Store maintenance: quick check, WAL checkpoint, disk space
	instances.Maintenance = reliability.NewMaintenanceJob(container.PortfolioDB, log)
	if err := container.Scheduler.AddJob(cfg.MaintenanceSchedule, instances.Maintenance); err != nil {
		return nil, fmt.Errorf("failed to register maintenance job: %w", err)
	}

	// Offsite backups, only when a bucket is configured
	if cfg.Backup.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store, err := reliability.NewS3Store(ctx, cfg.Backup)
		if err != nil {
			return nil, fmt.Errorf("failed to create backup store: %w", err)
		}

		service := reliability.NewBackupService(container.PortfolioDB, store, cfg.DataDir, cfg.Backup.Retention, log)
		instances.Backup = reliability.NewBackupJob(service)
		if err := container.Scheduler.AddJob(cfg.Backup.Schedule, instances.Backup); err != nil {
			return nil, fmt.Errorf("failed to register backup job: %w", err)
		}
	} else {
		log.Info().Msg("Backups disabled, no bucket configured")
	}

	log.Info().Msg("Jobs registered")

	return instances, nil
}
