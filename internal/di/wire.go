// Package di provides dependency injection wiring and initialization.
package di

import (
	"fmt"

	"github.com/aristath/portfolio/internal/config"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Open the store and the journal
// 2. Initialize repositories
// 3. Initialize services (seed catalog, bootstrap admin)
// 4. Register jobs
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, *JobInstances, error) {
	// Step 1: Store and journal
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	// Step 2: Repositories
	if err := InitializeRepositories(container, log); err != nil {
		container.Close()
		return nil, nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	// Step 3: Services
	if err := InitializeServices(container, cfg, log); err != nil {
		container.Close()
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Step 4: Jobs
	jobs, err := RegisterJobs(container, cfg, log)
	if err != nil {
		container.Close()
		return nil, nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")

	return container, jobs, nil
}

// Close stops background jobs, then closes the journal and the store.
// Safe to call on a partially initialized container.
func (c *Container) Close() error {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}

	var firstErr error
	if c.Journal != nil {
		if err := c.Journal.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close journal: %w", err)
		}
	}
	if c.PortfolioDB != nil {
		if err := c.PortfolioDB.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close portfolio database: %w", err)
		}
	}
	return firstErr
}
