// Package reliability keeps the document store healthy and backed up.
package reliability

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aristath/portfolio/internal/database"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

const (
	maintenanceTimeout = 30 * time.Second
	walWarnBytes       = 64 << 20
	lowDiskBytes       = 500 << 20
)

// MaintenanceJob checks the store is reachable, truncates its WAL and
// warns when the data directory runs low on space.
type MaintenanceJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewMaintenanceJob creates a maintenance job for db
func NewMaintenanceJob(db *database.DB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:  db,
		log: log.With().Str("job", "store_maintenance").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "store_maintenance"
}

// Run executes the maintenance steps. Only an unreachable store is an error.
func (j *MaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
	defer cancel()

	startTime := time.Now()

	if err := j.db.QuickCheck(ctx); err != nil {
		return fmt.Errorf("store %s is unreachable: %w", j.db.Name(), err)
	}

	if stats, err := j.db.GetStats(); err != nil {
		j.log.Warn().Err(err).Msg("Failed to read store stats")
	} else if stats.WALSizeBytes > walWarnBytes {
		j.log.Warn().Int64("wal_size_bytes", stats.WALSizeBytes).Msg("WAL file is large")
	}

	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		// Not critical: the next run retries
		j.log.Warn().Err(err).Msg("WAL checkpoint failed")
	}

	j.checkDiskSpace()

	j.log.Info().Dur("duration_ms", time.Since(startTime)).Msg("Store maintenance completed")
	return nil
}

func (j *MaintenanceJob) checkDiskSpace() {
	usage, err := disk.Usage(filepath.Dir(j.db.Path()))
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to read disk usage")
		return
	}

	if usage.Free < lowDiskBytes {
		j.log.Error().
			Uint64("free_bytes", usage.Free).
			Float64("used_percent", usage.UsedPercent).
			Msg("Disk space running low")
		return
	}

	j.log.Debug().Uint64("free_bytes", usage.Free).Msg("Disk space check")
}
