package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aristath/portfolio/internal/database"
	"github.com/rs/zerolog"
)

const (
	archivePrefix   = "portfolio-backup-"
	archiveLayout   = "2006-01-02-150405"
	metadataFile    = "backup-metadata.json"
	snapshotFile    = "portfolio.db"
	backupJobBudget = 10 * time.Minute
)

// BackupMetadata is written next to the snapshot inside every archive
type BackupMetadata struct {
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	Checksum  string    `json:"checksum"`
}

// BackupService snapshots the store into a tar.gz archive and uploads it
type BackupService struct {
	db        *database.DB
	store     ObjectStore
	dataDir   string
	retention time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewBackupService creates a backup service. A retention of zero keeps every backup.
func NewBackupService(db *database.DB, store ObjectStore, dataDir string, retention time.Duration, log zerolog.Logger) *BackupService {
	return &BackupService{
		db:        db,
		store:     store,
		dataDir:   dataDir,
		retention: retention,
		now:       time.Now,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// CreateAndUploadBackup snapshots the store and uploads the archive. Returns the archive name.
func (s *BackupService) CreateAndUploadBackup(ctx context.Context) (string, error) {
	s.log.Info().Msg("Starting backup")
	startTime := time.Now()

	stagingDir, err := os.MkdirTemp(s.dataDir, "backup-staging-")
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	snapshotPath := filepath.Join(stagingDir, snapshotFile)
	if err := s.db.SnapshotTo(ctx, snapshotPath); err != nil {
		return "", err
	}

	info, err := os.Stat(snapshotPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat snapshot: %w", err)
	}
	checksum, err := calculateChecksum(snapshotPath)
	if err != nil {
		return "", fmt.Errorf("failed to calculate checksum: %w", err)
	}

	metadata := BackupMetadata{
		Timestamp: s.now().UTC(),
		Database:  s.db.Name(),
		Filename:  snapshotFile,
		SizeBytes: info.Size(),
		Checksum:  checksum,
	}
	if err := writeMetadata(filepath.Join(stagingDir, metadataFile), metadata); err != nil {
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}

	archiveName := archivePrefix + metadata.Timestamp.Format(archiveLayout) + ".tar.gz"
	archivePath := filepath.Join(stagingDir, archiveName)
	if err := createArchive(archivePath, stagingDir, []string{snapshotFile, metadataFile}); err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	if err := s.store.Upload(ctx, archiveName, archive); err != nil {
		return "", err
	}

	s.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Str("archive", archiveName).
		Int64("snapshot_bytes", info.Size()).
		Msg("Backup completed successfully")

	return archiveName, nil
}

// RotateOldBackups deletes archives older than the retention period
func (s *BackupService) RotateOldBackups(ctx context.Context) (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}

	objects, err := s.store.List(ctx, archivePrefix)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.retention)
	deleted := 0
	for _, obj := range objects {
		created, ok := archiveTime(obj.Key)
		if !ok {
			created = obj.LastModified
		}
		if !created.Before(cutoff) {
			continue
		}

		if err := s.store.Delete(ctx, obj.Key); err != nil {
			return deleted, err
		}
		deleted++
		s.log.Debug().Str("archive", obj.Key).Msg("Old backup deleted")
	}

	if deleted > 0 {
		s.log.Info().Int("deleted", deleted).Msg("Old backups rotated")
	}
	return deleted, nil
}

// archiveTime parses the timestamp out of an archive name
func archiveTime(name string) (time.Time, bool) {
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, archivePrefix), ".tar.gz")
	t, err := time.Parse(archiveLayout, stamp)
	return t, err == nil
}

// BackupJob runs a backup and rotation on the scheduler
type BackupJob struct {
	service *BackupService
}

// NewBackupJob wraps service for the scheduler
func NewBackupJob(service *BackupService) *BackupJob {
	return &BackupJob{service: service}
}

// Name returns the job name for scheduler
func (j *BackupJob) Name() string {
	return "store_backup"
}

// Run executes the backup job
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupJobBudget)
	defer cancel()

	if _, err := j.service.CreateAndUploadBackup(ctx); err != nil {
		return err
	}
	if _, err := j.service.RotateOldBackups(ctx); err != nil {
		// The new backup is already uploaded
		j.service.log.Warn().Err(err).Msg("Backup rotation failed")
	}
	return nil
}

func calculateChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

func writeMetadata(path string, metadata BackupMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}

// createArchive writes the named files of sourceDir into a tar.gz at archivePath
func createArchive(archivePath, sourceDir string, filenames []string) (err error) {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		if closeErr := archiveFile.Close(); err == nil {
			err = closeErr
		}
	}()

	gzipWriter := gzip.NewWriter(archiveFile)
	tarWriter := tar.NewWriter(gzipWriter)

	for _, filename := range filenames {
		if err := addFileToArchive(tarWriter, filepath.Join(sourceDir, filename), filename); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", filename, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return err
	}
	return gzipWriter.Close()
}

func addFileToArchive(tarWriter *tar.Writer, filePath, nameInArchive string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    int64(info.Mode()),
		ModTime: info.ModTime(),
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}
