// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// devAuthSecret signs tokens when DEV_MODE is on and no AUTH_SECRET is set.
const devAuthSecret = "portfolio-dev-secret"

// Config holds application configuration
type Config struct {
	DataDir             string // Base directory for the store and journal (always absolute)
	Port                int
	LogLevel            string
	DevMode             bool
	AuthSecret          string
	TokenTTL            time.Duration
	AdminUsername       string // Bootstrap admin, created at startup when both fields are set
	AdminPassword       string
	JournalDir          string
	CatalogFile         string // Optional YAML seed for institutions and instruments
	MaintenanceSchedule string
	Backup              *BackupConfig
}

// BackupConfig holds S3 backup settings. Backups are disabled when Bucket is empty.
type BackupConfig struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // S3-compatible endpoint override (R2, MinIO)
	AccessKeyID     string
	SecretAccessKey string
	Schedule        string
	Retention       time.Duration // Zero keeps every backup
}

// Enabled reports whether backups should be scheduled
func (b *BackupConfig) Enabled() bool {
	return b != nil && b.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("PORTFOLIO_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		Port:                getEnvAsInt("PORT", 8000),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		AuthSecret:          getEnv("AUTH_SECRET", ""),
		TokenTTL:            time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		AdminUsername:       getEnv("ADMIN_USERNAME", ""),
		AdminPassword:       getEnv("ADMIN_PASSWORD", ""),
		JournalDir:          getEnv("JOURNAL_DIR", filepath.Join(absDataDir, "journal")),
		CatalogFile:         getEnv("CATALOG_FILE", ""),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "@every 1h"),
		Backup:              loadBackupConfig(),
	}

	if cfg.AuthSecret == "" && cfg.DevMode {
		cfg.AuthSecret = devAuthSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.AuthSecret == "" {
		return errors.New("AUTH_SECRET is required outside DEV_MODE")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token lifetime must be positive, got %s", c.TokenTTL)
	}
	if c.Backup.Enabled() && c.Backup.Region == "" {
		return errors.New("BACKUP_S3_REGION is required when BACKUP_S3_BUCKET is set")
	}
	return nil
}

// StorePath returns the path of the document store file
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "portfolio.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
		Prefix:          getEnv("BACKUP_S3_PREFIX", "portfolio"),
		Region:          getEnv("BACKUP_S3_REGION", ""),
		Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
		Schedule:        getEnv("BACKUP_SCHEDULE", "@daily"),
		Retention:       time.Duration(getEnvAsInt("BACKUP_RETENTION_DAYS", 30)) * 24 * time.Hour,
	}
}
