// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Catalog backends
const (
	CatalogBackendSQLite    = "sqlite"
	CatalogBackendFirestore = "firestore"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	LogLevel string
	Port     int
	DevMode  bool
	Chat     *ChatConfig
	Catalog  *CatalogConfig
	Game     *GameConfig
	Backup   *BackupConfig
}

// ChatConfig configures the text-generation relay
type ChatConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	Timeout        time.Duration
	AdvisorFraming bool
}

// CatalogConfig selects and configures the video catalog store
type CatalogConfig struct {
	Backend            string
	FirestoreProjectID string
	FirestoreAPIKey    string
	FirestoreBaseURL   string
}

// GameConfig configures market simulation sessions
type GameConfig struct {
	StartingCash float64
	SessionTTL   time.Duration
}

// BackupConfig configures offsite backups to S3-compatible storage (R2, MinIO, S3)
type BackupConfig struct {
	Enabled         bool
	Schedule        string // cron expression with seconds
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Retention       int // number of archives to keep
}

// Load reads configuration from .env and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("FINLIT_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8080),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Chat: &ChatConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-pro"),
			BaseURL:        getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Timeout:        getEnvAsDuration("CHAT_TIMEOUT", 30*time.Second),
			AdvisorFraming: getEnvAsBool("CHAT_ADVISOR_FRAMING", false),
		},
		Catalog: &CatalogConfig{
			Backend:            strings.ToLower(getEnv("CATALOG_BACKEND", CatalogBackendSQLite)),
			FirestoreProjectID: getEnv("FIRESTORE_PROJECT_ID", ""),
			FirestoreAPIKey:    getEnv("FIRESTORE_API_KEY", ""),
			FirestoreBaseURL:   getEnv("FIRESTORE_BASE_URL", "https://firestore.googleapis.com"),
		},
		Game: &GameConfig{
			StartingCash: getEnvAsFloat("GAME_STARTING_CASH", 1000),
			SessionTTL:   getEnvAsDuration("GAME_SESSION_TTL", 24*time.Hour),
		},
		Backup: &BackupConfig{
			Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
			Schedule:        getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"),
			Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
			Region:          getEnv("BACKUP_S3_REGION", "auto"),
			Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
			AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
			Retention:       getEnvAsInt("BACKUP_RETENTION", 7),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	switch c.Catalog.Backend {
	case CatalogBackendSQLite:
	case CatalogBackendFirestore:
		if c.Catalog.FirestoreProjectID == "" {
			return fmt.Errorf("FIRESTORE_PROJECT_ID is required for the firestore catalog backend")
		}
	default:
		return fmt.Errorf("unknown catalog backend %q", c.Catalog.Backend)
	}

	if c.Game.StartingCash <= 0 {
		return fmt.Errorf("GAME_STARTING_CASH must be positive")
	}
	if c.Chat.Timeout <= 0 {
		return fmt.Errorf("CHAT_TIMEOUT must be positive")
	}

	// Backup credentials are only required when backups are on
	if c.Backup.Enabled {
		if c.Backup.Bucket == "" || c.Backup.AccessKeyID == "" || c.Backup.SecretAccessKey == "" {
			return fmt.Errorf("backup requires BACKUP_S3_BUCKET, BACKUP_S3_ACCESS_KEY_ID and BACKUP_S3_SECRET_ACCESS_KEY")
		}
		if c.Backup.Retention < 1 {
			return fmt.Errorf("BACKUP_RETENTION must be at least 1")
		}
	}

	return nil
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
