package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	Notify    NotifyConfig
	Bootstrap BootstrapConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Driver     string
	DataDir    string
	SQLitePath string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig contains configuration required to push exports to Google Sheets.
// Both fields empty disables the push.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether a spreadsheet is configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// NotifyConfig holds the webhook the weekly summary is posted to.
type NotifyConfig struct {
	WebhookURL string
}

// BootstrapConfig controls first-run data.
type BootstrapConfig struct {
	AdminPassword string
	SeedSample    bool
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	seed, err := getenvBool("SEED_SAMPLE_DATA", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(getenvWithDefault("STORAGE_DRIVER", DriverFile)),
			DataDir:    getenvWithDefault("DATA_DIR", "data"),
			SQLitePath: getenvWithDefault("SQLITE_PATH", "data/harvest.db"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "harvest"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * 5"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
		Bootstrap: BootstrapConfig{
			AdminPassword: getenvWithDefault("ADMIN_PASSWORD", "admin"),
			SeedSample:    seed,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.Server.LogLevel)
	}

	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.DataDir == "" {
			return errors.New("DATA_DIR must be provided for the file driver")
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("SQLITE_PATH must be provided for the sqlite driver")
		}
	case DriverMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided for the mongo driver")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER %q is not one of file, sqlite, mongo", c.Storage.Driver)
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Bootstrap.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD must not be empty")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return parsed, nil
}
