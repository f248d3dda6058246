package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"APP_PORT", "LOG_LEVEL", "STORAGE_DRIVER", "DATA_DIR", "SQLITE_PATH",
	"MONGODB_URI", "MONGODB_DB_NAME", "GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID",
	"REPORT_CRON_SCHEDULE", "TIMEZONE", "NOTIFY_WEBHOOK_URL", "ADMIN_PASSWORD", "SEED_SAMPLE_DATA",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "harvest", cfg.MongoDB.DBName)
	assert.Equal(t, "0 20 * * 5", cfg.Reporting.CronSchedule)
	assert.Equal(t, "UTC", cfg.Reporting.Timezone)
	assert.Equal(t, "admin", cfg.Bootstrap.AdminPassword)
	assert.False(t, cfg.Bootstrap.SeedSample)
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "STORAGE_DRIVER=SQLite\nSQLITE_PATH=/var/lib/harvest.db\nSEED_SAMPLE_DATA=true\nTIMEZONE=Europe/Athens\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	// godotenv never overrides variables that are already set, even to "".
	fileKeys := []string{"STORAGE_DRIVER", "SQLITE_PATH", "SEED_SAMPLE_DATA", "TIMEZONE"}
	for _, key := range fileKeys {
		require.NoError(t, os.Unsetenv(key))
	}
	t.Cleanup(func() {
		for _, key := range fileKeys {
			_ = os.Unsetenv(key)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/harvest.db", cfg.Storage.SQLitePath)
	assert.True(t, cfg.Bootstrap.SeedSample)
	assert.Equal(t, "Europe/Athens", cfg.Reporting.Timezone)
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"mongo without uri", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "postgres"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"half configured sheets", map[string]string{"GOOGLE_SHEET_DATABASE_ID": "sheet-id"}},
		{"bad seed flag", map[string]string{"SEED_SAMPLE_DATA": "maybe"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tc.env {
				t.Setenv(key, value)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestValidateNil(t *testing.T) {
	var cfg *Config
	assert.Error(t, cfg.Validate())
}
