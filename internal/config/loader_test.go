package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var allKeys = []string{
	"LODGING_HTTP_PORT",
	"LODGING_STORAGE",
	"LODGING_SQLITE_DSN",
	"LODGING_DATABASE_URL",
	"LODGING_SETTINGS_FILE",
	"LODGING_HOLD_TTL",
	"LODGING_REAP_INTERVAL",
	"LODGING_CALENDAR_CACHE_TTL",
	"LODGING_CALENDAR_CACHE_SIZE",
	"LODGING_MAX_STAY_NIGHTS",
	"LODGING_LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LODGING_SETTINGS_FILE", "settings.yaml")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.Storage != StorageSQLite || cfg.SQLiteDSN != "file:lodging.db" {
			t.Fatalf("unexpected storage defaults: %s %q", cfg.Storage, cfg.SQLiteDSN)
		}
		if cfg.HoldTTL != 15*time.Minute || cfg.ReapInterval != 30*time.Second {
			t.Fatalf("unexpected hold defaults: ttl=%s reap=%s", cfg.HoldTTL, cfg.ReapInterval)
		}
		if cfg.CalendarCacheTTL != 5*time.Second || cfg.CalendarCacheSize != 256 || cfg.MaxStayNights != 60 || cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("unexpected defaults: %+v", cfg)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LODGING_STORAGE", "postgres")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "chybí povinné proměnné prostředí: LODGING_DATABASE_URL, LODGING_SETTINGS_FILE"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("reports invalid values together", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LODGING_SETTINGS_FILE", "settings.yaml")
		t.Setenv("LODGING_HTTP_PORT", "zero")
		t.Setenv("LODGING_STORAGE", "redis")
		t.Setenv("LODGING_HOLD_TTL", "0s")
		t.Setenv("LODGING_LOG_LEVEL", "verbose")

		_, err := Load()
		expected := "neplatná hodnota proměnných prostředí: LODGING_HTTP_PORT, LODGING_STORAGE, LODGING_HOLD_TTL, LODGING_LOG_LEVEL"
		if err == nil || err.Error() != expected {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LODGING_SETTINGS_FILE", "/etc/lodging/settings.yaml")
		t.Setenv("LODGING_HTTP_PORT", "9090")
		t.Setenv("LODGING_STORAGE", "Postgres")
		t.Setenv("LODGING_DATABASE_URL", "postgres://lodging@db/lodging")
		t.Setenv("LODGING_HOLD_TTL", "10m")
		t.Setenv("LODGING_REAP_INTERVAL", "1m")
		t.Setenv("LODGING_CALENDAR_CACHE_TTL", "0s")
		t.Setenv("LODGING_CALENDAR_CACHE_SIZE", "32")
		t.Setenv("LODGING_MAX_STAY_NIGHTS", "0")
		t.Setenv("LODGING_LOG_LEVEL", "debug")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 9090 || cfg.Storage != StoragePostgres || cfg.DatabaseURL != "postgres://lodging@db/lodging" {
			t.Fatalf("unexpected config: %+v", cfg)
		}
		if cfg.HoldTTL != 10*time.Minute || cfg.ReapInterval != time.Minute {
			t.Fatalf("unexpected durations: %+v", cfg)
		}
		if cfg.CalendarCacheTTL != 0 || cfg.CalendarCacheSize != 32 || cfg.MaxStayNights != 0 || cfg.LogLevel != slog.LevelDebug {
			t.Fatalf("unexpected cache settings: %+v", cfg)
		}
	})
}

func TestLoadDotenv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "LODGING_SETTINGS_FILE=from-file.yaml\nLODGING_HTTP_PORT=7000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("LODGING_HTTP_PORT", "7100")
	// t.Setenv restores the variable afterwards; godotenv only fills unset ones.
	if err := os.Unsetenv("LODGING_SETTINGS_FILE"); err != nil {
		t.Fatalf("unset: %v", err)
	}

	if err := LoadDotenv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SettingsFile != "from-file.yaml" {
		t.Fatalf("expected settings file from .env, got %q", cfg.SettingsFile)
	}
	if cfg.HTTPPort != 7100 {
		t.Fatalf("existing environment must win, got %d", cfg.HTTPPort)
	}
}
