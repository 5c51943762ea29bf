package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage selects the persistence backend.
type Storage string

const (
	StorageMemory   Storage = "memory"
	StorageSQLite   Storage = "sqlite"
	StoragePostgres Storage = "postgres"
)

// Config captures environment driven configuration values for the lodging service.
type Config struct {
	HTTPPort          int
	Storage           Storage
	SQLiteDSN         string
	DatabaseURL       string
	SettingsFile      string
	HoldTTL           time.Duration
	ReapInterval      time.Duration
	CalendarCacheTTL  time.Duration
	CalendarCacheSize int
	MaxStayNights     int
	LogLevel          slog.Level
}

// LoadDotenv reads KEY=value files into the environment. Variables that are
// already set win, and missing files are skipped.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	return nil
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults. Missing and malformed values are
// collected and reported together in a single localized error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:          8080,
		Storage:           StorageSQLite,
		SQLiteDSN:         "file:lodging.db",
		HoldTTL:           15 * time.Minute,
		ReapInterval:      30 * time.Second,
		CalendarCacheTTL:  5 * time.Second,
		CalendarCacheSize: 256,
		MaxStayNights:     60,
		LogLevel:          slog.LevelInfo,
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 2)

	intVar := func(key string, dst *int, min int) {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			return
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < min {
			invalid = append(invalid, key)
			return
		}
		*dst = n
	}
	durationVar := func(key string, dst *time.Duration, allowZero bool) {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			return
		}
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 || (d == 0 && !allowZero) {
			invalid = append(invalid, key)
			return
		}
		*dst = d
	}

	intVar("LODGING_HTTP_PORT", &cfg.HTTPPort, 1)

	if storage := strings.TrimSpace(os.Getenv("LODGING_STORAGE")); storage != "" {
		switch s := Storage(strings.ToLower(storage)); s {
		case StorageMemory, StorageSQLite, StoragePostgres:
			cfg.Storage = s
		default:
			invalid = append(invalid, "LODGING_STORAGE")
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("LODGING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("LODGING_DATABASE_URL"))
	if cfg.Storage == StoragePostgres && cfg.DatabaseURL == "" {
		missing = append(missing, "LODGING_DATABASE_URL")
	}

	if path := strings.TrimSpace(os.Getenv("LODGING_SETTINGS_FILE")); path == "" {
		missing = append(missing, "LODGING_SETTINGS_FILE")
	} else {
		cfg.SettingsFile = path
	}

	durationVar("LODGING_HOLD_TTL", &cfg.HoldTTL, false)
	durationVar("LODGING_REAP_INTERVAL", &cfg.ReapInterval, false)
	durationVar("LODGING_CALENDAR_CACHE_TTL", &cfg.CalendarCacheTTL, true)
	intVar("LODGING_CALENDAR_CACHE_SIZE", &cfg.CalendarCacheSize, 1)
	intVar("LODGING_MAX_STAY_NIGHTS", &cfg.MaxStayNights, 0)

	if level := strings.TrimSpace(os.Getenv("LODGING_LOG_LEVEL")); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			invalid = append(invalid, "LODGING_LOG_LEVEL")
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("chybí povinné proměnné prostředí: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("neplatná hodnota proměnných prostředí: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
