// Package config loads server settings from defaults, an optional TOML file
// and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/klfajardo/registro-evento-chile/internal/fallback"
	"github.com/klfajardo/registro-evento-chile/internal/model"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageSQLite   = "sqlite"
	StorageAirtable = "airtable"
)

// EnvConfigFile names the TOML file when --config is not given
const EnvConfigFile = "REGISTRO_CONFIG"

// Config is the full server configuration
type Config struct {
	// AdminToken guards bulk import; empty disables the check
	AdminToken string `toml:"admin_token"`
	// FallbackFile is the local CSV written when the store is unreachable
	FallbackFile string `toml:"fallback_file"`
	// LookupTimeout bounds a single attendee lookup
	LookupTimeout Duration `toml:"attendee_lookup_timeout"`
	// DefaultSite is the registration site used when neither the request
	// nor the station names one
	DefaultSite string `toml:"default_site"`

	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	Airtable AirtableConfig `toml:"airtable"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type StorageConfig struct {
	Type       string `toml:"type"`
	RedisURL   string `toml:"redis_url"`
	SQLitePath string `toml:"sqlite_path"`
}

type AirtableConfig struct {
	APIKey         string  `toml:"api_key"`
	BaseID         string  `toml:"base_id"`
	TableAttendees string  `toml:"table_asistentes"`
	TableAccess    string  `toml:"table_accesos"`
	RateLimit      float64 `toml:"rate_limit"`
}

// Duration is a time.Duration written as "5s" in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		FallbackFile:  fallback.DefaultPath,
		LookupTimeout: Duration{5 * time.Second},
		DefaultSite:   model.DefaultSite,
		Server: ServerConfig{
			Port:     8080,
			LogLevel: "info",
		},
		Storage: StorageConfig{
			Type:       StorageMemory,
			SQLitePath: "./data/registro.db",
		},
		Airtable: AirtableConfig{
			TableAttendees: model.CollectionAttendees,
			TableAccess:    model.CollectionAccess,
			RateLimit:      5,
		},
	}
}

// Load builds the configuration. path may be empty, in which case the
// REGISTRO_CONFIG variable is consulted; with neither no file is read.
func Load(path string) (Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = getenv(EnvConfigFile)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	str("ADMIN_API_TOKEN", &c.AdminToken)
	str("FALLBACK_FILE", &c.FallbackFile)
	str("DEFAULT_SITE", &c.DefaultSite)
	str("HOST", &c.Server.Host)
	str("LOG_LEVEL", &c.Server.LogLevel)
	str("STORAGE_TYPE", &c.Storage.Type)
	str("REDIS_URL", &c.Storage.RedisURL)
	str("SQLITE_PATH", &c.Storage.SQLitePath)
	str("AIRTABLE_API_KEY", &c.Airtable.APIKey)
	str("AIRTABLE_BASE_ID", &c.Airtable.BaseID)
	str("AIRTABLE_TABLE_ASISTENTES", &c.Airtable.TableAttendees)
	str("AIRTABLE_TABLE_ACCESOS", &c.Airtable.TableAccess)

	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := strings.TrimSpace(getenv("AIRTABLE_RATE_LIMIT")); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("AIRTABLE_RATE_LIMIT: %w", err)
		}
		c.Airtable.RateLimit = rps
	}
	if v := strings.TrimSpace(getenv("ATTENDEE_LOOKUP_TIMEOUT")); v != "" {
		if err := c.LookupTimeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("ATTENDEE_LOOKUP_TIMEOUT: %w", err)
		}
	}
	return nil
}

// Validate reports settings that cannot work together
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Server.Port))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.LookupTimeout.Duration <= 0 {
		errs = append(errs, errors.New("attendee lookup timeout must be positive"))
	}
	if c.FallbackFile == "" {
		errs = append(errs, errors.New("fallback file is required"))
	}

	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when storage type is redis"))
		}
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when storage type is sqlite"))
		}
	case StorageAirtable:
		if c.Airtable.APIKey == "" || c.Airtable.BaseID == "" {
			errs = append(errs, errors.New("AIRTABLE_API_KEY and AIRTABLE_BASE_ID are required when storage type is airtable"))
		}
		if c.Airtable.RateLimit <= 0 {
			errs = append(errs, errors.New("airtable rate limit must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid storage type %q: must be memory, redis, sqlite or airtable", c.Storage.Type))
	}

	return errors.Join(errs...)
}

// LogLevel parses Server.LogLevel
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Server.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}
