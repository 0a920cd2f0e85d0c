// Package config defines the configuration structures for the LienClock
// deadline engine.  No I/O or parsing logic lives here — only plain data
// types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// ─────────────────────────────────────────────────────────────────────────────
// Backend and source selectors
// ─────────────────────────────────────────────────────────────────────────────

// Rule-store backends.
const (
	RuleBackendStatic   = "static"
	RuleBackendPostgres = "postgres"
	RuleBackendRedis    = "redis"
)

// Holiday-calendar sources.
const (
	HolidaySourceFederal = "federal"
	HolidaySourceFile    = "file"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// RulesConfig selects where jurisdiction rules are loaded from.  The embedded
// static set always backs whichever store is selected.
type RulesConfig struct {
	Backend string `mapstructure:"backend"` // "static" | "postgres" | "redis"
}

// DatabaseConfig holds PostgreSQL connection parameters for the rule store.
type DatabaseConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	DBName           string        `mapstructure:"db_name"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	MaxOpenConns     int           `mapstructure:"max_open_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `mapstructure:"conn_max_idle_time"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	LockTimeout      time.Duration `mapstructure:"lock_timeout"`
}

// RedisConfig holds Redis connection parameters for the rule store.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// HolidaysConfig selects the holiday calendar the business-day arithmetic
// consults.  Overrides map jurisdiction codes to calendar files layered over
// the fallback source.
type HolidaysConfig struct {
	Source    string            `mapstructure:"source"` // "federal" | "file"
	File      string            `mapstructure:"file"`
	Overrides map[string]string `mapstructure:"overrides"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// MetricsConfig holds Prometheus collector parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration for the engine and its CLI.
type Config struct {
	Rules    RulesConfig    `mapstructure:"rules"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Holidays HolidaysConfig `mapstructure:"holidays"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	switch c.Rules.Backend {
	case RuleBackendStatic:
	case RuleBackendPostgres:
		if c.Database.Host == "" {
			return invalid("database.host is required for the postgres backend")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return invalid(fmt.Sprintf("database.port %d is out of range [1, 65535]", c.Database.Port))
		}
		if c.Database.User == "" {
			return invalid("database.user is required for the postgres backend")
		}
		if c.Database.DBName == "" {
			return invalid("database.db_name is required for the postgres backend")
		}
		if c.Database.MaxOpenConns < 1 {
			return invalid(fmt.Sprintf("database.max_open_conns must be >= 1, got %d", c.Database.MaxOpenConns))
		}
	case RuleBackendRedis:
		if c.Redis.Addr == "" {
			return invalid("redis.addr is required for the redis backend")
		}
		if c.Redis.DB < 0 {
			return invalid(fmt.Sprintf("redis.db must be >= 0, got %d", c.Redis.DB))
		}
	default:
		return invalid(fmt.Sprintf("rules.backend %q is invalid; expected static|postgres|redis", c.Rules.Backend))
	}

	switch c.Holidays.Source {
	case HolidaySourceFederal:
	case HolidaySourceFile:
		if c.Holidays.File == "" {
			return invalid("holidays.file is required when holidays.source is \"file\"")
		}
	default:
		return invalid(fmt.Sprintf("holidays.source %q is invalid; expected federal|file", c.Holidays.Source))
	}
	for raw, path := range c.Holidays.Overrides {
		if !deadline.NormalizeJurisdiction(raw).IsValid() {
			return invalid(fmt.Sprintf("holidays.overrides key %q is not a jurisdiction code", raw))
		}
		if path == "" {
			return invalid(fmt.Sprintf("holidays.overrides.%s must name a calendar file", raw))
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid(fmt.Sprintf("log.level %q is invalid; expected debug|info|warn|error", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return invalid(fmt.Sprintf("log.format %q is invalid; expected json|console", c.Log.Format))
	}

	return nil
}

func invalid(msg string) error {
	return errors.New(errors.ErrCodeConfigInvalid, msg)
}
