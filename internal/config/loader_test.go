package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticeworks/lienclock/pkg/errors"
)

const validConfigYAML = `
rules:
  backend: postgres
database:
  host: db.internal
  port: 5432
  user: lienclock
  password: secret
  db_name: lienclock
holidays:
  source: federal
log:
  level: debug
  format: console
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		os.Setenv(k, v)
	}
	t.Cleanup(func() {
		for k := range vars {
			os.Unsetenv(k)
		}
	})
}

func TestLoad_ValidConfig(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, RuleBackendPostgres, cfg.Rules.Backend)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	// Unset fields picked up defaults.
	assert.Equal(t, DefaultMaxOpenConns, cfg.Database.MaxOpenConns)
	assert.Equal(t, HolidaySourceFederal, cfg.Holidays.Source)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigNotFound))
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "rules: ["))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "rules:\n  backend: etcd\n"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func TestLoad_EnvOverride(t *testing.T) {
	setEnvVars(t, map[string]string{
		"LIENCLOCK_DATABASE_HOST": "env-db",
		"LIENCLOCK_LOG_LEVEL":     "warn",
	})

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, "env-db", cfg.Database.Host)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFromEnv_DefaultsOnly(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	// Nothing required: the static backend and federal calendar need no params.
	assert.Equal(t, RuleBackendStatic, cfg.Rules.Backend)
	assert.Equal(t, HolidaySourceFederal, cfg.Holidays.Source)
}

func TestLoadFromEnv_BackendSelection(t *testing.T) {
	setEnvVars(t, map[string]string{
		"LIENCLOCK_RULES_BACKEND": "redis",
		"LIENCLOCK_REDIS_ADDR":    "cache.internal:6379",
	})

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, RuleBackendRedis, cfg.Rules.Backend)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr)
}

func TestMustLoad(t *testing.T) {
	assert.NotPanics(t, func() {
		MustLoad(createTempConfigFile(t, validConfigYAML))
	})
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	})
}

func TestWatch_DeliversReparsedConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	changed := make(chan *Config, 1)
	Watch(path, func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})

	// WatchConfig blocks until its goroutine is watching; the pause covers
	// the event-loop settling on slower filesystems.
	time.Sleep(100 * time.Millisecond)

	updated := strings.Replace(validConfigYAML, "level: debug", "level: error", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, "error", cfg.Log.Level)
		assert.Equal(t, RuleBackendPostgres, cfg.Rules.Backend)
	case <-time.After(5 * time.Second):
		t.Fatal("config change never observed")
	}
}

func TestWatch_DropsInvalidUpdate(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	changed := make(chan *Config, 1)
	Watch(path, func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})
	time.Sleep(100 * time.Millisecond)

	// Parses fine, fails validation: must never reach onChange.
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  backend: etcd\n"), 0o644))

	select {
	case cfg := <-changed:
		t.Fatalf("invalid update delivered: backend %q", cfg.Rules.Backend)
	case <-time.After(700 * time.Millisecond):
	}
}
