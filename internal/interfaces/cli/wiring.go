package cli

import (
	"io"

	"github.com/noticeworks/lienclock/internal/config"
	"github.com/noticeworks/lienclock/internal/domain/calendar"
	"github.com/noticeworks/lienclock/internal/domain/rule"
	"github.com/noticeworks/lienclock/internal/infrastructure/database/postgres"
	"github.com/noticeworks/lienclock/internal/infrastructure/database/redis"
	"github.com/noticeworks/lienclock/internal/infrastructure/holidays"
	"github.com/noticeworks/lienclock/internal/infrastructure/monitoring/prometheus"
	"github.com/noticeworks/lienclock/pkg/client"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// buildClient assembles a fully wired engine client for the configured
// backend. The returned client owns every opened connection; callers release
// them with Close.
func buildClient(cliCtx *CLIContext) (*client.Client, error) {
	provider, err := buildHolidayProvider(cliCtx.Config)
	if err != nil {
		return nil, err
	}

	src, closer, err := buildRuleSource(cliCtx)
	if err != nil {
		return nil, err
	}

	opts := []client.Option{
		client.WithLogger(cliCtx.Logger),
		client.WithHolidayProvider(provider),
	}
	if src != nil {
		opts = append(opts, client.WithRuleSource(src))
	}
	if closer != nil {
		opts = append(opts, client.WithCloser(closer))
	}
	if cliCtx.Config.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace: cliCtx.Config.Metrics.Namespace,
		}, cliCtx.Logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithMetrics(prometheus.NewEngineMetrics(collector)))
	}

	return client.New(opts...), nil
}

// buildRuleSource opens the configured durable rule store. The static
// backend returns a nil source; the registry then serves the embedded set
// alone.
func buildRuleSource(cliCtx *CLIContext) (rule.Source, io.Closer, error) {
	cfg := cliCtx.Config
	switch cfg.Rules.Backend {
	case config.RuleBackendPostgres:
		conn, err := postgres.NewConnection(cfg.Database, cliCtx.Logger)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewRuleStore(conn, cliCtx.Logger), conn, nil

	case config.RuleBackendRedis:
		rc, err := redis.NewClient(cfg.Redis, cliCtx.Logger)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewRuleStore(rc, cfg.Redis.KeyPrefix, cliCtx.Logger), rc, nil

	default:
		return nil, nil, nil
	}
}

// buildHolidayProvider assembles the calendar provider the config names:
// the computed federal calendar or a holiday file as the fallback, plus any
// per-jurisdiction override files layered on top.
func buildHolidayProvider(cfg *config.Config) (calendar.Provider, error) {
	var base calendar.Calendar
	switch cfg.Holidays.Source {
	case config.HolidaySourceFile:
		cal, err := holidays.LoadFile(cfg.Holidays.File)
		if err != nil {
			return nil, err
		}
		base = cal
	default:
		base = holidays.NewFederalCalendar()
	}

	provider := holidays.NewProvider(base)
	for raw, path := range cfg.Holidays.Overrides {
		cal, err := holidays.LoadFile(path)
		if err != nil {
			return nil, err
		}
		provider.Register(deadline.NormalizeJurisdiction(raw), cal)
	}
	return provider, nil
}
