//go:build integration

// Package integration wires real rule-store backends to the client facade:
// Postgres in a disposable container, Redis via an in-process server. The
// scenarios here cross layer boundaries on purpose; single-layer coverage
// lives next to each package.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/noticeworks/lienclock/internal/config"
	"github.com/noticeworks/lienclock/internal/domain/rule"
	"github.com/noticeworks/lienclock/internal/infrastructure/database/postgres"
	"github.com/noticeworks/lienclock/internal/infrastructure/database/redis"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// startPostgresStore brings up a Postgres container, opens a pooled
// connection to it, and returns a schema-initialized rule store.
func startPostgresStore(t *testing.T) (*postgres.RuleStore, *postgres.Connection) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "lienclock",
			"POSTGRES_PASSWORD": "lienclock",
			"POSTGRES_DB":       "lienclock_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	conn, err := postgres.NewConnection(config.DatabaseConfig{
		Host:         host,
		Port:         port.Int(),
		User:         "lienclock",
		Password:     "lienclock",
		DBName:       "lienclock_test",
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	store := postgres.NewRuleStore(conn, nil)
	require.NoError(t, store.EnsureSchema(ctx))
	return store, conn
}

// startRedisStore runs an in-process Redis and returns a rule store backed
// by it, plus the server handle for fault injection.
func startRedisStore(t *testing.T) (*redis.RuleStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClientFromRedis(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), nil)
	t.Cleanup(func() {
		_ = client.Close()
	})

	return redis.NewRuleStore(client, "", nil), mr
}

// seeder is the store surface the scenarios need for fixtures.
type seeder interface {
	Seed(context.Context, map[deadline.JurisdictionCode]*rule.JurisdictionRule) (int, error)
}

// seedStatic copies the embedded rule set into a store and reports how many
// jurisdictions were written.
func seedStatic(t *testing.T, ctx context.Context, s seeder) int {
	t.Helper()
	n, err := s.Seed(ctx, rule.StaticRules())
	require.NoError(t, err)
	return n
}
