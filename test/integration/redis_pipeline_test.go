//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticeworks/lienclock/pkg/client"
	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/common"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// TestRedisRulePipeline drives the client facade against a Redis-backed
// store and injects a server fault to prove the published snapshot keeps
// serving while reloads fail.
func TestRedisRulePipeline(t *testing.T) {
	ctx := context.Background()
	store, mr := startRedisStore(t)

	require.Equal(t, 51, seedStatic(t, ctx, store))

	cl := client.New(
		client.WithRuleSource(store),
		client.WithRetryWait(time.Millisecond, 4*time.Millisecond),
	)
	defer cl.Close()

	require.NoError(t, cl.Warm(ctx))
	assert.Equal(t, "redis", cl.Snapshot().Origin)
	assert.Equal(t, 51, cl.Snapshot().FromStore)

	req := &deadline.RequestContext{
		Jurisdiction:  deadline.JurisdictionCode("OR"),
		ProjectType:   deadline.ProjectNonresidential,
		PartyRole:     deadline.RoleSubcontractor,
		ReferenceDate: common.MustParseDate("2024-03-01"),
	}

	t.Run("business-day arithmetic survives the wire format", func(t *testing.T) {
		res, err := cl.ComputeDeadlines(ctx, req)
		require.NoError(t, err)
		require.True(t, res.PreliminaryNotice.Required())
		assert.Equal(t, "2024-03-13", res.PreliminaryNotice.Deadline.String())
	})

	t.Run("reload fails while the server is down", func(t *testing.T) {
		mr.SetError("LOADING Redis is loading the dataset in memory")

		err := cl.ReloadRules(ctx)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeRegistryUnavailable))

		// The last good snapshot keeps serving.
		assert.Equal(t, int64(1), cl.Snapshot().Revision)
		res, err := cl.ComputeDeadlines(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-13", res.PreliminaryNotice.Deadline.String())
	})

	t.Run("reload recovers once the server is back", func(t *testing.T) {
		mr.SetError("")

		require.NoError(t, cl.ReloadRules(ctx))
		assert.Equal(t, int64(2), cl.Snapshot().Revision)
	})
}
