package client

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticeworks/lienclock/internal/domain/calendar"
	"github.com/noticeworks/lienclock/internal/domain/rule"
	"github.com/noticeworks/lienclock/internal/testutil"
	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/common"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

func request(code deadline.JurisdictionCode, ref string) *deadline.RequestContext {
	return &deadline.RequestContext{
		Jurisdiction:  code,
		ProjectType:   deadline.ProjectNonresidential,
		PartyRole:     deadline.RoleSubcontractor,
		ReferenceDate: common.MustParseDate(ref),
	}
}

// flakySource fails its first n fetches and then serves rows, for exercising
// the retry path end to end.
type flakySource struct {
	failures int
	calls    int
	rows     map[deadline.JurisdictionCode]*rule.JurisdictionRule
}

func (s *flakySource) Name() string { return "flaky" }

func (s *flakySource) FetchAll(context.Context) (map[deadline.JurisdictionCode]*rule.JurisdictionRule, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New(errors.ErrCodeDatabaseError, "connection refused")
	}
	return s.rows, nil
}

// countingProvider wraps a fixed outcome and counts how often the engine
// asks for a calendar.
type countingProvider struct {
	calls      int
	failBefore int // calls up to this count return err
	err        error
}

func (p *countingProvider) CalendarFor(deadline.JurisdictionCode) (calendar.Calendar, error) {
	p.calls++
	if p.calls <= p.failBefore {
		return nil, p.err
	}
	return calendar.NoHolidays(), nil
}

// countingMetrics counts engine observations, exposing how many resolution
// attempts a client call actually made.
type countingMetrics struct {
	resolves int
	reloads  int
}

func (m *countingMetrics) ObserveResolve(string, string, time.Duration) { m.resolves++ }
func (m *countingMetrics) ObserveReload(string, time.Duration)          { m.reloads++ }

func TestNew_DefaultsServeEmbeddedRules(t *testing.T) {
	cl := New()
	defer cl.Close()

	res, err := cl.ComputeDeadlines(context.Background(), request("TX", "2024-01-10"))
	require.NoError(t, err)

	require.True(t, res.PreliminaryNotice.Required())
	assert.Equal(t, common.MustParseDate("2024-04-15"), *res.PreliminaryNotice.Deadline)
	assert.Equal(t, common.MustParseDate("2024-05-15"), res.LienFiling)
	assert.Equal(t, "Texas", res.StateName)

	snap := cl.Snapshot()
	assert.Equal(t, "static", snap.Origin)
	assert.Equal(t, 51, snap.RulesTotal)
	assert.Equal(t, 0, snap.FromStore)
	assert.Equal(t, 51, snap.FromStatic)
	assert.Len(t, snap.Entries, 51)
}

func TestJurisdictions_ListsAllInOrder(t *testing.T) {
	cl := New()
	defer cl.Close()

	codes := cl.Jurisdictions()
	require.Len(t, codes, 51)
	assert.Equal(t, deadline.JurisdictionCode("AK"), codes[0])
	for i := 1; i < len(codes); i++ {
		assert.Less(t, string(codes[i-1]), string(codes[i]))
	}
}

func TestComputeDeadlines_UnknownJurisdiction(t *testing.T) {
	cl := New()
	defer cl.Close()

	_, err := cl.ComputeDeadlines(context.Background(), request("ZZ", "2024-01-10"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownJurisdiction))
}

func TestSnapshot_BeforeFirstLoadIsZero(t *testing.T) {
	cl := New()
	defer cl.Close()

	snap := cl.Snapshot()
	assert.Zero(t, snap.Revision)
	assert.Empty(t, snap.Origin)
	assert.Nil(t, snap.Entries)
}

func TestWarm_PublishesSnapshotUpFront(t *testing.T) {
	cl := New()
	defer cl.Close()

	require.NoError(t, cl.Warm(context.Background()))

	snap := cl.Snapshot()
	assert.Equal(t, int64(1), snap.Revision)
	assert.Equal(t, 51, snap.RulesTotal)
	assert.False(t, snap.LoadedAt.IsZero())
}

func TestComputeDeadlines_StoreOverrideWins(t *testing.T) {
	src := testutil.NewMockRuleSource()
	src.SetRow(&rule.JurisdictionRule{
		Code:              "TX",
		StateName:         "Texas",
		PreliminaryNotice: rule.NoNotice(),
		LienFiling:        rule.FlatDays(150),
	})

	cl := New(WithRuleSource(src))
	defer cl.Close()

	res, err := cl.ComputeDeadlines(context.Background(), request("TX", "2024-01-10"))
	require.NoError(t, err)

	assert.False(t, res.PreliminaryNotice.Required())
	assert.Equal(t, deadline.AbsenceNoNoticeInJurisdiction, res.PreliminaryNotice.Reason)
	assert.Equal(t, common.MustParseDate("2024-06-08"), res.LienFiling)

	snap := cl.Snapshot()
	assert.Equal(t, "mock", snap.Origin)
	assert.Equal(t, 1, snap.FromStore)
	assert.Equal(t, 50, snap.FromStatic)
	for _, e := range snap.Entries {
		if e.Code == "TX" {
			assert.Equal(t, "mock", e.Origin)
		} else {
			assert.Equal(t, "static", e.Origin)
		}
	}
}

func TestWarm_DegradesToEmbeddedRulesWhenStoreDown(t *testing.T) {
	src := testutil.NewMockRuleSource()
	src.SetError(errors.New(errors.ErrCodeDatabaseError, "connection refused"))

	cl := New(WithRuleSource(src))
	defer cl.Close()

	require.NoError(t, cl.Warm(context.Background()))

	snap := cl.Snapshot()
	assert.Equal(t, "static", snap.Origin)
	assert.Equal(t, 0, snap.FromStore)

	res, err := cl.ComputeDeadlines(context.Background(), request("TX", "2024-01-10"))
	require.NoError(t, err)
	assert.Equal(t, common.MustParseDate("2024-05-15"), res.LienFiling)
}

func TestReloadRules_RetriesUntilStoreRecovers(t *testing.T) {
	src := &flakySource{failures: 2}
	cl := New(
		WithRuleSource(src),
		WithRetryMax(3),
		WithRetryWait(time.Millisecond, 4*time.Millisecond),
	)
	defer cl.Close()

	require.NoError(t, cl.ReloadRules(context.Background()))
	assert.Equal(t, 3, src.calls)
}

func TestReloadRules_GivesUpAfterRetryBudget(t *testing.T) {
	src := &flakySource{failures: 100}
	cl := New(
		WithRuleSource(src),
		WithRetryMax(2),
		WithRetryWait(time.Millisecond, 4*time.Millisecond),
	)
	defer cl.Close()

	err := cl.ReloadRules(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRegistryUnavailable))
	assert.Equal(t, 3, src.calls) // first attempt plus two retries
}

func TestComputeDeadlines_RetriesTransientCalendarFailure(t *testing.T) {
	provider := &countingProvider{
		failBefore: 2,
		err:        errors.CalendarUnavailable("closures not loaded yet"),
	}
	cl := New(
		WithHolidayProvider(provider),
		WithRetryMax(3),
		WithRetryWait(time.Millisecond, 4*time.Millisecond),
	)
	defer cl.Close()

	// Oregon counts business days, so resolution has to consult the
	// calendar provider.
	res, err := cl.ComputeDeadlines(context.Background(), request("OR", "2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, common.MustParseDate("2024-03-13"), *res.PreliminaryNotice.Deadline)
	assert.Equal(t, 3, provider.calls)
}

func TestComputeDeadlines_DoesNotRetryPermanentErrors(t *testing.T) {
	metrics := &countingMetrics{}
	cl := New(
		WithMetrics(metrics),
		WithRetryMax(3),
		WithRetryWait(time.Millisecond, 4*time.Millisecond),
	)
	defer cl.Close()

	_, err := cl.ComputeDeadlines(context.Background(), request("ZZ", "2024-01-10"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownJurisdiction))
	assert.Equal(t, 1, metrics.resolves) // permanent failures burn no retries
}

func TestComputeDeadlines_RetryStopsOnContextCancel(t *testing.T) {
	provider := &countingProvider{
		failBefore: 100,
		err:        errors.CalendarUnavailable("closures not loaded yet"),
	}
	cl := New(
		WithHolidayProvider(provider),
		WithRetryMax(10),
		WithRetryWait(50*time.Millisecond, 200*time.Millisecond),
	)
	defer cl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := cl.ComputeDeadlines(ctx, request("OR", "2024-03-01"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCalendarUnavailable))
	assert.Less(t, provider.calls, 4)
}

type recordingCloser struct {
	name string
	log  *[]string
	err  error
}

func (r *recordingCloser) Close() error {
	*r.log = append(*r.log, r.name)
	return r.err
}

// closableSource pairs a working source with a Close the client should call.
type closableSource struct {
	rule.Source
	closer recordingCloser
}

func (s *closableSource) Close() error { return s.closer.Close() }

func TestClose_ReleasesResourcesInReverseOrder(t *testing.T) {
	var log []string
	src := &closableSource{
		Source: testutil.NewMockRuleSource(),
		closer: recordingCloser{name: "source", log: &log},
	}
	cl := New(
		WithRuleSource(src),
		WithCloser(&recordingCloser{name: "conn", log: &log}),
	)

	require.NoError(t, cl.Close())
	assert.Equal(t, []string{"conn", "source"}, log)
}

func TestClose_ReturnsFirstError(t *testing.T) {
	var log []string
	boom := fmt.Errorf("already closed")
	cl := New(
		WithCloser(&recordingCloser{name: "a", log: &log, err: boom}),
		WithCloser(&recordingCloser{name: "b", log: &log}),
	)

	err := cl.Close()
	assert.Equal(t, boom, err)
	assert.Equal(t, []string{"b", "a"}, log)
}
