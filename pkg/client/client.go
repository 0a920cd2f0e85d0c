// Package client is the embeddable entry point to the deadline engine. It
// wires rule storage, holiday calendars, logging and metrics into a single
// handle so callers never assemble the registry and engine by hand.
//
// The zero-option path runs entirely offline on the embedded rule set:
//
//	cl := client.New()
//	defer cl.Close()
//	res, err := cl.ComputeDeadlines(ctx, req)
//
// Durable backends attach through options; see WithRuleSource. Operations
// that can fail transiently (store unreachable during a lazy load or a
// reload) are retried with exponential backoff before the error is returned.
package client

import (
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/noticeworks/lienclock/internal/application/engine"
	"github.com/noticeworks/lienclock/internal/application/registry"
	"github.com/noticeworks/lienclock/internal/domain/calendar"
	"github.com/noticeworks/lienclock/internal/domain/rule"
	"github.com/noticeworks/lienclock/internal/infrastructure/holidays"
	"github.com/noticeworks/lienclock/internal/infrastructure/monitoring/logging"
	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// Version is the client library version.
const Version = "0.1.0"

const (
	defaultRetryMax     = 3
	defaultRetryWaitMin = 500 * time.Millisecond
	defaultRetryWaitMax = 5 * time.Second
)

// Client is a fully wired deadline calculator. It is safe for concurrent use
// once constructed; options must not be applied after New returns.
type Client struct {
	source   rule.Source
	holidays calendar.Provider
	logger   logging.Logger
	metrics  engine.Metrics

	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	registry *registry.Registry
	engine   engine.Service
	closers  []io.Closer
}

// Snapshot describes the rule set the client is currently serving.
type Snapshot struct {
	Origin     string          `json:"origin"`
	Revision   int64           `json:"revision"`
	RulesTotal int             `json:"rules_total"`
	FromStore  int             `json:"from_store"`
	FromStatic int             `json:"from_static"`
	LoadedAt   time.Time       `json:"loaded_at"`
	Entries    []SnapshotEntry `json:"entries,omitempty"`
}

// SnapshotEntry is one jurisdiction's row in a Snapshot.
type SnapshotEntry struct {
	Code      string   `json:"code"`
	StateName string   `json:"state_name"`
	Origin    string   `json:"origin"`
	Flags     []string `json:"flags,omitempty"`
}

// New builds a client. Without options it serves the embedded static rules
// with the computed federal holiday calendar and performs no I/O at all.
func New(opts ...Option) *Client {
	c := &Client{
		logger:       logging.NewNopLogger(),
		metrics:      engine.NopMetrics(),
		retryMax:     defaultRetryMax,
		retryWaitMin: defaultRetryWaitMin,
		retryWaitMax: defaultRetryWaitMax,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.holidays == nil {
		c.holidays = holidays.NewFederalProvider()
	}
	if closer, ok := c.source.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}
	c.registry = registry.New(c.source, c.logger)
	c.engine = engine.NewService(c.registry, c.holidays, c.logger, c.metrics)
	return c
}

// Warm publishes the initial rule snapshot ahead of the first computation.
// It is lenient: an unreachable store degrades to the static rule set rather
// than failing, so Warm only errors when the context is already dead.
// Calling Warm is optional; ComputeDeadlines loads lazily on first use.
func (c *Client) Warm(ctx context.Context) error {
	return c.registry.Load(ctx)
}

// ComputeDeadlines resolves the preliminary-notice and lien-filing deadlines
// for one request. Transient failures are retried with backoff; rule and
// input errors are returned as-is.
func (c *Client) ComputeDeadlines(ctx context.Context, req *deadline.RequestContext) (*deadline.Result, error) {
	var res *deadline.Result
	err := c.withRetry(ctx, "compute_deadlines", func() error {
		var err error
		res, err = c.engine.Resolve(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ReloadRules re-fetches the rule set from the configured source and swaps
// it in atomically. In-flight computations keep the previous snapshot. The
// reload is strict: a bad store or a bad row rejects the whole new set.
func (c *Client) ReloadRules(ctx context.Context) error {
	return c.withRetry(ctx, "reload_rules", func() error {
		return c.engine.ReloadRules(ctx)
	})
}

// Jurisdictions lists every supported jurisdiction code in lexical order.
func (c *Client) Jurisdictions() []deadline.JurisdictionCode {
	return c.engine.Jurisdictions()
}

// Snapshot reports provenance of the rule set currently being served. Before
// the first load (Warm or a first computation) it is the zero Snapshot.
func (c *Client) Snapshot() Snapshot {
	info := c.registry.Info()
	snap := Snapshot{
		Origin:     info.Origin,
		Revision:   info.Revision,
		RulesTotal: info.RulesTotal,
		FromStore:  info.FromStore,
		FromStatic: info.FromStatic,
		LoadedAt:   info.LoadedAt,
	}
	for _, e := range c.registry.Entries() {
		flags := make([]string, 0, len(e.Flags))
		for _, f := range e.Flags {
			flags = append(flags, string(f))
		}
		if len(flags) == 0 {
			flags = nil
		}
		snap.Entries = append(snap.Entries, SnapshotEntry{
			Code:      string(e.Code),
			StateName: e.StateName,
			Origin:    e.Origin,
			Flags:     flags,
		})
	}
	return snap
}

// Close releases resources owned by the client: the rule source when it is
// closable, plus anything attached through WithCloser, in reverse attach
// order. Close is safe to call on a client that owns nothing.
func (c *Client) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			if first == nil {
				first = err
			} else {
				c.logger.Warn("close failed", logging.Err(err))
			}
		}
	}
	return first
}

// withRetry runs fn, retrying transient failures up to retryMax times with
// exponential backoff. Permanent errors return immediately.
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !errors.IsTransient(err) || attempt >= c.retryMax {
			return err
		}
		wait := c.backoff(attempt + 1)
		c.logger.Debug("retrying after transient failure",
			logging.String("op", op),
			logging.Int("attempt", attempt+1),
			logging.Duration("wait", wait),
			logging.Err(err))
		select {
		case <-ctx.Done():
			return err
		case <-time.After(wait):
		}
	}
}

// backoff doubles the wait per attempt, capped at retryWaitMax, with up to
// 25% jitter so synchronized callers do not hammer a recovering store in
// lockstep.
func (c *Client) backoff(attempt int) time.Duration {
	shift := attempt - 1
	if shift > 16 {
		shift = 16
	}
	wait := c.retryWaitMin << uint(shift)
	if wait <= 0 || wait > c.retryWaitMax {
		wait = c.retryWaitMax
	}
	if quarter := int64(wait / 4); quarter > 0 {
		wait += time.Duration(rand.Int63n(quarter))
	}
	return wait
}
