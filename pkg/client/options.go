package client

import (
	"io"
	"time"

	"github.com/noticeworks/lienclock/internal/application/engine"
	"github.com/noticeworks/lienclock/internal/domain/calendar"
	"github.com/noticeworks/lienclock/internal/domain/rule"
	"github.com/noticeworks/lienclock/internal/infrastructure/monitoring/logging"
)

// Option customizes a Client before it is wired together.
type Option func(*Client)

// WithRuleSource attaches a durable rule backend. Stored rules override the
// embedded static set per jurisdiction; jurisdictions absent from the store
// keep their static rule. A source that also implements io.Closer is closed
// by Client.Close.
func WithRuleSource(src rule.Source) Option {
	return func(c *Client) {
		c.source = src
	}
}

// WithHolidayProvider replaces the default federal holiday calendar, for
// callers that observe state court holidays or load closures from a file.
func WithHolidayProvider(p calendar.Provider) Option {
	return func(c *Client) {
		if p != nil {
			c.holidays = p
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics attaches a metrics sink for resolution and reload
// observations. The default is a no-op.
func WithMetrics(m engine.Metrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithRetryMax sets how many times a transiently failing operation is
// retried after its first attempt. Zero disables retries; negative values
// are ignored.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retryMax = n
		}
	}
}

// WithRetryWait bounds the backoff between retries. Ignored unless
// min > 0 and max >= min.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		if min > 0 && max >= min {
			c.retryWaitMin = min
			c.retryWaitMax = max
		}
	}
}

// WithCloser registers an extra resource to release in Client.Close, such
// as the database connection behind a rule store.
func WithCloser(closer io.Closer) Option {
	return func(c *Client) {
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
	}
}
