package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noticeworks/lienclock/pkg/errors"
)

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			"calendar unavailable",
			errors.CalendarUnavailable("file calendar covers 2020-2026 only"),
			true,
		},
		{
			"registry unavailable",
			errors.RegistryUnavailable("postgres unreachable"),
			true,
		},
		{
			"wrapped registry unavailable",
			fmt.Errorf("reload: %w", errors.RegistryUnavailable("dial refused")),
			true,
		},
		{
			"service unavailable",
			errors.New(errors.ErrCodeServiceUnavailable, "backing store draining"),
			true,
		},
		{
			"unknown jurisdiction is not transient",
			errors.UnknownJurisdiction("ZZ"),
			false,
		},
		{
			"rule data defect is not transient",
			errors.RuleDataIncomplete("missing supplier sub-rule"),
			false,
		},
		{
			"plain error is not transient",
			fmt.Errorf("boom"),
			false,
		},
		{
			"nil error is not transient",
			nil,
			false,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, errors.IsTransient(tc.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"generic not found", errors.NotFound("no such thing"), true},
		{"rule not found", errors.New(errors.ErrCodeRuleNotFound, "no row for WY"), true},
		{"wrapped rule not found", fmt.Errorf("load: %w", errors.New(errors.ErrCodeRuleNotFound, "no row")), true},
		{"internal error", errors.Internal("boom"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, errors.IsNotFound(tc.err))
		})
	}
}
