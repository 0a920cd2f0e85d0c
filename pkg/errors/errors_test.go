// Package errors_test provides unit tests for the AppError type, factory
// functions, and error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticeworks/lienclock/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// TestNew
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"unknown jurisdiction", errors.ErrCodeUnknownJurisdiction, `unknown jurisdiction code "ZZ"`},
		{"missing fact", errors.ErrCodeMissingFact, "required fact not supplied"},
		{"registry unavailable", errors.ErrCodeRegistryUnavailable, "store unreachable"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail, "Detail should be empty for bare New()")
			assert.Nil(t, ae.Cause, "Cause should be nil for bare New()")
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeRuleDataIncomplete, "role %q has no sub-rule", "supplier")
	require.NotNil(t, ae)
	assert.Equal(t, `role "supplier" has no sub-rule`, ae.Message)
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrorReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.ErrCodeDatabaseError, "query failed"))
}

func TestWrap_CauseIsPreservedInChain(t *testing.T) {
	t.Parallel()

	root := stderrors.New("connection refused")
	ae := errors.Wrap(root, errors.ErrCodeRegistryUnavailable, "reload failed")

	require.NotNil(t, ae)
	assert.Equal(t, errors.ErrCodeRegistryUnavailable, ae.Code)
	assert.True(t, stderrors.Is(ae, root), "errors.Is must reach the root cause")
}

func TestWrap_CodeUnknownPreservesOriginalCode(t *testing.T) {
	t.Parallel()

	inner := errors.UnknownJurisdiction("ZZ")
	outer := errors.Wrap(inner, errors.CodeUnknown, "resolve failed")

	require.NotNil(t, outer)
	assert.Equal(t, errors.ErrCodeUnknownJurisdiction, outer.Code,
		"CodeUnknown wrap must keep the inner classification")
}

// ─────────────────────────────────────────────────────────────────────────────
// TestError formatting
// ─────────────────────────────────────────────────────────────────────────────

func TestError_FormatWithAndWithoutDetail(t *testing.T) {
	t.Parallel()

	bare := errors.New(errors.ErrCodeMissingFact, "fact missing")
	assert.Equal(t, "[ENGINE_002] fact missing", bare.Error())

	detailed := bare.WithDetail("jurisdiction=OH")
	assert.Equal(t, "[ENGINE_002] fact missing: jurisdiction=OH", detailed.Error())
	assert.Empty(t, bare.Detail, "WithDetail must not mutate the receiver")
}

func TestWithDetailf_FormatsDetail(t *testing.T) {
	t.Parallel()

	ae := errors.RuleDataIncomplete("bad role map").WithDetailf("jurisdiction=%s role=%s", "AL", "supplier")
	assert.Contains(t, ae.Error(), "jurisdiction=AL role=supplier")
}

func TestWithCause_AttachesCauseOnCopy(t *testing.T) {
	t.Parallel()

	root := fmt.Errorf("dial tcp: timeout")
	ae := errors.RegistryUnavailable("store unreachable").WithCause(root)

	assert.True(t, stderrors.Is(ae, root))

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithCause(root), "nil receiver must stay nil")
	assert.Nil(t, nilErr.WithDetail("x"), "nil receiver must stay nil")
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_WalksWrappedChain(t *testing.T) {
	t.Parallel()

	inner := errors.MissingFact("notice_of_commencement_filed")
	mid := fmt.Errorf("resolving preliminary notice: %w", inner)
	outer := errors.Wrap(mid, errors.CodeInternal, "resolve failed")

	assert.True(t, errors.IsCode(outer, errors.ErrCodeMissingFact))
	assert.False(t, errors.IsCode(outer, errors.ErrCodeUnknownJurisdiction))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeMissingFact))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeCalendarUnavailable,
		errors.GetCode(errors.CalendarUnavailable("no holiday data for 2031")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Domain factories
// ─────────────────────────────────────────────────────────────────────────────

func TestDomainFactories_UseTaxonomyCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  *errors.AppError
		code errors.ErrorCode
		want string
	}{
		{"unknown jurisdiction", errors.UnknownJurisdiction("ZZ"), errors.ErrCodeUnknownJurisdiction, `"ZZ"`},
		{"missing fact", errors.MissingFact("notice_of_commencement_filed"), errors.ErrCodeMissingFact, "notice_of_commencement_filed"},
		{"rule data incomplete", errors.RuleDataIncomplete("no supplier sub-rule"), errors.ErrCodeRuleDataIncomplete, "supplier"},
		{"calendar unavailable", errors.CalendarUnavailable("file calendar ends at 2026"), errors.ErrCodeCalendarUnavailable, "2026"},
		{"registry unavailable", errors.RegistryUnavailable("postgres unreachable"), errors.ErrCodeRegistryUnavailable, "postgres"},
		{"invalid argument", errors.InvalidArgument("business-day count must not be negative"), errors.ErrCodeInvalidArgument, "negative"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.NotNil(t, tc.err)
			assert.Equal(t, tc.code, tc.err.Code)
			assert.True(t, strings.Contains(tc.err.Message, tc.want),
				"message %q should mention %q", tc.err.Message, tc.want)
		})
	}
}
