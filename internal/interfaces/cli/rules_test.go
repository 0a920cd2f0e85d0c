package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticeworks/lienclock/internal/domain/rule"
	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

func TestRulesList_TextShowsEveryJurisdiction(t *testing.T) {
	out, _, err := execute(t, "rules", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "CODE")
	assert.Contains(t, out, "TX    Texas")
	assert.Contains(t, out, "District of Columbia")
	assert.Contains(t, out, "51 rules, revision 1 (0 from store, 51 embedded)")
}

func TestRulesList_JSONSnapshot(t *testing.T) {
	out, _, err := execute(t, "rules", "list", "-o", "json")
	require.NoError(t, err)

	var snap struct {
		Origin     string `json:"origin"`
		Revision   int64  `json:"revision"`
		RulesTotal int    `json:"rules_total"`
		FromStatic int    `json:"from_static"`
		Entries    []struct {
			Code   string `json:"code"`
			Origin string `json:"origin"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snap))

	assert.Equal(t, "static", snap.Origin)
	assert.Equal(t, int64(1), snap.Revision)
	assert.Equal(t, 51, snap.RulesTotal)
	assert.Equal(t, 51, snap.FromStatic)
	require.Len(t, snap.Entries, 51)
	assert.Equal(t, "AK", snap.Entries[0].Code)
	assert.Equal(t, "static", snap.Entries[0].Origin)
}

func TestRulesShow_TexasDescribesBothRules(t *testing.T) {
	// Lower-case input normalizes before lookup.
	out, _, err := execute(t, "rules", "show", "tx")
	require.NoError(t, err)

	assert.Contains(t, out, "code")
	assert.Contains(t, out, "TX")
	assert.Contains(t, out, "Texas")
	assert.Contains(t, out, "static")
	assert.Contains(t, out,
		"if project_is_residential: day 15 of the 2nd month after, otherwise day 15 of the 3rd month after")
	assert.Contains(t, out,
		"if project_is_residential: day 15 of the 3rd month after, otherwise day 15 of the 4th month after")
}

func TestRulesShow_OregonListsFlags(t *testing.T) {
	out, _, err := execute(t, "rules", "show", "OR")
	require.NoError(t, err)

	assert.Contains(t, out, "8 business days")
	assert.Contains(t, out, "75 calendar days")
	assert.Contains(t, out, "business_days_only")
}

func TestRulesShow_UnknownJurisdiction(t *testing.T) {
	_, _, err := execute(t, "rules", "show", "ZZ")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownJurisdiction))
}

func TestRulesValidate_StaticRulesPass(t *testing.T) {
	out, _, err := execute(t, "rules", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: rule set valid: 51 rules (0 from store, 51 embedded)")
}

func TestRulesReload_StaticBackend(t *testing.T) {
	out, _, err := execute(t, "rules", "reload")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: rule snapshot revision 1: 51 rules, origin static")
}

func TestRulesSync_RequiresDurableBackend(t *testing.T) {
	_, _, err := execute(t, "rules", "sync")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
	assert.Contains(t, err.Error(), "durable backend")
}

func TestDescribeRule(t *testing.T) {
	tests := []struct {
		name string
		rule *rule.DeadlineRule
		want string
	}{
		{name: "nil", rule: nil, want: "none"},
		{name: "flat days", rule: rule.FlatDays(90), want: "90 calendar days"},
		{name: "business days", rule: rule.BusinessDays(8), want: "8 business days"},
		{
			name: "month plus day",
			rule: rule.MonthPlusDay(3, 15),
			want: "day 15 of the 3rd month after",
		},
		{
			name: "role dependent in declaration order",
			rule: rule.RoleDependent(map[deadline.PartyRole]*rule.DeadlineRule{
				deadline.RoleContractor:    rule.FlatDays(120),
				deadline.RoleSubcontractor: rule.FlatDays(90),
				deadline.RoleSupplier:      rule.FlatDays(90),
			}),
			want: "by role (contractor: 120 calendar days; subcontractor: 90 calendar days; supplier: 90 calendar days)",
		},
		{
			name: "conditional with both branches",
			rule: rule.Conditional("notice_of_completion_recorded", rule.FlatDays(90), rule.FlatDays(180)),
			want: "if notice_of_completion_recorded: 90 calendar days, otherwise 180 calendar days",
		},
		{
			name: "conditional without false branch",
			rule: rule.Conditional("notice_of_commencement_filed", rule.FlatDays(21), nil),
			want: "if notice_of_commencement_filed: 21 calendar days, otherwise not required",
		},
		{
			name: "nested conditional",
			rule: rule.Conditional("project_is_residential",
				rule.MonthPlusDay(2, 15), rule.MonthPlusDay(3, 15)),
			want: "if project_is_residential: day 15 of the 2nd month after, otherwise day 15 of the 3rd month after",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeRule(tt.rule))
		})
	}
}

func TestOrdinal(t *testing.T) {
	assert.Equal(t, "1st", ordinal(1))
	assert.Equal(t, "2nd", ordinal(2))
	assert.Equal(t, "3rd", ordinal(3))
	assert.Equal(t, "4th", ordinal(4))
	assert.Equal(t, "12th", ordinal(12))
}
