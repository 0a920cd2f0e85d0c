package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

func validDoc() *JurisdictionRule {
	return &JurisdictionRule{
		Code:              "TX",
		StateName:         "Texas",
		PreliminaryNotice: NoticeRule(MonthPlusDay(3, 15)),
		LienFiling:        MonthPlusDay(4, 15),
	}
}

func TestNoticePolicy_Validate(t *testing.T) {
	assert.NoError(t, NoNotice().Validate())
	assert.NoError(t, NoticeRule(FlatDays(20)).Validate())

	err := NoticePolicy{}.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRuleDataIncomplete))

	assert.Error(t, NoticePolicy{Kind: PolicyNone, Rule: FlatDays(20)}.Validate())
	assert.Error(t, NoticePolicy{Kind: PolicyRule}.Validate())
	assert.Error(t, NoticePolicy{Kind: "maybe"}.Validate())
	assert.Error(t, NoticeRule(FlatDays(0)).Validate())
}

func TestNoticePolicy_AllowsOpenConditional(t *testing.T) {
	// Preliminary-notice rules may omit the false branch; it means notice is
	// not required when the predicate fails.
	p := NoticeRule(Conditional("notice_of_commencement_filed", FlatDays(21), nil))
	assert.NoError(t, p.Validate())
}

func TestJurisdictionRule_Validate(t *testing.T) {
	assert.NoError(t, validDoc().Validate())
}

func TestJurisdictionRule_Validate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*JurisdictionRule)
	}{
		{"invalid code", func(j *JurisdictionRule) { j.Code = "ZZ" }},
		{"empty code", func(j *JurisdictionRule) { j.Code = "" }},
		{"empty state name", func(j *JurisdictionRule) { j.StateName = "" }},
		{"unset notice policy", func(j *JurisdictionRule) { j.PreliminaryNotice = NoticePolicy{} }},
		{"missing lien rule", func(j *JurisdictionRule) { j.LienFiling = nil }},
		{"invalid lien rule", func(j *JurisdictionRule) { j.LienFiling = FlatDays(-1) }},
		{"open conditional lien rule", func(j *JurisdictionRule) {
			j.LienFiling = Conditional("some_fact", FlatDays(30), nil)
		}},
		{"unknown flag", func(j *JurisdictionRule) {
			j.SpecialFlags = []SpecialFlag{"quirky"}
		}},
		{"duplicate flag", func(j *JurisdictionRule) {
			j.SpecialFlags = []SpecialFlag{FlagBusinessDaysOnly, FlagBusinessDaysOnly}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc()
			tt.mutate(doc)
			err := doc.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeRuleDataIncomplete), err)
		})
	}

	var nilDoc *JurisdictionRule
	assert.Error(t, nilDoc.Validate())
}

func TestJurisdictionRule_HasFlag(t *testing.T) {
	doc := validDoc()
	assert.False(t, doc.HasFlag(FlagShortestDeadline))

	doc.SpecialFlags = []SpecialFlag{FlagShortestDeadline}
	assert.True(t, doc.HasFlag(FlagShortestDeadline))
	assert.False(t, doc.HasFlag(FlagPrivilegeTerminology))
}

func TestJurisdictionRule_Clone(t *testing.T) {
	doc := validDoc()
	doc.SpecialFlags = []SpecialFlag{FlagBusinessDaysOnly}

	cp := doc.Clone()
	require.NotNil(t, cp)
	assert.Equal(t, doc, cp)

	cp.LienFiling.Months = 9
	cp.SpecialFlags[0] = FlagShortestDeadline
	assert.Equal(t, 4, doc.LienFiling.Months)
	assert.Equal(t, FlagBusinessDaysOnly, doc.SpecialFlags[0])

	var nilDoc *JurisdictionRule
	assert.Nil(t, nilDoc.Clone())
}

func TestSpecialFlag_IsValid(t *testing.T) {
	assert.True(t, FlagShortestDeadline.IsValid())
	assert.True(t, FlagPrivilegeTerminology.IsValid())
	assert.True(t, FlagBusinessDaysOnly.IsValid())
	assert.False(t, SpecialFlag("").IsValid())
	assert.False(t, SpecialFlag("strict").IsValid())
}

func TestRoleDependentRule_WithRolesConstructor(t *testing.T) {
	r := RoleDependent(map[deadline.PartyRole]*DeadlineRule{
		deadline.RoleContractor: MonthPlusDay(4, 15),
		deadline.RoleSupplier:   FlatDays(120),
	})
	require.NoError(t, r.Validate(true))
	assert.Len(t, r.ByRole, 2)
}
