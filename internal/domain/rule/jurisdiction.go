package rule

import (
	"context"
	"fmt"

	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// ─────────────────────────────────────────────────────────────────────────────
// Special flags
// ─────────────────────────────────────────────────────────────────────────────

// SpecialFlag marks jurisdiction peculiarities that callers surface as
// warnings alongside the computed deadlines.
type SpecialFlag string

const (
	// FlagShortestDeadline marks the jurisdiction with the shortest lien
	// window in the country; missing it is effectively unrecoverable.
	FlagShortestDeadline SpecialFlag = "shortest_deadline_in_us"
	// FlagPrivilegeTerminology marks civil-law jurisdictions whose statutes
	// say "privilege" where the rest of the country says "lien".
	FlagPrivilegeTerminology SpecialFlag = "uses_privilege_terminology"
	// FlagBusinessDaysOnly marks jurisdictions whose statutory counts run in
	// business days rather than calendar days.
	FlagBusinessDaysOnly SpecialFlag = "business_days_only"
)

// IsValid reports whether f is a known flag.
func (f SpecialFlag) IsValid() bool {
	switch f {
	case FlagShortestDeadline, FlagPrivilegeTerminology, FlagBusinessDaysOnly:
		return true
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Notice policy
// ─────────────────────────────────────────────────────────────────────────────

// PolicyKind states whether a jurisdiction has a preliminary-notice
// obligation at all.
type PolicyKind string

const (
	// PolicyNone means the jurisdiction never requires a preliminary notice.
	PolicyNone PolicyKind = "none"
	// PolicyRule means a notice is required and Rule computes its deadline.
	PolicyRule PolicyKind = "rule"
)

// NoticePolicy is the explicit tri-state for preliminary notices: required
// with a rule, or affirmatively not required. The zero value is invalid, so
// rule data can never leave the question unanswered by omission.
type NoticePolicy struct {
	Kind PolicyKind    `json:"kind"`
	Rule *DeadlineRule `json:"rule,omitempty"`
}

// NoNotice returns the policy for jurisdictions without a notice obligation.
func NoNotice() NoticePolicy { return NoticePolicy{Kind: PolicyNone} }

// NoticeRule returns the policy for jurisdictions whose notice deadline r
// computes.
func NoticeRule(r *DeadlineRule) NoticePolicy { return NoticePolicy{Kind: PolicyRule, Rule: r} }

// Validate checks the policy's internal consistency.
func (p NoticePolicy) Validate() error {
	switch p.Kind {
	case PolicyNone:
		if p.Rule != nil {
			return errors.RuleDataIncomplete("notice policy \"none\" must not carry a rule")
		}
		return nil
	case PolicyRule:
		if p.Rule == nil {
			return errors.RuleDataIncomplete("notice policy \"rule\" is missing its rule")
		}
		return p.Rule.Validate(false)
	case "":
		return errors.RuleDataIncomplete("notice policy kind is unset")
	default:
		return errors.RuleDataIncomplete(fmt.Sprintf("unknown notice policy kind %q", p.Kind))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Jurisdiction rule document
// ─────────────────────────────────────────────────────────────────────────────

// JurisdictionRule is the complete rule document for one jurisdiction: its
// display name, its preliminary-notice policy, its lien-filing rule, and any
// special flags. This is the unit durable stores persist and the registry
// serves.
type JurisdictionRule struct {
	Code              deadline.JurisdictionCode `json:"code"`
	StateName         string                    `json:"state_name"`
	PreliminaryNotice NoticePolicy              `json:"preliminary_notice"`
	LienFiling        *DeadlineRule             `json:"lien_filing"`
	SpecialFlags      []SpecialFlag             `json:"special_flags,omitempty"`
}

// Validate checks the document end to end: code and name present, notice
// policy consistent, lien rule present and date-producing on every branch,
// flags known. All failures carry RuleDataIncomplete.
func (j *JurisdictionRule) Validate() error {
	if j == nil {
		return errors.RuleDataIncomplete("jurisdiction rule is nil")
	}
	if !j.Code.IsValid() {
		return errors.RuleDataIncomplete(fmt.Sprintf("invalid jurisdiction code %q", j.Code))
	}
	if j.StateName == "" {
		return errors.RuleDataIncomplete(fmt.Sprintf("%s: state name is empty", j.Code))
	}
	if err := j.PreliminaryNotice.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrCodeRuleDataIncomplete,
			fmt.Sprintf("%s: preliminary notice policy invalid", j.Code))
	}
	if j.LienFiling == nil {
		return errors.RuleDataIncomplete(fmt.Sprintf("%s: lien filing rule is missing", j.Code))
	}
	if err := j.LienFiling.Validate(true); err != nil {
		return errors.Wrap(err, errors.ErrCodeRuleDataIncomplete,
			fmt.Sprintf("%s: lien filing rule invalid", j.Code))
	}
	seen := make(map[SpecialFlag]bool, len(j.SpecialFlags))
	for _, f := range j.SpecialFlags {
		if !f.IsValid() {
			return errors.RuleDataIncomplete(fmt.Sprintf("%s: unknown special flag %q", j.Code, f))
		}
		if seen[f] {
			return errors.RuleDataIncomplete(fmt.Sprintf("%s: duplicate special flag %q", j.Code, f))
		}
		seen[f] = true
	}
	return nil
}

// HasFlag reports whether the document carries flag f.
func (j *JurisdictionRule) HasFlag(f SpecialFlag) bool {
	for _, have := range j.SpecialFlags {
		if have == f {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the document.
func (j *JurisdictionRule) Clone() *JurisdictionRule {
	if j == nil {
		return nil
	}
	out := *j
	out.PreliminaryNotice.Rule = j.PreliminaryNotice.Rule.Clone()
	out.LienFiling = j.LienFiling.Clone()
	if j.SpecialFlags != nil {
		out.SpecialFlags = append([]SpecialFlag(nil), j.SpecialFlags...)
	}
	return &out
}

// ─────────────────────────────────────────────────────────────────────────────
// Rule source
// ─────────────────────────────────────────────────────────────────────────────

// Source supplies jurisdiction rule documents from a durable store. The
// registry treats any Source uniformly; Postgres and Redis implementations
// live in infrastructure.
type Source interface {
	// Name identifies the store in logs and reload traces.
	Name() string
	// FetchAll returns every rule document the store holds, keyed by
	// jurisdiction code. Implementations return documents as stored,
	// without validating them; the registry validates on load.
	FetchAll(ctx context.Context) (map[deadline.JurisdictionCode]*JurisdictionRule, error)
}
