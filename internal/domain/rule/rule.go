// Package rule defines the deadline rule model: the closed union of rule
// variants a statute can be expressed in, the per-jurisdiction rule document
// that binds them to preliminary-notice and lien-filing obligations, and the
// validation that keeps incomplete rule data out of the engine.
package rule

import (
	"fmt"

	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// ─────────────────────────────────────────────────────────────────────────────
// Variant kinds
// ─────────────────────────────────────────────────────────────────────────────

// VariantKind discriminates the deadline rule union.
type VariantKind string

const (
	// KindFlatDays counts calendar days from the reference date.
	KindFlatDays VariantKind = "flat_days"
	// KindBusinessDays counts business days, skipping weekends and holidays.
	KindBusinessDays VariantKind = "business_days"
	// KindMonthPlusDay advances whole months and lands on a fixed day of
	// month, clamped to the month's length.
	KindMonthPlusDay VariantKind = "month_plus_day"
	// KindRoleDependent selects a sub-rule by the claimant's party role.
	KindRoleDependent VariantKind = "role_dependent"
	// KindConditional selects a branch by a boolean fact from the request.
	KindConditional VariantKind = "conditional"
)

// IsValid reports whether k names a known variant.
func (k VariantKind) IsValid() bool {
	switch k {
	case KindFlatDays, KindBusinessDays, KindMonthPlusDay, KindRoleDependent, KindConditional:
		return true
	}
	return false
}

func (k VariantKind) String() string { return string(k) }

// maxDepth bounds rule-tree nesting. Statutory rules in practice nest two
// levels at most (a conditional over a role map); eight leaves generous
// headroom while still rejecting accidentally self-referential trees built
// in code.
const maxDepth = 8

// ─────────────────────────────────────────────────────────────────────────────
// DeadlineRule
// ─────────────────────────────────────────────────────────────────────────────

// DeadlineRule is one node of a rule tree. Kind selects the variant; only
// the fields belonging to that variant are meaningful. Terminal variants
// (flat_days, business_days, month_plus_day) produce a date directly;
// role_dependent and conditional descend into sub-rules.
type DeadlineRule struct {
	Kind VariantKind

	// Days is the count for flat_days and business_days.
	Days int

	// Months and Day define the month_plus_day formula.
	Months int
	Day    int

	// ByRole maps each party role to its sub-rule for role_dependent.
	// A role absent from the map is not defaulted; resolution fails.
	ByRole map[deadline.PartyRole]*DeadlineRule

	// Predicate names the boolean fact a conditional branches on.
	Predicate string
	// IfTrue is the branch taken when the predicate holds.
	IfTrue *DeadlineRule
	// IfFalse is the branch taken otherwise. A nil IfFalse is legal only
	// for preliminary-notice rules, where it means the notice is not
	// required when the predicate is false.
	IfFalse *DeadlineRule
}

// FlatDays builds a calendar-day rule.
func FlatDays(days int) *DeadlineRule {
	return &DeadlineRule{Kind: KindFlatDays, Days: days}
}

// BusinessDays builds a business-day rule.
func BusinessDays(days int) *DeadlineRule {
	return &DeadlineRule{Kind: KindBusinessDays, Days: days}
}

// MonthPlusDay builds a month-component rule: day `day` of the month
// `months` months after the reference date's month.
func MonthPlusDay(months, day int) *DeadlineRule {
	return &DeadlineRule{Kind: KindMonthPlusDay, Months: months, Day: day}
}

// RoleDependent builds a role-selected rule.
func RoleDependent(byRole map[deadline.PartyRole]*DeadlineRule) *DeadlineRule {
	return &DeadlineRule{Kind: KindRoleDependent, ByRole: byRole}
}

// Conditional builds a fact-gated rule. ifFalse may be nil for
// preliminary-notice rules.
func Conditional(predicate string, ifTrue, ifFalse *DeadlineRule) *DeadlineRule {
	return &DeadlineRule{Kind: KindConditional, Predicate: predicate, IfTrue: ifTrue, IfFalse: ifFalse}
}

// Clone returns a deep copy of the rule tree.
func (r *DeadlineRule) Clone() *DeadlineRule {
	if r == nil {
		return nil
	}
	out := *r
	if r.ByRole != nil {
		out.ByRole = make(map[deadline.PartyRole]*DeadlineRule, len(r.ByRole))
		for role, sub := range r.ByRole {
			out.ByRole[role] = sub.Clone()
		}
	}
	out.IfTrue = r.IfTrue.Clone()
	out.IfFalse = r.IfFalse.Clone()
	return &out
}

// IsTerminal reports whether the rule produces a date without descending.
func (r *DeadlineRule) IsTerminal() bool {
	switch r.Kind {
	case KindFlatDays, KindBusinessDays, KindMonthPlusDay:
		return true
	}
	return false
}

// Describe renders a one-line human summary of the rule node, used in rule
// traces and CLI output.
func (r *DeadlineRule) Describe() string {
	if r == nil {
		return "none"
	}
	switch r.Kind {
	case KindFlatDays:
		return fmt.Sprintf("%d calendar days after reference date", r.Days)
	case KindBusinessDays:
		return fmt.Sprintf("%d business days after reference date", r.Days)
	case KindMonthPlusDay:
		return fmt.Sprintf("day %d of the %s month after reference date", r.Day, ordinal(r.Months))
	case KindRoleDependent:
		return fmt.Sprintf("selected by party role (%d roles)", len(r.ByRole))
	case KindConditional:
		return fmt.Sprintf("conditional on %q", r.Predicate)
	}
	return string(r.Kind)
}

func ordinal(n int) string {
	switch n % 10 {
	case 1:
		if n%100 != 11 {
			return fmt.Sprintf("%dst", n)
		}
	case 2:
		if n%100 != 12 {
			return fmt.Sprintf("%dnd", n)
		}
	case 3:
		if n%100 != 13 {
			return fmt.Sprintf("%drd", n)
		}
	}
	return fmt.Sprintf("%dth", n)
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate checks the rule tree for structural completeness. requireTerminal
// demands that every branch produce a date: lien-filing rules must satisfy
// it, preliminary-notice rules may leave conditional false-branches absent.
// Failures carry the RuleDataIncomplete code.
func (r *DeadlineRule) Validate(requireTerminal bool) error {
	return r.validate(requireTerminal, 0, "")
}

func (r *DeadlineRule) validate(requireTerminal bool, depth int, path string) error {
	if r == nil {
		return errors.RuleDataIncomplete(at(path, "rule is missing"))
	}
	if depth > maxDepth {
		return errors.RuleDataIncomplete(at(path, "rule tree exceeds maximum nesting depth"))
	}

	switch r.Kind {
	case KindFlatDays, KindBusinessDays:
		if r.Days <= 0 {
			return errors.RuleDataIncomplete(at(path, fmt.Sprintf("day count must be positive, got %d", r.Days)))
		}
		return nil

	case KindMonthPlusDay:
		if r.Months <= 0 {
			return errors.RuleDataIncomplete(at(path, fmt.Sprintf("month count must be positive, got %d", r.Months)))
		}
		if r.Day < 1 || r.Day > 31 {
			return errors.RuleDataIncomplete(at(path, fmt.Sprintf("day of month must be in 1..31, got %d", r.Day)))
		}
		return nil

	case KindRoleDependent:
		if len(r.ByRole) == 0 {
			return errors.RuleDataIncomplete(at(path, "role map is empty"))
		}
		for role, sub := range r.ByRole {
			if !role.IsValid() {
				return errors.RuleDataIncomplete(at(path, fmt.Sprintf("unknown party role %q in role map", role)))
			}
			if err := sub.validate(requireTerminal, depth+1, join(path, "by_role."+string(role))); err != nil {
				return err
			}
		}
		return nil

	case KindConditional:
		if r.Predicate == "" {
			return errors.RuleDataIncomplete(at(path, "conditional predicate is empty"))
		}
		if err := r.IfTrue.validate(requireTerminal, depth+1, join(path, "if_true")); err != nil {
			return err
		}
		if r.IfFalse == nil {
			if requireTerminal {
				return errors.RuleDataIncomplete(at(path, fmt.Sprintf("conditional on %q has no false branch but must always produce a deadline", r.Predicate)))
			}
			return nil
		}
		return r.IfFalse.validate(requireTerminal, depth+1, join(path, "if_false"))

	default:
		return errors.RuleDataIncomplete(at(path, fmt.Sprintf("unknown rule variant %q", r.Kind)))
	}
}

func join(path, seg string) string {
	if path == "" {
		return seg
	}
	return path + "." + seg
}

func at(path, msg string) string {
	if path == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", path, msg)
}
