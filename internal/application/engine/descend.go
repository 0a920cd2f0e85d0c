package engine

import (
	"fmt"

	"github.com/noticeworks/lienclock/internal/domain/rule"
	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// descentOutcome is where rule-tree descent lands: a terminal variant ready
// for calendar arithmetic, or no deadline at all because a conditional with
// no false branch resolved false (condition then names the predicate).
type descentOutcome struct {
	terminal  *rule.DeadlineRule
	condition string
}

// descend walks a rule tree from the top, selecting role branches by the
// request's party role and conditional branches by the effective fact set,
// appending one trace step per node visited. It fails with MissingFact when
// a predicate is not in the fact set, and with RuleDataIncomplete when the
// tree does not cover the request's role or names an unknown variant.
func descend(
	r *rule.DeadlineRule,
	which string,
	role deadline.PartyRole,
	facts deadline.Facts,
	trace *[]deadline.TraceStep,
) (descentOutcome, error) {
	for {
		if r == nil {
			return descentOutcome{}, errors.RuleDataIncomplete("rule tree has a nil node")
		}

		switch r.Kind {
		case rule.KindFlatDays, rule.KindBusinessDays, rule.KindMonthPlusDay:
			*trace = append(*trace, deadline.TraceStep{
				Rule:    which,
				Variant: string(r.Kind),
				Note:    r.Describe(),
			})
			return descentOutcome{terminal: r}, nil

		case rule.KindRoleDependent:
			sub, ok := r.ByRole[role]
			if !ok {
				return descentOutcome{}, errors.RuleDataIncomplete(
					fmt.Sprintf("rule does not cover party role %q", role))
			}
			*trace = append(*trace, deadline.TraceStep{
				Rule:    which,
				Variant: string(r.Kind),
				Note:    fmt.Sprintf("selected branch for role %q", role),
			})
			r = sub

		case rule.KindConditional:
			val, ok := facts[r.Predicate]
			if !ok {
				return descentOutcome{}, errors.MissingFact(r.Predicate)
			}
			switch {
			case val:
				*trace = append(*trace, deadline.TraceStep{
					Rule:    which,
					Variant: string(r.Kind),
					Note:    fmt.Sprintf("%q is true", r.Predicate),
				})
				r = r.IfTrue
			case r.IfFalse != nil:
				*trace = append(*trace, deadline.TraceStep{
					Rule:    which,
					Variant: string(r.Kind),
					Note:    fmt.Sprintf("%q is false", r.Predicate),
				})
				r = r.IfFalse
			default:
				*trace = append(*trace, deadline.TraceStep{
					Rule:    which,
					Variant: string(r.Kind),
					Note:    fmt.Sprintf("%q is false and no alternative applies", r.Predicate),
				})
				return descentOutcome{condition: r.Predicate}, nil
			}

		default:
			return descentOutcome{}, errors.RuleDataIncomplete(
				fmt.Sprintf("unknown rule variant %q", r.Kind))
		}
	}
}
