// Package engine implements deadline resolution: it turns a validated
// request context into exact preliminary-notice and lien-filing dates by
// descending the jurisdiction's rule tree and applying calendar arithmetic,
// with a trace of every step taken.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/noticeworks/lienclock/internal/application/registry"
	"github.com/noticeworks/lienclock/internal/domain/calendar"
	"github.com/noticeworks/lienclock/internal/domain/rule"
	"github.com/noticeworks/lienclock/internal/infrastructure/monitoring/logging"
	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/common"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// Service is the calculation entry point collaborators build on. Resolve is
// stateless per call and safe for unbounded parallel use; ReloadRules is the
// explicit cache-invalidation signal after out-of-band rule changes.
type Service interface {
	Resolve(ctx context.Context, req *deadline.RequestContext) (*deadline.Result, error)
	ReloadRules(ctx context.Context) error
	Jurisdictions() []deadline.JurisdictionCode
}

type engineServiceImpl struct {
	registry *registry.Registry
	holidays calendar.Provider
	logger   logging.Logger
	metrics  Metrics
}

// NewService constructs the resolution engine. holidays may be nil, in which
// case business-day rules fail with CalendarUnavailable rather than silently
// ignoring holidays; metrics may be nil.
func NewService(
	reg *registry.Registry,
	holidays calendar.Provider,
	logger logging.Logger,
	metrics Metrics,
) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &engineServiceImpl{
		registry: reg,
		holidays: holidays,
		logger:   logger.Named("engine"),
		metrics:  metrics,
	}
}

func (s *engineServiceImpl) Resolve(ctx context.Context, req *deadline.RequestContext) (*deadline.Result, error) {
	start := time.Now()
	res, err := s.resolve(ctx, req)
	s.metrics.ObserveResolve(jurisdictionLabel(req), outcomeLabel(err), time.Since(start))
	return res, err
}

func (s *engineServiceImpl) resolve(ctx context.Context, req *deadline.RequestContext) (*deadline.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	doc, err := s.registry.Resolve(ctx, req.Jurisdiction)
	if err != nil {
		return nil, err
	}

	facts := effectiveFacts(req)
	res := &deadline.Result{
		RequestID:    common.NewID(),
		Jurisdiction: req.Jurisdiction,
		StateName:    doc.StateName,
		ComputedAt:   time.Now().UTC(),
	}

	lien, err := s.resolveLien(doc, req, facts, res)
	if err != nil {
		s.logResolutionFailure(req, "lien_filing", err)
		return nil, err
	}
	res.LienFiling = lien

	if err := s.resolveNotice(doc, req, facts, res); err != nil {
		s.logResolutionFailure(req, "preliminary_notice", err)
		return nil, err
	}

	res.Warnings = advisories(doc)

	s.logger.Debug("deadlines resolved",
		logging.String("request_id", string(res.RequestID)),
		logging.Jurisdiction(req.Jurisdiction),
		logging.Date("lien_filing", res.LienFiling),
		logging.Bool("notice_required", res.PreliminaryNotice.Required()))
	return res, nil
}

// resolveLien computes the always-present lien-filing deadline.
func (s *engineServiceImpl) resolveLien(
	doc *rule.JurisdictionRule,
	req *deadline.RequestContext,
	facts deadline.Facts,
	res *deadline.Result,
) (common.Date, error) {
	out, err := descend(doc.LienFiling, deadline.TraceLienFiling, req.PartyRole, facts, &res.RuleTrace)
	if err != nil {
		return common.Date{}, err
	}
	if out.terminal == nil {
		// Registry validation requires lien rules to terminate on every
		// branch, so an absent outcome here is rule data gone bad.
		return common.Date{}, errors.RuleDataIncomplete(
			fmt.Sprintf("%s: lien filing rule produced no deadline", doc.Code))
	}
	return s.applyTerminal(out.terminal, req.ReferenceDate, req.Jurisdiction)
}

// resolveNotice fills the preliminary-notice half of the result from the
// jurisdiction's explicit policy.
func (s *engineServiceImpl) resolveNotice(
	doc *rule.JurisdictionRule,
	req *deadline.RequestContext,
	facts deadline.Facts,
	res *deadline.Result,
) error {
	switch doc.PreliminaryNotice.Kind {
	case rule.PolicyNone:
		res.RuleTrace = append(res.RuleTrace, deadline.TraceStep{
			Rule: deadline.TracePreliminaryNotice,
			Note: "jurisdiction does not require a preliminary notice",
		})
		res.PreliminaryNotice = deadline.NoticeOutcome{Reason: deadline.AbsenceNoNoticeInJurisdiction}
		return nil

	case rule.PolicyRule:
		out, err := descend(doc.PreliminaryNotice.Rule, deadline.TracePreliminaryNotice, req.PartyRole, facts, &res.RuleTrace)
		if err != nil {
			return err
		}
		if out.terminal == nil {
			res.PreliminaryNotice = deadline.NoticeOutcome{
				Reason:    deadline.AbsenceConditionNotMet,
				Condition: out.condition,
			}
			return nil
		}
		date, err := s.applyTerminal(out.terminal, req.ReferenceDate, req.Jurisdiction)
		if err != nil {
			return err
		}
		res.PreliminaryNotice = deadline.NoticeOutcome{Deadline: &date}
		return nil

	default:
		return errors.RuleDataIncomplete(
			fmt.Sprintf("%s: preliminary notice policy kind %q", doc.Code, doc.PreliminaryNotice.Kind))
	}
}

// applyTerminal runs the calendar arithmetic a terminal variant names.
func (s *engineServiceImpl) applyTerminal(r *rule.DeadlineRule, ref common.Date, code deadline.JurisdictionCode) (common.Date, error) {
	switch r.Kind {
	case rule.KindFlatDays:
		return calendar.AddCalendarDays(ref, r.Days), nil
	case rule.KindBusinessDays:
		cal, err := s.calendarFor(code)
		if err != nil {
			return common.Date{}, err
		}
		return calendar.AddBusinessDays(ref, r.Days, cal)
	case rule.KindMonthPlusDay:
		return calendar.AddMonthsClamped(ref, r.Months, r.Day), nil
	default:
		return common.Date{}, errors.RuleDataIncomplete(
			fmt.Sprintf("cannot apply non-terminal rule variant %q", r.Kind))
	}
}

func (s *engineServiceImpl) calendarFor(code deadline.JurisdictionCode) (calendar.Calendar, error) {
	if s.holidays == nil {
		return nil, errors.CalendarUnavailable("no holiday calendar provider configured")
	}
	cal, err := s.holidays.CalendarFor(code)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCalendarUnavailable,
			fmt.Sprintf("holiday calendar for %s unavailable", code))
	}
	if cal == nil {
		return nil, errors.CalendarUnavailable(
			fmt.Sprintf("holiday provider returned no calendar for %s", code))
	}
	return cal, nil
}

func (s *engineServiceImpl) ReloadRules(ctx context.Context) error {
	start := time.Now()
	err := s.registry.Reload(ctx)
	s.metrics.ObserveReload(outcomeLabel(err), time.Since(start))
	return err
}

func (s *engineServiceImpl) Jurisdictions() []deadline.JurisdictionCode {
	return deadline.AllJurisdictions()
}

func (s *engineServiceImpl) logResolutionFailure(req *deadline.RequestContext, phase string, err error) {
	// Rule-data gaps are bugs in migrated rule data, not client mistakes;
	// they deserve the loud level.
	if errors.IsCode(err, errors.ErrCodeRuleDataIncomplete) {
		s.logger.Error("rule data incomplete during resolution",
			logging.Jurisdiction(req.Jurisdiction),
			logging.String("phase", phase),
			logging.Err(err))
		return
	}
	s.logger.Debug("resolution failed",
		logging.Jurisdiction(req.Jurisdiction),
		logging.String("phase", phase),
		logging.Err(err))
}

// effectiveFacts merges the caller's conditional facts with the facts the
// engine derives from the request itself. Derived project-type facts always
// win so a caller cannot contradict its own declared project type.
func effectiveFacts(req *deadline.RequestContext) deadline.Facts {
	facts := make(deadline.Facts, len(req.ConditionalFacts)+2)
	for name, val := range req.ConditionalFacts {
		facts[name] = val
	}
	facts[deadline.FactProjectIsResidential] = req.ProjectType == deadline.ProjectResidential
	facts[deadline.FactProjectIsNonresidential] = req.ProjectType == deadline.ProjectNonresidential
	return facts
}

// advisories renders the jurisdiction's special flags as caller-facing
// warning strings, in flag order.
func advisories(doc *rule.JurisdictionRule) []string {
	if len(doc.SpecialFlags) == 0 {
		return nil
	}
	out := make([]string, 0, len(doc.SpecialFlags))
	for _, f := range doc.SpecialFlags {
		switch f {
		case rule.FlagShortestDeadline:
			out = append(out, fmt.Sprintf("%s has the shortest lien-filing window in the US; file without delay", doc.StateName))
		case rule.FlagPrivilegeTerminology:
			out = append(out, fmt.Sprintf("%s statutes use %q where other states say %q", doc.StateName, "privilege", "lien"))
		case rule.FlagBusinessDaysOnly:
			out = append(out, fmt.Sprintf("%s counts its notice window in business days; weekends and holidays extend the date", doc.StateName))
		}
	}
	return out
}

func jurisdictionLabel(req *deadline.RequestContext) string {
	if req == nil {
		return "invalid"
	}
	if !req.Jurisdiction.IsValid() {
		return "invalid"
	}
	return string(req.Jurisdiction)
}
