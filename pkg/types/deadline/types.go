// Package deadline defines the public request and result types of the
// deadline calculation engine: what a caller supplies (jurisdiction, project
// context, reference date, facts) and what the engine returns (computed
// deadlines, warnings, and an auditable rule trace).
package deadline

import (
	"fmt"
	"time"

	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/common"
)

// ProjectType distinguishes the two project classes statutes care about.
type ProjectType string

const (
	ProjectResidential    ProjectType = "residential"
	ProjectNonresidential ProjectType = "nonresidential"
)

// IsValid checks if the ProjectType is one of the supported classes.
func (p ProjectType) IsValid() bool {
	return p == ProjectResidential || p == ProjectNonresidential
}

// ProjectTypes returns the supported project classes.
func ProjectTypes() []ProjectType {
	return []ProjectType{ProjectResidential, ProjectNonresidential}
}

// PartyRole is the claimant's position in the construction payment chain.
type PartyRole string

const (
	RoleContractor    PartyRole = "contractor"
	RoleSubcontractor PartyRole = "subcontractor"
	RoleSupplier      PartyRole = "supplier"
)

// IsValid checks if the PartyRole is one of the supported roles.
func (r PartyRole) IsValid() bool {
	return r == RoleContractor || r == RoleSubcontractor || r == RoleSupplier
}

// PartyRoles returns the supported roles.
func PartyRoles() []PartyRole {
	return []PartyRole{RoleContractor, RoleSubcontractor, RoleSupplier}
}

// Facts is the caller-supplied map of named boolean facts consumed by
// conditional rules (e.g. "notice_of_commencement_filed").
type Facts map[string]bool

// Derived fact names the engine injects from the request context.  They are
// always present during resolution and cannot be overridden by caller facts.
const (
	FactProjectIsResidential    = "project_is_residential"
	FactProjectIsNonresidential = "project_is_nonresidential"
)

// RequestContext carries everything the engine needs for one computation.
// It is ephemeral: created per call, never persisted by the engine.
type RequestContext struct {
	Jurisdiction JurisdictionCode `json:"jurisdiction"`
	ProjectType  ProjectType      `json:"project_type"`
	PartyRole    PartyRole        `json:"party_role"`

	// ReferenceDate is the anchor the statutes count from, typically the
	// first furnishing of labor or material.
	ReferenceDate common.Date `json:"reference_date"`

	// ConditionalFacts supplies the named booleans conditional rules test.
	// Missing facts fail resolution loudly; they are never defaulted.
	ConditionalFacts Facts `json:"conditional_facts,omitempty"`
}

// Validate checks the context is complete and well-formed.  The jurisdiction
// check is the validation-layer gate: it runs before any registry lookup.
func (rc *RequestContext) Validate() error {
	if rc == nil {
		return errors.InvalidParam("request context is nil")
	}
	if !rc.Jurisdiction.IsValid() {
		return errors.UnknownJurisdiction(string(rc.Jurisdiction))
	}
	if !rc.ProjectType.IsValid() {
		return errors.InvalidParam(fmt.Sprintf("invalid project type %q", rc.ProjectType))
	}
	if !rc.PartyRole.IsValid() {
		return errors.InvalidParam(fmt.Sprintf("invalid party role %q", rc.PartyRole))
	}
	if rc.ReferenceDate.IsZero() {
		return errors.InvalidParam("reference date is required")
	}
	return nil
}

// AbsenceReason explains why a preliminary-notice deadline is absent from a
// result.  Absence always carries a reason; a silent nil date is forbidden.
type AbsenceReason string

const (
	// AbsenceNoNoticeInJurisdiction — the jurisdiction never requires a
	// preliminary notice.
	AbsenceNoNoticeInJurisdiction AbsenceReason = "no_preliminary_notice_in_jurisdiction"

	// AbsenceConditionNotMet — the jurisdiction requires notice only under a
	// condition the request's facts did not satisfy.
	AbsenceConditionNotMet AbsenceReason = "condition_not_met"
)

// NoticeOutcome is the preliminary-notice half of a result: either a deadline
// or an explicit absence with its reason.
type NoticeOutcome struct {
	// Deadline is set when a preliminary notice is required.
	Deadline *common.Date `json:"deadline,omitempty"`

	// Reason is set when Deadline is absent.
	Reason AbsenceReason `json:"reason,omitempty"`

	// Condition names the predicate that was not met; set only with
	// AbsenceConditionNotMet.
	Condition string `json:"condition,omitempty"`
}

// Required reports whether this outcome carries a deadline.
func (o NoticeOutcome) Required() bool {
	return o.Deadline != nil
}

// TraceStep records one variant visited while resolving a rule, in traversal
// order.  The trace exists for auditability: a reviewer can reconstruct which
// branch of a jurisdiction's rule produced the date.
type TraceStep struct {
	// Rule is the rule being resolved: "preliminary_notice" or "lien_filing".
	Rule string `json:"rule"`

	// Variant is the variant kind visited (flat_days, business_days,
	// month_plus_day, role_dependent, conditional).
	Variant string `json:"variant"`

	// Note carries the branch decision, e.g. "role=subcontractor" or
	// "notice_of_commencement_filed=false".
	Note string `json:"note,omitempty"`
}

// Trace targets.
const (
	TracePreliminaryNotice = "preliminary_notice"
	TraceLienFiling        = "lien_filing"
)

// Result is the engine's output for one request: an immutable value the
// caller consumes and discards.
type Result struct {
	// RequestID correlates this result with engine logs.
	RequestID common.ID `json:"request_id"`

	Jurisdiction JurisdictionCode `json:"jurisdiction"`
	StateName    string           `json:"state_name"`

	PreliminaryNotice NoticeOutcome `json:"preliminary_notice"`
	LienFiling        common.Date   `json:"lien_filing"`

	// Warnings are advisory strings derived from the jurisdiction's special
	// flags, in flag-declaration order.
	Warnings []string `json:"warnings,omitempty"`

	// RuleTrace lists the variants traversed for each rule, in order.
	RuleTrace []TraceStep `json:"rule_trace"`

	ComputedAt time.Time `json:"computed_at"`
}
