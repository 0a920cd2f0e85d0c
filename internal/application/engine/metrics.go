package engine

import (
	"time"

	"github.com/noticeworks/lienclock/pkg/errors"
)

// Metrics receives resolution and reload observations. The Prometheus
// collector in infrastructure implements it; NopMetrics discards.
type Metrics interface {
	ObserveResolve(jurisdiction, outcome string, elapsed time.Duration)
	ObserveReload(result string, elapsed time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) ObserveResolve(string, string, time.Duration) {}
func (nopMetrics) ObserveReload(string, time.Duration)          {}

// NopMetrics returns a Metrics sink that drops every observation.
func NopMetrics() Metrics { return nopMetrics{} }

// Outcome labels kept low-cardinality for metric use.
const (
	OutcomeOK                  = "ok"
	OutcomeInvalidRequest      = "invalid_request"
	OutcomeUnknownJurisdiction = "unknown_jurisdiction"
	OutcomeMissingFact         = "missing_fact"
	OutcomeRuleDataIncomplete  = "rule_data_incomplete"
	OutcomeCalendarUnavailable = "calendar_unavailable"
	OutcomeRegistryUnavailable = "registry_unavailable"
	OutcomeError               = "error"
)

// outcomeLabel folds an error into its metric label.
func outcomeLabel(err error) string {
	if err == nil {
		return OutcomeOK
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeUnknownJurisdiction:
		return OutcomeUnknownJurisdiction
	case errors.ErrCodeMissingFact:
		return OutcomeMissingFact
	case errors.ErrCodeRuleDataIncomplete:
		return OutcomeRuleDataIncomplete
	case errors.ErrCodeCalendarUnavailable:
		return OutcomeCalendarUnavailable
	case errors.ErrCodeRegistryUnavailable:
		return OutcomeRegistryUnavailable
	case errors.CodeInvalidParam, errors.ErrCodeInvalidArgument:
		return OutcomeInvalidRequest
	default:
		return OutcomeError
	}
}
