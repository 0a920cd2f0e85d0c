// Package errors provides the unified error type and factory functions for the
// LienClock deadline engine.  Every layer (domain, application, infrastructure,
// interfaces) uses AppError as the single carrier for structured error
// information, enabling consistent CLI output, logging, and monitoring, and a
// stable contract for the API layer that fronts the engine.
package errors

import (
	"errors"
	"fmt"
)

// ─────────────────────────────────────────────────────────────────────────────
// AppError — the canonical error type
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type used throughout LienClock.
// It satisfies the standard error interface and supports Go 1.13+ error
// wrapping so that errors.Is / errors.As / errors.Unwrap work transparently
// across all layers.
//
// Usage:
//
//	return errors.UnknownJurisdiction("ZZ")
//	return errors.Wrap(storeErr, errors.ErrCodeRegistryUnavailable, "reload failed")
//	return errors.MissingFact("notice_of_commencement_filed").
//	           WithDetail("jurisdiction=OH")
type AppError struct {
	// Code is the typed error code that uniquely identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error, suitable
	// for inclusion in responses returned to callers.
	Message string

	// Detail carries supplementary context (jurisdiction codes, fact names,
	// store DSNs with credentials stripped) that aids debugging without leaking
	// internals to end users.
	Detail string

	// Cause is the underlying error that triggered this AppError, enabling
	// errors.Is / errors.As traversal of the full error chain.
	Cause error

	// Stack contains the formatted call-stack captured at the point of error
	// creation.  It is populated by New and Wrap but compiled out with the
	// "nostack" build tag.  Stack is intentionally not included in Error()
	// output; structured logging middleware reads the field directly.
	Stack string
}

// ─────────────────────────────────────────────────────────────────────────────
// error interface implementation
// ─────────────────────────────────────────────────────────────────────────────

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>"; the detail segment is omitted when
// Detail is empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error, enabling errors.Is and errors.As
// to traverse the full error chain without any additional boilerplate at call
// sites.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ─────────────────────────────────────────────────────────────────────────────
// Fluent builder methods
// ─────────────────────────────────────────────────────────────────────────────

// WithDetail returns a shallow copy of the receiver with Detail set to the
// supplied string.  It is safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithDetailf is WithDetail with fmt.Sprintf formatting.
func (e *AppError) WithDetailf(format string, args ...interface{}) *AppError {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
// Use this when you want to attach a lower-level error to an already
// constructed AppError without going through Wrap.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Primary factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
// A call-stack snapshot is captured automatically (unless compiled with
// -tags nostack).
//
// New is the preferred factory for errors that originate in the current layer
// without an underlying cause from a lower layer.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Newf is New with fmt.Sprintf formatting of the message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error.
// If err is nil, Wrap returns nil so it can be used inline:
//
//	return errors.Wrap(repo.FetchAll(ctx), errors.ErrCodeRegistryUnavailable, "store fetch failed")
//
// When err is already an *AppError and code is CodeUnknown the original code
// is preserved, preventing loss of the original classification during
// cross-layer propagation.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	// Preserve original code when the caller is just adding context.
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.  It is the idiomatic way to check specific failure modes:
//
//	if errors.IsCode(err, errors.ErrCodeUnknownJurisdiction) { ... }
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether any error in err's chain is an *AppError with
// CodeNotFound or ErrCodeRuleNotFound.
func IsNotFound(err error) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) {
			switch ae.Code {
			case CodeNotFound, ErrCodeRuleNotFound, ErrCodeConfigNotFound:
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsTransient reports whether err represents a condition the caller may retry
// with backoff: an unreachable holiday calendar or rule store, a timeout, or
// a generic service-unavailable.  Data defects and bad input are never
// transient.
func IsTransient(err error) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) {
			switch ae.Code {
			case ErrCodeCalendarUnavailable, ErrCodeRegistryUnavailable,
				ErrCodeServiceUnavailable, ErrCodeTimeout:
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError found in err's
// chain.  If no *AppError is present, CodeUnknown is returned; a nil error
// yields CodeOK.
//
// This is useful in logging and metrics layers that need a single code to
// emit as a label without coupling to specific failure modes.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factory functions for the engine error taxonomy
// ─────────────────────────────────────────────────────────────────────────────
// Each function names the failure the way call sites talk about it:
//
//   return errors.UnknownJurisdiction(code.String())
//   return errors.MissingFact("notice_of_commencement_filed")

// NotFound constructs a CodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Stack:   captureStack(1),
	}
}

// InvalidParam constructs a CodeInvalidParam AppError, used for malformed
// caller input outside the jurisdiction-code check.
func InvalidParam(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidParam,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Internal constructs a CodeInternal AppError.
// Use this for unexpected failures where no more specific code applies.
// Always log the underlying cause before or after calling Internal.
func Internal(message string) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Conflict constructs a CodeConflict AppError.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Stack:   captureStack(1),
	}
}

// UnknownJurisdiction constructs an ErrCodeUnknownJurisdiction AppError
// naming the rejected code.
func UnknownJurisdiction(code string) *AppError {
	return &AppError{
		Code:    ErrCodeUnknownJurisdiction,
		Message: fmt.Sprintf("unknown jurisdiction code %q", code),
		Stack:   captureStack(1),
	}
}

// MissingFact constructs an ErrCodeMissingFact AppError naming the fact or
// role the rule needed and the request did not supply.
func MissingFact(name string) *AppError {
	return &AppError{
		Code:    ErrCodeMissingFact,
		Message: fmt.Sprintf("required fact %q not supplied in request context", name),
		Stack:   captureStack(1),
	}
}

// RuleDataIncomplete constructs an ErrCodeRuleDataIncomplete AppError.
// This indicates a rule-data defect, not a caller mistake; it should never
// occur against a validated rule set.
func RuleDataIncomplete(message string) *AppError {
	return &AppError{
		Code:    ErrCodeRuleDataIncomplete,
		Message: message,
		Stack:   captureStack(1),
	}
}

// CalendarUnavailable constructs an ErrCodeCalendarUnavailable AppError.
// Callers may retry with backoff.
func CalendarUnavailable(message string) *AppError {
	return &AppError{
		Code:    ErrCodeCalendarUnavailable,
		Message: message,
		Stack:   captureStack(1),
	}
}

// RegistryUnavailable constructs an ErrCodeRegistryUnavailable AppError.
func RegistryUnavailable(message string) *AppError {
	return &AppError{
		Code:    ErrCodeRegistryUnavailable,
		Message: message,
		Stack:   captureStack(1),
	}
}

// InvalidArgument constructs an ErrCodeInvalidArgument AppError, used by the
// calendar arithmetic for out-of-domain inputs such as negative business-day
// counts.
func InvalidArgument(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidArgument,
		Message: message,
		Stack:   captureStack(1),
	}
}
