package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_005"
	ErrCodeTimeout            ErrorCode = "COMMON_006"
	ErrCodeValidation         ErrorCode = "COMMON_007"
	ErrCodeSerialization      ErrorCode = "COMMON_008"
	ErrCodeDatabaseError      ErrorCode = "COMMON_009"
	ErrCodeCacheError         ErrorCode = "COMMON_010"
	ErrCodeNotImplemented     ErrorCode = "COMMON_011"
)

// Engine Error Codes — failures of the resolution entry point itself.
const (
	ErrCodeUnknownJurisdiction ErrorCode = "ENGINE_001"
	ErrCodeMissingFact         ErrorCode = "ENGINE_002"
)

// Rule Error Codes — defects in rule data discovered at validation or
// resolution time.
const (
	ErrCodeRuleDataIncomplete ErrorCode = "RULE_001"
	ErrCodeRuleUnknownVariant ErrorCode = "RULE_002"
	ErrCodeRuleDecodeFailed   ErrorCode = "RULE_003"
)

// Calendar Error Codes
const (
	ErrCodeCalendarUnavailable ErrorCode = "CAL_001"
	ErrCodeInvalidArgument     ErrorCode = "CAL_002"
)

// Registry Error Codes
const (
	ErrCodeRegistryUnavailable ErrorCode = "REG_001"
	ErrCodeRuleNotFound        ErrorCode = "REG_002"
	ErrCodeRegistryEmpty       ErrorCode = "REG_003"
)

// Config Error Codes
const (
	ErrCodeConfigInvalid  ErrorCode = "CFG_001"
	ErrCodeConfigNotFound ErrorCode = "CFG_002"
)

// Short aliases used throughout the codebase.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict

	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes for the API layer
// that sits in front of the engine.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeUnknownJurisdiction: http.StatusBadRequest,
	ErrCodeMissingFact:         http.StatusBadRequest,

	ErrCodeRuleDataIncomplete: http.StatusInternalServerError,
	ErrCodeRuleUnknownVariant: http.StatusInternalServerError,
	ErrCodeRuleDecodeFailed:   http.StatusInternalServerError,

	ErrCodeCalendarUnavailable: http.StatusServiceUnavailable,
	ErrCodeInvalidArgument:     http.StatusBadRequest,

	ErrCodeRegistryUnavailable: http.StatusServiceUnavailable,
	ErrCodeRuleNotFound:        http.StatusNotFound,
	ErrCodeRegistryEmpty:       http.StatusServiceUnavailable,

	ErrCodeConfigInvalid:  http.StatusInternalServerError,
	ErrCodeConfigNotFound: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeUnknownJurisdiction: "unknown jurisdiction code",
	ErrCodeMissingFact:         "required fact not supplied",

	ErrCodeRuleDataIncomplete: "jurisdiction rule data is incomplete",
	ErrCodeRuleUnknownVariant: "unknown deadline rule variant",
	ErrCodeRuleDecodeFailed:   "failed to decode deadline rule",

	ErrCodeCalendarUnavailable: "holiday calendar unavailable",
	ErrCodeInvalidArgument:     "invalid argument",

	ErrCodeRegistryUnavailable: "rule registry store unavailable",
	ErrCodeRuleNotFound:        "no rule stored for jurisdiction",
	ErrCodeRegistryEmpty:       "rule registry has not been loaded",

	ErrCodeConfigInvalid:  "invalid configuration",
	ErrCodeConfigNotFound: "configuration file not found",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
