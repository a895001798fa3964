package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Input Errors (INPUT_*)
	ErrorCodeMalformedInput ErrorCode = "INPUT_MALFORMED"

	// Reconciliation Errors (RECON_*)
	ErrorCodeDivisionUndefined ErrorCode = "RECON_DIVISION_UNDEFINED"

	// Invoice Lookup Errors (INVOICE_*)
	ErrorCodeInvoiceLookupFailed ErrorCode = "INVOICE_LOOKUP_FAILED"
	ErrorCodeInvoiceMalformed    ErrorCode = "INVOICE_MALFORMED"

	// Configuration Errors (CONFIG_*)
	ErrorCodeConfigInvalid     ErrorCode = "CONFIG_INVALID"
	ErrorCodeSecretUnavailable ErrorCode = "CONFIG_SECRET_UNAVAILABLE"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code, so that
// wrapped instances match their sentinel via errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsConfigError checks if an error was raised while resolving configuration
func IsConfigError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeConfigInvalid ||
		code == ErrorCodeSecretUnavailable
}

// Sentinel errors. Compare with errors.Is; wrapped copies carry the same code.
var (
	ErrMalformedInput      = NewDomainError(ErrorCodeMalformedInput, "settlement report has no header line")
	ErrDivisionUndefined   = NewDomainError(ErrorCodeDivisionUndefined, "invoice total quantity is zero")
	ErrInvoiceLookupFailed = NewDomainError(ErrorCodeInvoiceLookupFailed, "invoice lookup failed")
	ErrInvoiceMalformed    = NewDomainError(ErrorCodeInvoiceMalformed, "invoice response is malformed")
	ErrConfigInvalid       = NewDomainError(ErrorCodeConfigInvalid, "invalid configuration")
	ErrSecretUnavailable   = NewDomainError(ErrorCodeSecretUnavailable, "secret unavailable")
)
