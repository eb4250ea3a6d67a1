// Package errors provides the typed failures surfaced by the automation engine.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"recruit-automation/internal/common/validation"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeGuardRefusal      ErrorCode = "GUARD_REFUSAL"
	ErrCodeRuleNotFound      ErrorCode = "RULE_NOT_FOUND"
	ErrCodeTemplateNotFound  ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeEntityFetchFailed ErrorCode = "ENTITY_FETCH_FAILED"
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeDispatchFailed    ErrorCode = "DISPATCH_FAILED"
	ErrCodeRecipientMissing  ErrorCode = "RECIPIENT_MISSING"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// Error categories.
const (
	CategoryValidation   = "validation"
	CategoryGuard        = "guard"
	CategoryCollaborator = "collaborator"
	CategoryInternal     = "internal"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	Cause error `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// Is matches another *StandardError by code, so sentinel comparisons work
// through wrapping.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError carries field-scoped failures found before persistence.
func NewValidationError(fieldErrors []validation.ValidationError) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Automation rule validation failed",
		Details:   fmt.Sprintf("%d field error(s)", len(fieldErrors)),
		Retryable: false,
		Metadata:  map[string]interface{}{"fieldErrors": fieldErrors},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError reports a malformed request or job payload.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGuardRefusalError reports a preview blocked by the placeholder-recipient guard.
func NewGuardRefusalError(recipient, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGuardRefusal,
		Message:   "Test execution refused: recipient is not real sample data",
		Details:   reason,
		Retryable: false,
		Metadata:  map[string]interface{}{"recipient": recipient},
		Timestamp: time.Now().UTC(),
	}
}

// NewRuleNotFoundError creates a non-retryable lookup error.
func NewRuleNotFoundError(ruleID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRuleNotFound,
		Message:   "Automation rule not found",
		Details:   fmt.Sprintf("ruleId: %s", ruleID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Template not found",
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEntityFetchFailedError wraps a failed entity-list load.
func NewEntityFetchFailedError(kind string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEntityFetchFailed,
		Message:   "Entity data fetch failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"kind": kind},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewPersistenceFailedError wraps a rule or template store failure.
func NewPersistenceFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Automation store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"operation": operation},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewDispatchFailedError wraps a transport failure for a real send.
func NewDispatchFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDispatchFailed,
		Message:   "Message dispatch failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"channel": channel},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewRecipientMissingError reports a real run whose rendered message has nobody to go to.
func NewRecipientMissingError(channel string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecipientMissing,
		Message:   "No recipient address resolved",
		Details:   fmt.Sprintf("channel: %s", channel),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError normalizes an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// As extracts the first *StandardError in err's chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of err, or INTERNAL_ERROR for untyped errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := As(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err carries code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// FieldErrors returns the field errors attached to a validation failure.
func FieldErrors(err error) []validation.ValidationError {
	stdErr, ok := As(err)
	if !ok || stdErr.Code != ErrCodeValidationFailed {
		return nil
	}
	fields, _ := stdErr.Metadata["fieldErrors"].([]validation.ValidationError)
	return fields
}

// GetErrorCategory groups codes into the engine's failure taxonomy.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInvalidInput:
		return CategoryValidation
	case ErrCodeGuardRefusal:
		return CategoryGuard
	case ErrCodeRuleNotFound, ErrCodeTemplateNotFound, ErrCodeEntityFetchFailed,
		ErrCodePersistenceFailed, ErrCodeDispatchFailed, ErrCodeRecipientMissing:
		return CategoryCollaborator
	default:
		return CategoryInternal
	}
}

// IsRetryableErrorCode reports whether a workflow engine may retry the job.
// The automation engine itself never retries.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeEntityFetchFailed, ErrCodePersistenceFailed, ErrCodeDispatchFailed:
		return true
	}
	return false
}

// HTTPStatus maps an error code to a response status for the editor API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeGuardRefusal:
		return http.StatusConflict
	case ErrCodeRuleNotFound, ErrCodeTemplateNotFound:
		return http.StatusNotFound
	case ErrCodeEntityFetchFailed, ErrCodePersistenceFailed, ErrCodeDispatchFailed:
		return http.StatusBadGateway
	case ErrCodeRecipientMissing:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
