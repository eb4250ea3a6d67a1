package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Field error codes.
const (
	CodeRequired      = "REQUIRED_FIELD_MISSING"
	CodeInvalidValue  = "INVALID_VALUE"
	CodeMaxLength     = "MAX_LENGTH_VIOLATION"
	CodeSchemaFailure = "SCHEMA_VIOLATION"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// NewResult wraps collected errors.
func NewResult(errs []ValidationError) *ValidationResult {
	return &ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// Required appends a REQUIRED error when value is blank.
func Required(errs []ValidationError, field, value string) []ValidationError {
	if strings.TrimSpace(value) == "" {
		return append(errs, ValidationError{
			Field:   field,
			Message: field + " is required",
			Code:    CodeRequired,
		})
	}
	return errs
}

// MaxLength appends a MAX_LENGTH error when value exceeds limit runes.
func MaxLength(errs []ValidationError, field, value string, limit int) []ValidationError {
	if len([]rune(value)) > limit {
		return append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be at most %d characters", field, limit),
			Code:    CodeMaxLength,
		})
	}
	return errs
}

// Invalid appends an INVALID_VALUE error.
func Invalid(errs []ValidationError, field, message string) []ValidationError {
	return append(errs, ValidationError{Field: field, Message: message, Code: CodeInvalidValue})
}

// ValidateAgainstSchema checks a decoded JSON document against a JSON schema.
func ValidateAgainstSchema(schema map[string]interface{}, document interface{}) (*ValidationResult, error) {
	if len(schema) == 0 {
		return NewResult(nil), nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	var errs []ValidationError
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "(root)" {
			if prop, ok := desc.Details()["property"].(string); ok {
				field = prop
			}
		}
		errs = append(errs, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    CodeSchemaFailure,
		})
	}
	return NewResult(errs), nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
