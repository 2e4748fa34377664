package errors

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// DomainErrorType is the category of a rule violation
type DomainErrorType string

const (
	DomainValidationError   DomainErrorType = "VALIDATION_ERROR"
	DomainBusinessRuleError DomainErrorType = "BUSINESS_RULE_ERROR"
	DomainNotFoundError     DomainErrorType = "NOT_FOUND"
)

// DomainError is a named violation. Code is stable and safe for clients
// to match on.
type DomainError struct {
	Type    DomainErrorType
	Code    string
	Message string
	Details map[string]interface{}
}

// NewDomainError creates a domain error with an empty details map
func NewDomainError(errorType DomainErrorType, code, message string) *DomainError {
	return &DomainError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Details: map[string]interface{}{},
	}
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is matches on type and code so clones satisfy errors.Is against the
// sentinel they came from
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Type == t.Type && e.Code == t.Code
}

// Status is the HTTP status for the error's type
func (e *DomainError) Status() int {
	switch e.Type {
	case DomainValidationError:
		return http.StatusBadRequest
	case DomainBusinessRuleError:
		return http.StatusUnprocessableEntity
	case DomainNotFoundError:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WithDetail sets one detail. Call it on a Clone, never on a sentinel.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	e.Details[key] = value
	return e
}

// Clone returns a copy with its own details map
func (e *DomainError) Clone() *DomainError {
	out := *e
	out.Details = make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		out.Details[k] = v
	}
	return &out
}

// Sentinels. Return Clone() so per-request details stay per request.
var (
	ErrInvalidAnalysisRange = NewDomainError(DomainValidationError,
		"INVALID_ANALYSIS_RANGE", "Analysis range must be one of 7, 30, 90 or 180 days")

	ErrUnknownFlagType = NewDomainError(DomainValidationError,
		"UNKNOWN_FLAG_TYPE", "Unknown crisis flag type")

	ErrEpisodeNotFound = NewDomainError(DomainNotFoundError,
		"EPISODE_NOT_FOUND", "The requested episode does not exist")

	ErrEpisodeDateOrder = NewDomainError(DomainBusinessRuleError,
		"EPISODE_DATE_ORDER", "Episode end date cannot precede its start date")
)

// FieldError is one rejected request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects field failures from one request
type ValidationErrors struct {
	Fields []FieldError
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add records a failure for field
func (v *ValidationErrors) Add(field, message string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether anything was added
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Fields) > 0
}

func (v *ValidationErrors) Error() string {
	messages := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		messages[i] = f.Message
	}
	return "Validation failed: " + strings.Join(messages, "; ")
}

// ToMap groups messages by field
func (v *ValidationErrors) ToMap() map[string][]string {
	out := make(map[string][]string, len(v.Fields))
	for _, f := range v.Fields {
		out[f.Field] = append(out[f.Field], f.Message)
	}
	return out
}

// fieldNames is the sorted set of rejected fields, for logging
func (v *ValidationErrors) fieldNames() []string {
	seen := make(map[string]struct{}, len(v.Fields))
	names := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		if _, ok := seen[f.Field]; ok {
			continue
		}
		seen[f.Field] = struct{}{}
		names = append(names, f.Field)
	}
	sort.Strings(names)
	return names
}
