package sales

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidData wraps every dataset rejection. ErrMissingOptions means
// Analyze was called without a revenue or bonus strategy.
var (
	ErrInvalidData    = errors.New("invalid data")
	ErrMissingOptions = errors.New("options not configured")
	ErrUnknownSeller  = errors.New("unknown seller")
	ErrUnknownProduct = errors.New("unknown product")
	ErrSchemeNotFound = errors.New("bonus scheme not found")
)

// Stable error codes for callers that surface failures outside Go.
const (
	CodeInvalidData    = "invalid_data"
	CodeMissingOptions = "options_not_configured"
	CodeUnknownSeller  = "unknown_seller"
	CodeUnknownProduct = "unknown_product"
	CodeSchemeNotFound = "scheme_not_found"
	CodeInternalError  = "internal_error"
)

// ErrorCode maps err to one of the Code* constants.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidData):
		return CodeInvalidData
	case errors.Is(err, ErrMissingOptions):
		return CodeMissingOptions
	case errors.Is(err, ErrUnknownSeller):
		return CodeUnknownSeller
	case errors.Is(err, ErrUnknownProduct):
		return CodeUnknownProduct
	case errors.Is(err, ErrSchemeNotFound):
		return CodeSchemeNotFound
	default:
		return CodeInternalError
	}
}

// ValidationError describes one rejected field of a dataset.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return ErrInvalidData.Error() + ": " + e.describe()
}

func (e *ValidationError) describe() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidData }

// Details reports the rejected field, if any.
func (e *ValidationError) Details() map[string]interface{} {
	if e.Field == "" {
		return map[string]interface{}{}
	}
	return map[string]interface{}{"field": e.Field}
}

// MultiValidationError collects every problem found in one validation pass.
type MultiValidationError struct {
	Errors []*ValidationError
}

func (e *MultiValidationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrInvalidData.Error())
	for i, ve := range e.Errors {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(ve.describe())
	}
	return b.String()
}

func (e *MultiValidationError) Unwrap() error { return ErrInvalidData }

// Details lists the rejected fields under "fields".
func (e *MultiValidationError) Details() map[string]interface{} {
	fields := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		if ve.Field != "" {
			fields = append(fields, ve.Field)
		}
	}
	if len(fields) == 0 {
		return map[string]interface{}{}
	}
	return map[string]interface{}{"fields": fields}
}

func invalidData(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
