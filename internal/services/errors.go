// Package services provides the business logic layer between handlers and
// the analysis pipeline: loading, caching, running and error classification.
package services

import (
	"context"
	"errors"

	"github.com/soltixdb/trendscope/internal/analytics"
)

// Error codes returned to API clients
const (
	CodeMalformedRow        = "MALFORMED_ROW"
	CodeInvalidWindow       = "INVALID_WINDOW"
	CodeInvalidPredicate    = "INVALID_PREDICATE"
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeSourceFailed        = "SOURCE_FAILED"
	CodeSourceNotConfigured = "SOURCE_NOT_CONFIGURED"
	CodeAnalysisFailed      = "ANALYSIS_FAILED"
	CodeCanceled            = "CANCELED"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying error to errors.Is / errors.As
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// classify maps loader and pipeline errors to a ServiceError. Errors that
// are not typed analysis errors are attributed to fallbackCode.
func classify(err error, fallbackCode string) *ServiceError {
	if err == nil {
		return nil
	}

	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}

	var mre *analytics.MalformedRowError
	if errors.As(err, &mre) {
		return &ServiceError{
			Code:    CodeMalformedRow,
			Message: err.Error(),
			Details: map[string]interface{}{
				"row":   mre.Row,
				"field": mre.Field,
			},
			Err: err,
		}
	}

	var iwe *analytics.InvalidWindowError
	if errors.As(err, &iwe) {
		return &ServiceError{
			Code:    CodeInvalidWindow,
			Message: err.Error(),
			Details: map[string]interface{}{"window": iwe.Window},
			Err:     err,
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ServiceError{Code: CodeCanceled, Message: err.Error(), Err: err}
	}

	return &ServiceError{Code: fallbackCode, Message: err.Error(), Err: err}
}

// classifySourceError maps an error loading from an external store. Bad
// stored records are the store's fault, not the caller's.
func classifySourceError(err error) *ServiceError {
	var mre *analytics.MalformedRowError
	if errors.As(err, &mre) {
		return &ServiceError{
			Code:    CodeSourceFailed,
			Message: "source returned a malformed record: " + err.Error(),
			Details: map[string]interface{}{
				"row":   mre.Row,
				"field": mre.Field,
			},
			Err: err,
		}
	}
	return classify(err, CodeSourceFailed)
}
