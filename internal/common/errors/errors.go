// Package errors provides the standardized error taxonomy shared by the
// resolver, data agents and workflow engine.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeLocationNotFound   ErrorCode = "LOCATION_NOT_FOUND"
	ErrCodeInvalidSelection   ErrorCode = "INVALID_SELECTION"
	ErrCodeWorkflowNotWaiting ErrorCode = "WORKFLOW_NOT_WAITING"
	ErrCodeInsufficientInput  ErrorCode = "INSUFFICIENT_INPUT"

	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeSearchTimeout       ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeMetricFetchTimeout  ErrorCode = "METRIC_FETCH_TIMEOUT"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the taxonomy code from any error, mapping non-standard
// errors to INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given taxonomy code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// ==========================
// 2. Error Constructors
// ==========================

// NewLocationNotFoundError creates a non-retryable resolution error.
func NewLocationNotFoundError(locationText string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLocationNotFound,
		Message:   "No matching location found",
		Details:   fmt.Sprintf("locationText: %s", locationText),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidSelectionError creates a non-retryable selection error.
func NewInvalidSelectionError(index, candidateCount int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSelection,
		Message:   "Selection index out of range",
		Details:   fmt.Sprintf("index: %d, candidates: %d", index, candidateCount),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWorkflowNotWaitingError creates a non-retryable resume error for a
// workflow that is not suspended at the selection step.
func NewWorkflowNotWaitingError(status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkflowNotWaiting,
		Message:   "Workflow is not waiting for a selection",
		Details:   fmt.Sprintf("status: %s", status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInsufficientInputError creates a non-retryable parameter error.
func NewInsufficientInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsufficientInput,
		Message:   "Query is missing required parameters",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamUnavailableError creates a retryable collaborator failure.
func NewUpstreamUnavailableError(collaborator string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamUnavailable,
		Message:   "Upstream collaborator failed",
		Details:   fmt.Sprintf("collaborator: %s, error: %v", collaborator, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable location-search timeout error.
func NewSearchTimeoutError(locationText string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Location search timed out",
		Details:   fmt.Sprintf("locationText: %s", locationText),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMetricFetchTimeoutError creates a retryable metric-fetch timeout error.
func NewMetricFetchTimeoutError(agentKind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMetricFetchTimeout,
		Message:   "Metric fetch timed out",
		Details:   fmt.Sprintf("agent: %s", agentKind),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
