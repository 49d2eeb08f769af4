package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeConfig      ErrorType = "config"
	ErrorTypeConnection  ErrorType = "connection"  // SAP session unavailable, fatal for the run
	ErrorTypeLocate      ErrorType = "locate"      // UI object not found after polling
	ErrorTypeTransaction ErrorType = "transaction" // one record's attempt failed
	ErrorTypeSource      ErrorType = "source"      // input file missing/unreadable, fatal for the run
	ErrorTypeIO          ErrorType = "io"
	ErrorTypeReport      ErrorType = "report"
)

// AppError is a structured error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Op      string // Operation that failed
}

// Error returns the error message
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new configuration error
func NewConfigError(op, message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
		Op:      op,
	}
}

// NewConnectionError creates an error for a failed SAP session attach.
// Connection errors are never retried: if the SAP GUI is not already
// running and logged in, waiting does not help.
func NewConnectionError(op, message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConnection,
		Message: message,
		Err:     err,
		Op:      op,
	}
}

// NewObjectNotFound creates an error for a UI object that stayed absent
// through the locator's whole polling budget.
func NewObjectNotFound(op, path string, elapsed time.Duration) *AppError {
	return &AppError{
		Type:    ErrorTypeLocate,
		Message: fmt.Sprintf("objeto %s não encontrado após %.1fs", path, elapsed.Seconds()),
		Op:      op,
	}
}

// NewTransactionError creates an error scoped to one record's current attempt
func NewTransactionError(op, message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeTransaction,
		Message: message,
		Err:     err,
		Op:      op,
	}
}

// NewSourceError creates an error for an unusable input file
func NewSourceError(op, message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeSource,
		Message: message,
		Err:     err,
		Op:      op,
	}
}

// NewIOError creates a new I/O error
func NewIOError(op, message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeIO,
		Message: message,
		Err:     err,
		Op:      op,
	}
}

// NewReportError creates an error for a failed result persistence
func NewReportError(op, message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeReport,
		Message: message,
		Err:     err,
		Op:      op,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if err == nil {
		return false
	}
	ok := errors.As(err, &appErr)
	return ok && appErr.Type == errorType
}

// IsRetryable reports whether a failure should trigger the transaction's
// restart-from-open retry. Locate and transaction failures are retryable;
// connection and source failures abort the whole run.
func IsRetryable(err error) bool {
	return IsType(err, ErrorTypeLocate) || IsType(err, ErrorTypeTransaction)
}

// GetOp returns the operation from an error, if available
func GetOp(err error) string {
	var appErr *AppError
	if err == nil {
		return ""
	}
	if errors.As(err, &appErr) {
		return appErr.Op
	}
	return ""
}
