package ledgererror

import (
	"errors"
	"fmt"
)

// ErrTabNotFound is returned by remote stores when a tab does not exist.
var ErrTabNotFound = errors.New("tab not found")

// ValidationError represents an input file that cannot be used at all,
// e.g. a required column is missing.
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}

// ParseError represents a single input value that could not be parsed
type ParseError struct {
	Format string
	Row    int
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s row %d: failed to parse %s='%s': %v",
		e.Format, e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// QuotaExceededError is returned when the remote service rejects a call
// because the write quota is exhausted. It is transient.
type QuotaExceededError struct {
	Operation string
	Err       error
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded during %s: %v", e.Operation, e.Err)
}

func (e *QuotaExceededError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when a remote call exceeds its request timeout.
// It is transient.
type TimeoutError struct {
	Operation string
	Err       error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout during %s: %v", e.Operation, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// RemoteAPIError is any other failure reported by the remote service.
type RemoteAPIError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *RemoteAPIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote API error during %s (HTTP %d): %v", e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote API error during %s: %v", e.Operation, e.Err)
}

func (e *RemoteAPIError) Unwrap() error {
	return e.Err
}

// IsQuota reports whether err is or wraps a QuotaExceededError.
func IsQuota(err error) bool {
	var q *QuotaExceededError
	return errors.As(err, &q)
}

// IsTimeout reports whether err is or wraps a TimeoutError.
func IsTimeout(err error) bool {
	var t *TimeoutError
	return errors.As(err, &t)
}

// IsTransient reports whether the failed operation should be retried.
func IsTransient(err error) bool {
	return IsQuota(err) || IsTimeout(err)
}
