package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"mbh/ledger-sync/internal/ledgererror"

	"google.golang.org/api/googleapi"
)

// classify maps a client error to the ledger error taxonomy. parent is the
// caller's context: its own cancellation is returned unchanged so callers
// stop instead of retrying.
func classify(parent context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if parent.Err() != nil {
		return parent.Err()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &ledgererror.TimeoutError{Operation: op, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ledgererror.TimeoutError{Operation: op, Err: err}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case isQuotaError(apiErr):
			return &ledgererror.QuotaExceededError{Operation: op, Err: err}
		case apiErr.Code == http.StatusRequestTimeout || apiErr.Code == http.StatusGatewayTimeout:
			return &ledgererror.TimeoutError{Operation: op, Err: err}
		case apiErr.Code == http.StatusNotFound || isMissingRange(apiErr):
			return &ledgererror.RemoteAPIError{
				Operation:  op,
				StatusCode: apiErr.Code,
				Err:        fmt.Errorf("%w: %v", ledgererror.ErrTabNotFound, err),
			}
		default:
			return &ledgererror.RemoteAPIError{Operation: op, StatusCode: apiErr.Code, Err: err}
		}
	}

	if strings.Contains(strings.ToLower(err.Error()), "quota") {
		return &ledgererror.QuotaExceededError{Operation: op, Err: err}
	}
	return &ledgererror.RemoteAPIError{Operation: op, Err: err}
}

func isQuotaError(e *googleapi.Error) bool {
	if e.Code == http.StatusTooManyRequests {
		return true
	}
	for _, item := range e.Errors {
		if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
			return true
		}
	}
	text := strings.ToLower(e.Message + " " + e.Body)
	return strings.Contains(text, "resource_exhausted") || strings.Contains(text, "quota")
}

// The Sheets API answers 400 "Unable to parse range" for a missing tab.
func isMissingRange(e *googleapi.Error) bool {
	return e.Code == http.StatusBadRequest && strings.Contains(e.Message+e.Body, "Unable to parse range")
}
