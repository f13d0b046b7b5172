package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/anthropics/anthropic-sdk-go"
)

// TransientError wraps a provider failure that may succeed on retry:
// network failures, timeouts, rate limits, and server-side errors.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient provider error: %v", e.Cause)
}

func (e *TransientError) Unwrap() error { return e.Cause }

// FatalError wraps a provider failure that will not succeed on retry:
// authentication failures and malformed requests.
type FatalError struct {
	Cause error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal provider error: %v", e.Cause)
}

func (e *FatalError) Unwrap() error { return e.Cause }

// IsRetryable reports whether err is a transient provider failure.
// Context cancellation is never retryable.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var transient *TransientError
	return errors.As(err, &transient)
}

// classify maps an outbound call failure onto the transient/fatal taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}

	// Cancellation passes through untouched so callers can errors.Is on it.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 408, apiErr.StatusCode == 409, apiErr.StatusCode == 429:
			return &TransientError{Cause: err}
		case apiErr.StatusCode >= 500:
			return &TransientError{Cause: err}
		default:
			// 400 malformed request, 401/403 auth, 404 model not found.
			return &FatalError{Cause: err}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &TransientError{Cause: err}
	}

	// Unrecognized failures are treated as transient so a flaky connection
	// reset does not kill the run outright.
	return &TransientError{Cause: err}
}
