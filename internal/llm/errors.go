package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrRateLimit reports an HTTP 429 or an equivalent quota error.
// RetryAfter is zero when the provider gave no hint.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse carries model output that is not valid JSON or does
// not match the request schema. Content is kept so callers can attempt
// their own repair.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers transport failures, 5xx answers and
// rejected credentials.
type ErrProviderUnavailable struct {
	StatusCode int
	Err        error
}

func (e *ErrProviderUnavailable) Error() string {
	switch {
	case e.Err == nil:
		return "LLM provider unavailable"
	case e.StatusCode > 0:
		return fmt.Sprintf("LLM provider unavailable (HTTP %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means the answer was cut off at the token limit.
// Content is the partial answer.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrTimeout means the provider did not answer before the deadline.
type ErrTimeout struct {
	After time.Duration
	Err   error
}

func (e *ErrTimeout) Error() string {
	if e.After > 0 {
		return fmt.Sprintf("LLM request timed out after %s: %v", e.After, e.Err)
	}
	return fmt.Sprintf("LLM request timed out: %v", e.Err)
}

func (e *ErrTimeout) Unwrap() error { return e.Err }

// mapContextError converts a context deadline into *ErrTimeout and passes
// cancellation through. It returns nil for any other error.
func mapContextError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ErrTimeout{Err: err}
	case errors.Is(err, context.Canceled):
		return err
	}
	return nil
}

// mapHTTPError classifies a failed API call by its HTTP status. header may
// be nil for SDKs that do not expose the response.
func mapHTTPError(status int, header http.Header, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: retryAfter(header, time.Now()), Err: err}
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return &ErrTimeout{Err: err}
	}
	return &ErrProviderUnavailable{StatusCode: status, Err: err}
}

// retryAfter reads a Retry-After header given either in seconds or as an
// HTTP date.
func retryAfter(header http.Header, now time.Time) time.Duration {
	v := header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

// retryable reports whether another attempt could plausibly succeed.
// Truncated and invalid answers are left to the caller to repair.
func retryable(err error) bool {
	var (
		maxTok  *ErrMaxTokensExceeded
		invalid *ErrInvalidResponse
		unavail *ErrProviderUnavailable
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.As(err, &maxTok), errors.As(err, &invalid):
		return false
	case errors.As(err, &unavail):
		return unavail.StatusCode == 0 || unavail.StatusCode >= 500
	}
	return true
}
