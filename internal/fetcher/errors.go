package fetcher

import (
	"errors"
	"fmt"
	"time"
)

// Sentinels matched by the typed fetch errors through errors.Is.
var (
	// ErrValidation is matched by *ValidationError.
	ErrValidation = errors.New("invalid url")

	// ErrTimeout is matched by *TimeoutError.
	ErrTimeout = errors.New("fetch timed out")

	// ErrHTTPStatus is matched by *HTTPStatusError.
	ErrHTTPStatus = errors.New("unexpected http status")

	// ErrFetch is matched by *FetchError.
	ErrFetch = errors.New("fetch failed")
)

// ValidationError reports a URL that cannot be audited. No request was sent.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid url %q: %s", e.Input, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TimeoutError reports that no complete response arrived within the timeout.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("fetching %s: no response within %s", e.URL, e.Timeout)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// HTTPStatusError reports a non-2xx response.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetching %s: http status %d", e.URL, e.StatusCode)
}

// Is reports whether target is ErrHTTPStatus.
func (e *HTTPStatusError) Is(target error) bool { return target == ErrHTTPStatus }

// FetchError reports any other transport failure.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

// Is reports whether target is ErrFetch.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// Unwrap returns the underlying transport error.
func (e *FetchError) Unwrap() error { return e.Err }

// Error kinds returned by Kind.
const (
	KindValidation = "validation"
	KindTimeout    = "timeout"
	KindHTTPStatus = "http_status"
	KindFetch      = "fetch"
	KindOther      = "other"
)

// Kind returns a short stable name for the class of err, for metrics and API error codes.
// It returns "" for a nil error.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrHTTPStatus):
		return KindHTTPStatus
	case errors.Is(err, ErrFetch):
		return KindFetch
	default:
		return KindOther
	}
}
