package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/nao1215/shopaudit/internal/database"
	"github.com/nao1215/shopaudit/internal/fetcher"
	"github.com/nao1215/shopaudit/internal/report"
)

var (
	// ErrPremiumRequired is returned by a Gate that refuses a request.
	ErrPremiumRequired = errors.New("premium export requires a valid token")

	// ErrBadRequest wraps malformed request bodies and parameters.
	ErrBadRequest = errors.New("bad request")

	// ErrRateLimited is returned when a client exceeds its audit rate.
	ErrRateLimited = errors.New("too many audit requests")
)

// Error codes returned in the "code" field of error responses.
const (
	CodeBadRequest      = "bad_request"
	CodeNotFound        = "not_found"
	CodePremiumRequired = "premium_required"
	CodeRateLimited     = "rate_limited"
	CodeInternal        = "internal"
	CodeCanceled        = "canceled"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// classify maps an error to an HTTP status and an error code.
// Fetch failures use the fetcher kinds as codes. Cancellation wins over
// every other kind.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, context.Canceled):
		// 499 is the de facto status for a client that went away, even when
		// the fetch error is what carries the cancellation.
		return 499, CodeCanceled
	case errors.Is(err, fetcher.ErrValidation):
		return http.StatusBadRequest, fetcher.KindValidation
	case errors.Is(err, fetcher.ErrTimeout):
		return http.StatusGatewayTimeout, fetcher.KindTimeout
	case errors.Is(err, fetcher.ErrHTTPStatus):
		return http.StatusBadGateway, fetcher.KindHTTPStatus
	case errors.Is(err, fetcher.ErrFetch):
		return http.StatusBadGateway, fetcher.KindFetch
	case errors.Is(err, ErrBadRequest), errors.Is(err, report.ErrUnknownFormat):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, ErrPremiumRequired):
		return http.StatusPaymentRequired, CodePremiumRequired
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, CodeRateLimited
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
