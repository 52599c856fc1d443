// Package fetcher retrieves the single page an audit inspects.
//
// Fetch normalizes the target URL, issues one GET with an identifying
// User-Agent under a hard timeout, decodes the body to UTF-8 and reports the
// time to first response. It never retries. Failures are classified into four
// error types so callers can tell them apart:
//   - ValidationError: the URL is malformed; nothing was sent
//   - TimeoutError: no complete response within the timeout
//   - HTTPStatusError: the server answered with a non-2xx status
//   - FetchError: any other transport failure (DNS, TLS, connection reset)
//
// Each type also matches a sentinel (ErrValidation, ErrTimeout, ErrHTTPStatus,
// ErrFetch) through errors.Is.
package fetcher
