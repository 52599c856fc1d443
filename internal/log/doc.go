// Package log provides slog loggers that mask secrets before they are written.
//
// ShopAudit logs fetched URLs, request headers of the HTTP API and per-site
// request settings. Those can carry storefront cookies, admin API tokens,
// premium export tokens or credentials embedded in URLs. SecureHandler wraps
// any slog.Handler and masks:
//   - attributes whose key names a secret (cookie, authorization, token, session, ...)
//   - values shaped like credentials (bearer/basic, JWT, platform and payment keys)
//   - the password and credential query parameters of http(s) URLs
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//	logger.Info("fetching", "url", "https://shop.example.com/?preview_token=abc")
//	// url=https://shop.example.com/?preview_token=%2A%2A%2AREDACTED%2A%2A%2A
package log
