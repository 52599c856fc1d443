package config

import "errors"

// Configuration validation errors returned by the Validate methods.
var (
	// ErrNoTarget is returned when no URL to audit is given.
	ErrNoTarget = errors.New("no target specified: provide one or more URLs")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrUnknownFormat is returned for an output format other than text, json, markdown or html.
	ErrUnknownFormat = errors.New("unknown output format: use text, json, markdown or html")

	// ErrUnknownStore is returned for a storage backend other than sqlite, memory or redis.
	ErrUnknownStore = errors.New("unknown store: use sqlite, memory or redis")

	// ErrMissingRedisURL is returned when the redis store is selected without a URL.
	ErrMissingRedisURL = errors.New("redis store requires --redis-url")

	// ErrInvalidThreshold is returned when a rule threshold is out of range.
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrInvalidAddr is returned when the server listen address is empty.
	ErrInvalidAddr = errors.New("invalid listen address: must not be empty")

	// ErrInvalidRateLimit is returned when the server rate limit or burst is negative.
	ErrInvalidRateLimit = errors.New("invalid rate limit: rate and burst must be non-negative")
)
