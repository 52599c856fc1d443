// Package metrics exposes Prometheus collectors for audits and the HTTP API.
//
// A Collector owns a private registry so tests and multiple servers in one
// process never collide on the global default registry. All methods accept a
// nil receiver and do nothing, which lets callers treat metrics as optional.
package metrics
