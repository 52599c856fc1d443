// Package pipeline runs an audit as a sequence of named steps.
//
// The default pipeline validates the URL, fetches the page, parses it,
// evaluates the rule table and assembles the result. Every step is logged,
// traced as an OpenTelemetry span and timed in the metrics collector, and
// the first failing step aborts the audit without a result.
//
// BatchProcessor audits many URLs with bounded concurrency using errgroup.
package pipeline
