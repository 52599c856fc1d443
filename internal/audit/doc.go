// Package audit turns rule findings into an AuditResult.
//
// Everything here is pure: Aggregate flattens per-rule findings in table
// order, Summarize and Score reduce them to counts and a 0-100 score,
// BuildActionPlan maps them to prioritized tasks, and Assemble bundles the
// result with page metadata and tracking flags. Analyze chains the whole
// engine for an already fetched page, so identical input always yields an
// identical result.
package audit
