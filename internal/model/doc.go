// Package model defines the core data structures used throughout ShopAudit.
//
// This package contains the following main types:
//   - AuditResult: The immutable outcome of one page audit
//   - SEOIssue: A single rule finding with severity and impact
//   - AuditSummary: Per-severity counts derived from the issues
//   - ActionPlanItem: A prioritized remediation task
//   - StoredAudit: An AuditResult plus the identifier assigned by storage
//
// The enumerations (Severity, Impact, Priority, Difficulty) are integers in
// memory and lowercase strings on the wire, so reports and stored JSON stay
// readable while comparisons remain cheap.
//
// Models live in their own package because the rules, audit, report,
// database and server packages all share them.
package model
