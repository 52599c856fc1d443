package model

import (
	"slices"
	"time"
)

// SEOIssue is a single finding emitted by a rule.
type SEOIssue struct {
	// ID is the rule key. It is unique within one audit run only.
	ID string `json:"id"`

	// Category is the page aspect the rule inspects.
	Category Category `json:"category"`

	// Title is a short human-readable name of the problem.
	Title string `json:"title"`

	// Description explains what was observed on the page.
	Description string `json:"description"`

	// Severity classifies the finding.
	Severity Severity `json:"severity"`

	// Recommendation tells the merchant how to fix it.
	Recommendation string `json:"recommendation,omitempty"`

	// Impact estimates the gain from fixing it.
	Impact Impact `json:"impact"`
}

// AuditSummary holds the per-severity tallies of an audit.
type AuditSummary struct {
	Passed        int `json:"passed"`
	Warnings      int `json:"warnings"`
	Critical      int `json:"critical"`
	Optimizations int `json:"optimizations"`
}

// Total returns the number of issues counted by the summary.
func (s AuditSummary) Total() int {
	return s.Warnings + s.Critical + s.Optimizations
}

// ActionPlanItem is one remediation task derived from an issue.
type ActionPlanItem struct {
	Priority    Priority   `json:"priority"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Timeframe   string     `json:"timeframe"`
	Difficulty  Difficulty `json:"difficulty"`
}

// SEOData is page metadata extracted independently of the rules.
type SEOData struct {
	Title                    string `json:"title"`
	MetaDescription          string `json:"metaDescription"`
	H1Count                  int    `json:"h1Count"`
	H2Count                  int    `json:"h2Count"`
	ImageCount               int    `json:"imageCount"`
	LinkCount                int    `json:"linkCount"`
	StructuredDataBlockCount int    `json:"structuredDataBlockCount"`
}

// TrackingData records which tracking scripts were detected on the page.
type TrackingData struct {
	GoogleAnalytics   bool `json:"googleAnalytics"`
	GoogleTagManager  bool `json:"googleTagManager"`
	FacebookPixel     bool `json:"facebookPixel"`
	PlatformAnalytics bool `json:"platformAnalytics"`
}

// AuditResult is the outcome of auditing one page.
// It is built once by the assembler and never mutated afterwards;
// consumers that need to change it work on a Clone.
type AuditResult struct {
	URL        string           `json:"url"`
	Timestamp  time.Time        `json:"timestamp"`
	Score      int              `json:"score"`
	Summary    AuditSummary     `json:"summary"`
	Issues     []SEOIssue       `json:"issues"`
	SEO        SEOData          `json:"seo"`
	Tracking   TrackingData     `json:"tracking"`
	ActionPlan []ActionPlanItem `json:"actionPlan"`
}

// Clone returns a deep copy of the result.
func (r *AuditResult) Clone() *AuditResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Issues = slices.Clone(r.Issues)
	c.ActionPlan = slices.Clone(r.ActionPlan)
	return &c
}

// IssuesBySeverity returns the issues of the given severity in audit order.
func (r *AuditResult) IssuesBySeverity(severity Severity) []SEOIssue {
	var issues []SEOIssue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			issues = append(issues, issue)
		}
	}
	return issues
}

// ActionPlanByPriority returns the plan items of the given priority in plan order.
func (r *AuditResult) ActionPlanByPriority(priority Priority) []ActionPlanItem {
	var items []ActionPlanItem
	for _, item := range r.ActionPlan {
		if item.Priority == priority {
			items = append(items, item)
		}
	}
	return items
}

// StoredAudit is an AuditResult as held by a store.
// The embedded result is the store's own copy.
type StoredAudit struct {
	ID      int64     `json:"id"`
	SavedAt time.Time `json:"savedAt"`
	AuditResult
}

// NewStoredAudit wraps a copy of result with the given identifier and save time.
func NewStoredAudit(id int64, savedAt time.Time, result *AuditResult) *StoredAudit {
	return &StoredAudit{
		ID:          id,
		SavedAt:     savedAt,
		AuditResult: *result.Clone(),
	}
}
