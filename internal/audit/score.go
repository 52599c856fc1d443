package audit

import (
	"github.com/nao1215/shopaudit/internal/config"
	"github.com/nao1215/shopaudit/internal/model"
)

// MaxScore is the score of an audit without findings.
const MaxScore = 100

// Aggregate concatenates per-rule findings in rule order. Nothing is
// deduplicated or reordered.
func Aggregate(perRule [][]model.SEOIssue) []model.SEOIssue {
	total := 0
	for _, issues := range perRule {
		total += len(issues)
	}
	all := make([]model.SEOIssue, 0, total)
	for _, issues := range perRule {
		all = append(all, issues...)
	}
	return all
}

// Summarize tallies issues by severity. Passed is the nominal test count
// minus critical and warning findings, floored at zero.
func Summarize(issues []model.SEOIssue, t config.Thresholds) model.AuditSummary {
	var s model.AuditSummary
	for _, issue := range issues {
		switch issue.Severity {
		case model.SeverityCritical:
			s.Critical++
		case model.SeverityWarning:
			s.Warnings++
		case model.SeverityOptimization:
			s.Optimizations++
		}
	}
	s.Passed = max(0, t.NominalTestCount-s.Critical-s.Warnings)
	return s
}

// Score deducts the weighted finding counts from MaxScore and clamps the
// result to [0, MaxScore].
func Score(s model.AuditSummary, t config.Thresholds) int {
	penalty := s.Critical*t.CriticalWeight + s.Warnings*t.WarningWeight + s.Optimizations*t.OptimizationWeight
	return min(MaxScore, max(0, MaxScore-penalty))
}
