package audit

import (
	"github.com/nao1215/shopaudit/internal/config"
	"github.com/nao1215/shopaudit/internal/model"
)

// Action plan timeframes.
const (
	TimeframeImmediate = "immediate"
	TimeframeTwoWeeks  = "within two weeks"
	TimeframeLongTerm  = "long-term"
)

// BuildActionPlan maps issues to remediation tasks.
//
// Every critical issue becomes a high-priority task. Only the first
// ActionPlanWarningCap warnings and ActionPlanOptimizationCap optimizations,
// in issue order, make it into the plan; the rest stay in the summary only.
// Tasks are grouped high, medium, low and keep issue order within a group.
func BuildActionPlan(issues []model.SEOIssue, t config.Thresholds) []model.ActionPlanItem {
	var high, medium, low []model.ActionPlanItem

	for _, issue := range issues {
		switch issue.Severity {
		case model.SeverityCritical:
			difficulty := model.DifficultyEasy
			if issue.Impact == model.ImpactHigh {
				difficulty = model.DifficultyMedium
			}
			high = append(high, newItem(issue, model.PriorityHigh, TimeframeImmediate, difficulty))
		case model.SeverityWarning:
			if len(medium) >= t.ActionPlanWarningCap {
				continue
			}
			difficulty := model.DifficultyMedium
			if issue.Impact == model.ImpactHigh {
				difficulty = model.DifficultyHard
			}
			medium = append(medium, newItem(issue, model.PriorityMedium, TimeframeTwoWeeks, difficulty))
		case model.SeverityOptimization:
			if len(low) >= t.ActionPlanOptimizationCap {
				continue
			}
			low = append(low, newItem(issue, model.PriorityLow, TimeframeLongTerm, model.DifficultyMedium))
		}
	}

	plan := make([]model.ActionPlanItem, 0, len(high)+len(medium)+len(low))
	plan = append(plan, high...)
	plan = append(plan, medium...)
	return append(plan, low...)
}

func newItem(issue model.SEOIssue, p model.Priority, timeframe string, d model.Difficulty) model.ActionPlanItem {
	description := issue.Recommendation
	if description == "" {
		description = issue.Description
	}
	return model.ActionPlanItem{
		Priority:    p,
		Title:       issue.Title,
		Description: description,
		Timeframe:   timeframe,
		Difficulty:  d,
	}
}
