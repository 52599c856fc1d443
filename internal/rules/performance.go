package rules

import (
	"fmt"

	"github.com/nao1215/shopaudit/internal/model"
)

func performanceRules() []Rule {
	return []Rule{
		{
			ID:             "slow-loading",
			Category:       model.CategoryPerformance,
			Severity:       model.SeverityWarning,
			Impact:         model.ImpactHigh,
			Title:          "Slow server response",
			Recommendation: "Reduce apps, scripts and image weight, and enable caching.",
			Check: func(in *Input) []string {
				if in.Page.LoadTime <= in.Thresholds.SlowLoadTime {
					return nil
				}
				return []string{fmt.Sprintf("The page took %d ms to respond; the target is %d ms.",
					in.Page.LoadTime.Milliseconds(), in.Thresholds.SlowLoadTime.Milliseconds())}
			},
		},
		{
			ID:             "too-many-stylesheets",
			Category:       model.CategoryPerformance,
			Severity:       model.SeverityOptimization,
			Impact:         model.ImpactMedium,
			Title:          "Too many stylesheets",
			Recommendation: "Bundle stylesheets to reduce render-blocking requests.",
			Check: func(in *Input) []string {
				n := in.Document.Count(`link[rel="stylesheet"]`)
				if n <= in.Thresholds.MaxStylesheets {
					return nil
				}
				return []string{fmt.Sprintf("The page loads %d stylesheets; at most %d are recommended.",
					n, in.Thresholds.MaxStylesheets)}
			},
		},
	}
}
