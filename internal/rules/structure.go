package rules

import (
	"fmt"

	"github.com/nao1215/shopaudit/internal/model"
)

const headingSelector = "h1, h2, h3, h4, h5, h6"

func structureRules() []Rule {
	return []Rule{
		{
			ID:             "missing-h1",
			Category:       model.CategoryStructure,
			Severity:       model.SeverityCritical,
			Impact:         model.ImpactHigh,
			Title:          "Missing H1 heading",
			Recommendation: "Add one H1 that states what the page is about.",
			Check: func(in *Input) []string {
				if in.Document.Count("h1") > 0 {
					return nil
				}
				return []string{"The page has no <h1> element."}
			},
		},
		{
			ID:             "multiple-h1",
			Category:       model.CategoryStructure,
			Severity:       model.SeverityCritical,
			Impact:         model.ImpactHigh,
			Title:          "Multiple H1 headings",
			Recommendation: "Keep a single H1 and demote the others to H2 or lower.",
			Check: func(in *Input) []string {
				n := in.Document.Count("h1")
				if n <= 1 {
					return nil
				}
				return []string{fmt.Sprintf("The page has %d <h1> elements.", n)}
			},
		},
		{
			ID:             "empty-headings",
			Category:       model.CategoryStructure,
			Severity:       model.SeverityWarning,
			Impact:         model.ImpactMedium,
			Title:          "Empty headings",
			Recommendation: "Give every heading text or remove it.",
			Check: func(in *Input) []string {
				n := countWhere(in.Document, headingSelector, isBlank)
				if n == 0 {
					return nil
				}
				return []string{fmt.Sprintf("%d %s without text.", n, plural(n, "heading is", "headings are"))}
			},
		},
	}
}
