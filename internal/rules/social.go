package rules

import (
	"fmt"
	"strings"

	"github.com/nao1215/shopaudit/internal/model"
)

func socialRules() []Rule {
	return []Rule{
		openGraphRule("og:title", "missing-og-title", "Missing Open Graph title",
			"Add og:title so shared links show a clear headline."),
		openGraphRule("og:description", "missing-og-description", "Missing Open Graph description",
			"Add og:description so shared links carry a summary."),
		openGraphRule("og:image", "missing-og-image", "Missing Open Graph image",
			"Add og:image with a product photo of at least 1200x630 pixels."),
	}
}

func openGraphRule(property, id, title, recommendation string) Rule {
	selector := fmt.Sprintf(`meta[property=%q]`, property)
	return Rule{
		ID:             id,
		Category:       model.CategorySocial,
		Severity:       model.SeverityOptimization,
		Impact:         model.ImpactLow,
		Title:          title,
		Recommendation: recommendation,
		Check: func(in *Input) []string {
			if strings.TrimSpace(metaContent(in.Document, selector)) != "" {
				return nil
			}
			return []string{fmt.Sprintf("The page has no %s meta tag.", property)}
		},
	}
}
