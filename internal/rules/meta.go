package rules

import (
	"fmt"

	"github.com/nao1215/shopaudit/internal/model"
)

func metaTagRules() []Rule {
	return []Rule{
		{
			ID:             "missing-title",
			Category:       model.CategoryMetaTags,
			Severity:       model.SeverityCritical,
			Impact:         model.ImpactHigh,
			Title:          "Missing page title",
			Recommendation: "Add a unique <title> that names the product or collection and the store.",
			Check: func(in *Input) []string {
				if PageTitle(in.Document) != "" {
					return nil
				}
				return []string{"The page has no <title> element or the title is empty."}
			},
		},
		{
			ID:             "title-too-short",
			Category:       model.CategoryMetaTags,
			Severity:       model.SeverityWarning,
			Impact:         model.ImpactMedium,
			Title:          "Title too short",
			Recommendation: "Extend the title with descriptive keywords.",
			Check: func(in *Input) []string {
				title := PageTitle(in.Document)
				n := textLength(title)
				if title == "" || n >= in.Thresholds.TitleMinLength {
					return nil
				}
				return []string{fmt.Sprintf("The title is %d characters long; at least %d are recommended.",
					n, in.Thresholds.TitleMinLength)}
			},
		},
		{
			ID:             "title-too-long",
			Category:       model.CategoryMetaTags,
			Severity:       model.SeverityWarning,
			Impact:         model.ImpactMedium,
			Title:          "Title too long",
			Recommendation: "Shorten the title so search results show it in full.",
			Check: func(in *Input) []string {
				n := textLength(PageTitle(in.Document))
				if n <= in.Thresholds.TitleMaxLength {
					return nil
				}
				return []string{fmt.Sprintf("The title is %d characters long; search results truncate titles over %d.",
					n, in.Thresholds.TitleMaxLength)}
			},
		},
		{
			ID:             "missing-meta-description",
			Category:       model.CategoryMetaTags,
			Severity:       model.SeverityCritical,
			Impact:         model.ImpactHigh,
			Title:          "Missing meta description",
			Recommendation: "Write a meta description that summarizes the page and invites the click.",
			Check: func(in *Input) []string {
				if MetaDescription(in.Document) != "" {
					return nil
				}
				return []string{"The page has no meta description, so search engines pick a snippet themselves."}
			},
		},
		{
			ID:             "meta-description-too-short",
			Category:       model.CategoryMetaTags,
			Severity:       model.SeverityOptimization,
			Impact:         model.ImpactMedium,
			Title:          "Meta description too short",
			Recommendation: "Expand the meta description with product benefits and a call to action.",
			Check: func(in *Input) []string {
				desc := MetaDescription(in.Document)
				n := textLength(desc)
				if desc == "" || n >= in.Thresholds.MetaDescriptionMinLength {
					return nil
				}
				return []string{fmt.Sprintf("The meta description is %d characters long; at least %d are recommended.",
					n, in.Thresholds.MetaDescriptionMinLength)}
			},
		},
		{
			ID:             "meta-description-too-long",
			Category:       model.CategoryMetaTags,
			Severity:       model.SeverityWarning,
			Impact:         model.ImpactMedium,
			Title:          "Meta description too long",
			Recommendation: "Trim the meta description so it is not cut off in search results.",
			Check: func(in *Input) []string {
				n := textLength(MetaDescription(in.Document))
				if n <= in.Thresholds.MetaDescriptionMaxLength {
					return nil
				}
				return []string{fmt.Sprintf("The meta description is %d characters long; search results truncate it after %d.",
					n, in.Thresholds.MetaDescriptionMaxLength)}
			},
		},
		{
			ID:             "meta-keywords-present",
			Category:       model.CategoryMetaTags,
			Severity:       model.SeverityOptimization,
			Impact:         model.ImpactLow,
			Title:          "Meta keywords tag in use",
			Recommendation: "Remove the meta keywords tag; search engines ignore it and competitors can read it.",
			Check: func(in *Input) []string {
				if metaContent(in.Document, `meta[name="keywords"]`) == "" {
					return nil
				}
				return []string{"The page declares meta keywords."}
			},
		},
	}
}
