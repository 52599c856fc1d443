package rules

import (
	"strings"

	"github.com/nao1215/shopaudit/internal/document"
	"github.com/nao1215/shopaudit/internal/model"
)

const (
	productPageSelector = `.product, [data-section-type="product"]`
	jsonLDSelector      = `script[type="application/ld+json"]`
)

func platformRules() []Rule {
	return []Rule{
		{
			ID:             "missing-platform-analytics",
			Category:       model.CategoryPlatform,
			Severity:       model.SeverityWarning,
			Impact:         model.ImpactMedium,
			Title:          "Storefront analytics not detected",
			Recommendation: "Make sure the theme includes the platform's analytics snippet so sales reports stay accurate.",
			Check: func(in *Input) []string {
				if HasScriptContaining(in.Document, in.Thresholds.PlatformAnalyticsMarker) {
					return nil
				}
				return []string{"No inline script references the storefront analytics object."}
			},
		},
		{
			ID:             "missing-product-schema",
			Category:       model.CategoryPlatform,
			Severity:       model.SeverityOptimization,
			Impact:         model.ImpactMedium,
			Title:          "Product page without Product schema",
			Recommendation: "Add Product structured data with price, availability and reviews to qualify for rich results.",
			Check: func(in *Input) []string {
				if in.Document.Count(productPageSelector) == 0 {
					return nil
				}
				for _, block := range in.Document.Find(jsonLDSelector) {
					if strings.Contains(block.HTML(), "Product") {
						return nil
					}
				}
				return []string{"The page looks like a product page but declares no Product JSON-LD."}
			},
		},
	}
}

// HasScriptContaining reports whether any script element contains marker.
// An empty marker never matches.
func HasScriptContaining(doc document.Document, marker string) bool {
	if marker == "" {
		return false
	}
	for _, script := range doc.Find("script") {
		if strings.Contains(script.HTML(), marker) {
			return true
		}
	}
	return false
}
