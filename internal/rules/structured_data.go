package rules

import (
	"encoding/json"
	"fmt"

	"github.com/nao1215/shopaudit/internal/model"
)

func structuredDataRules() []Rule {
	return []Rule{
		{
			ID:             "missing-structured-data",
			Category:       model.CategoryStructuredData,
			Severity:       model.SeverityOptimization,
			Impact:         model.ImpactMedium,
			Title:          "No structured data",
			Recommendation: "Add JSON-LD for the organization, products and breadcrumbs.",
			Check: func(in *Input) []string {
				if in.Document.Count(jsonLDSelector) > 0 {
					return nil
				}
				return []string{"The page has no JSON-LD blocks."}
			},
		},
		{
			ID:             "invalid-structured-data",
			Category:       model.CategoryStructuredData,
			Severity:       model.SeverityWarning,
			Impact:         model.ImpactMedium,
			Title:          "Invalid structured data",
			Recommendation: "Fix the JSON syntax and validate the block with a rich results test.",
			Check: func(in *Input) []string {
				var found []string
				for i, block := range in.Document.Find(jsonLDSelector) {
					// An empty block is skipped; whitespace alone is not JSON.
					content := block.HTML()
					if content == "" || json.Valid([]byte(content)) {
						continue
					}
					found = append(found, fmt.Sprintf("JSON-LD block %d is not valid JSON.", i+1))
				}
				return found
			},
		},
	}
}
