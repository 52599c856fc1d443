package rules

import (
	"fmt"
	"strings"

	"github.com/nao1215/shopaudit/internal/document"
	"github.com/nao1215/shopaudit/internal/model"
)

func imageRules() []Rule {
	return []Rule{
		{
			ID:             "images-without-alt",
			Category:       model.CategoryImages,
			Severity:       model.SeverityCritical,
			Impact:         model.ImpactHigh,
			Title:          "Images without alt attribute",
			Recommendation: "Describe every product image in its alt attribute.",
			Check: func(in *Input) []string {
				n := countWhere(in.Document, "img", func(node document.Node) bool {
					_, ok := node.Attr("alt")
					return !ok
				})
				if n == 0 {
					return nil
				}
				return []string{fmt.Sprintf("%d %s no alt attribute.", n, plural(n, "image has", "images have"))}
			},
		},
		{
			ID:             "images-empty-alt",
			Category:       model.CategoryImages,
			Severity:       model.SeverityWarning,
			Impact:         model.ImpactMedium,
			Title:          "Images with empty alt text",
			Recommendation: "Fill in alt text unless the image is purely decorative.",
			Check: func(in *Input) []string {
				n := countWhere(in.Document, "img", func(node document.Node) bool {
					alt, ok := node.Attr("alt")
					return ok && strings.TrimSpace(alt) == ""
				})
				if n == 0 {
					return nil
				}
				return []string{fmt.Sprintf("%d %s an empty alt attribute.", n, plural(n, "image has", "images have"))}
			},
		},
		{
			ID:             "unoptimized-images",
			Category:       model.CategoryImages,
			Severity:       model.SeverityOptimization,
			Impact:         model.ImpactMedium,
			Title:          "Images not in a modern format",
			Recommendation: "Serve images as WebP or AVIF to cut page weight.",
			Check: func(in *Input) []string {
				n := countWhere(in.Document, "img", isLegacyFormat)
				if n == 0 {
					return nil
				}
				return []string{fmt.Sprintf("%d %s neither WebP nor AVIF.", n, plural(n, "image is", "images are"))}
			},
		},
	}
}

// isLegacyFormat reports whether an image source names neither webp nor avif.
// Images without a source are not judged.
func isLegacyFormat(node document.Node) bool {
	src, _ := node.Attr("src")
	if src == "" {
		return false
	}
	src = strings.ToLower(src)
	return !strings.Contains(src, "webp") && !strings.Contains(src, "avif")
}
