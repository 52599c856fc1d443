package rules

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/shopaudit/internal/document"
	"github.com/nao1215/shopaudit/internal/model"
)

func linkRules() []Rule {
	return []Rule{
		{
			ID:             "links-without-text",
			Category:       model.CategoryLinks,
			Severity:       model.SeverityWarning,
			Impact:         model.ImpactMedium,
			Title:          "Links without text",
			Recommendation: "Give every link visible text that says where it leads.",
			Check: func(in *Input) []string {
				n := countWhere(in.Document, "a[href]", isBlank)
				if n == 0 {
					return nil
				}
				return []string{fmt.Sprintf("%d %s no visible text.", n, plural(n, "link has", "links have"))}
			},
		},
		{
			ID:             "external-links",
			Category:       model.CategoryLinks,
			Severity:       model.SeverityOptimization,
			Impact:         model.ImpactLow,
			Title:          "External links",
			Recommendation: "Check that external links are intended and add rel=\"nofollow\" or rel=\"sponsored\" where appropriate.",
			Check: func(in *Input) []string {
				host := hostOf(in.Page.URL)
				n := countWhere(in.Document, "a[href]", func(node document.Node) bool {
					href, _ := node.Attr("href")
					return isExternal(href, host)
				})
				if n == 0 {
					return nil
				}
				return []string{fmt.Sprintf("%d %s to other sites.", n, plural(n, "link points", "links point"))}
			},
		},
	}
}

// isExternal reports whether href is an absolute http(s) link to a host other
// than pageHost. With an unknown page host every absolute link is external.
func isExternal(href, pageHost string) bool {
	href = strings.TrimSpace(href)
	lower := strings.ToLower(href)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	if pageHost == "" {
		return true
	}
	return hostOf(href) != pageHost
}

// hostOf returns the lower-cased host of raw without a leading "www.".
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
