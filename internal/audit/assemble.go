package audit

import (
	"strings"
	"time"

	"github.com/nao1215/shopaudit/internal/config"
	"github.com/nao1215/shopaudit/internal/document"
	"github.com/nao1215/shopaudit/internal/model"
	"github.com/nao1215/shopaudit/internal/rules"
)

// ExtractSEO collects page metadata independently of the rules.
func ExtractSEO(doc document.Document) model.SEOData {
	return model.SEOData{
		Title:                    rules.PageTitle(doc),
		MetaDescription:          rules.MetaDescription(doc),
		H1Count:                  doc.Count("h1"),
		H2Count:                  doc.Count("h2"),
		ImageCount:               doc.Count("img"),
		LinkCount:                doc.Count("a[href]"),
		StructuredDataBlockCount: doc.Count(`script[type="application/ld+json"]`),
	}
}

// ExtractTracking detects tracking scripts by substring over script contents.
func ExtractTracking(doc document.Document, t config.Thresholds) model.TrackingData {
	var td model.TrackingData
	for _, script := range doc.Find("script") {
		body := script.HTML()
		if src, ok := script.Attr("src"); ok {
			body += " " + src
		}
		if strings.Contains(body, "gtag") || strings.Contains(body, "ga(") {
			td.GoogleAnalytics = true
		}
		if strings.Contains(body, "googletagmanager") {
			td.GoogleTagManager = true
		}
		if strings.Contains(body, "fbq") {
			td.FacebookPixel = true
		}
	}
	td.PlatformAnalytics = rules.HasScriptContaining(doc, t.PlatformAnalyticsMarker)
	return td
}

// Assemble bundles aggregated issues and page metadata into the final result.
func Assemble(url string, timestamp time.Time, doc document.Document, issues []model.SEOIssue, t config.Thresholds) *model.AuditResult {
	summary := Summarize(issues, t)
	if issues == nil {
		issues = []model.SEOIssue{}
	}
	return &model.AuditResult{
		URL:        url,
		Timestamp:  timestamp,
		Score:      Score(summary, t),
		Summary:    summary,
		Issues:     issues,
		SEO:        ExtractSEO(doc),
		Tracking:   ExtractTracking(doc, t),
		ActionPlan: BuildActionPlan(issues, t),
	}
}

// Analyze runs the rule table against a fetched page and assembles the result.
// now is the result timestamp; passing the same page, table, thresholds and
// time twice yields identical results.
func Analyze(page rules.PageMeta, doc document.Document, table []rules.Rule, t config.Thresholds, now time.Time) *model.AuditResult {
	in := &rules.Input{Document: doc, Page: page, Thresholds: t}
	issues := Aggregate(rules.Evaluate(table, in))
	return Assemble(page.URL, now, doc, issues, t)
}
