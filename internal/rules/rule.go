package rules

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nao1215/shopaudit/internal/config"
	"github.com/nao1215/shopaudit/internal/document"
	"github.com/nao1215/shopaudit/internal/model"
)

// PageMeta is the fetch metadata rules may inspect.
type PageMeta struct {
	// URL is the normalized URL of the page.
	URL string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// LoadTime is the measured time to first response.
	LoadTime time.Duration

	// Headers are the response headers.
	Headers http.Header
}

// Input is everything a rule observes. It is shared read-only by all rules.
type Input struct {
	Document   document.Document
	Page       PageMeta
	Thresholds config.Thresholds
}

// Rule describes one check.
type Rule struct {
	// ID is the stable issue id. Repeated findings get "-2", "-3", ... appended.
	ID string

	Category       model.Category
	Severity       model.Severity
	Impact         model.Impact
	Title          string
	Recommendation string

	// Check returns one description per finding, or nothing when the page passes.
	Check func(in *Input) []string
}

// UnevaluableSuffix is appended to the id of a rule whose Check panicked.
const UnevaluableSuffix = "-unevaluable"

// Default returns the rule table in evaluation order.
// The returned slice is a fresh copy and may be modified by the caller.
func Default() []Rule {
	var table []Rule
	table = append(table, metaTagRules()...)
	table = append(table, structureRules()...)
	table = append(table, imageRules()...)
	table = append(table, linkRules()...)
	table = append(table, performanceRules()...)
	table = append(table, platformRules()...)
	table = append(table, structuredDataRules()...)
	table = append(table, socialRules()...)
	return table
}

// Evaluate runs every rule against in and returns the issues of each rule,
// indexed like rules. Rules never short-circuit each other.
func Evaluate(rules []Rule, in *Input) [][]model.SEOIssue {
	results := make([][]model.SEOIssue, len(rules))
	for i := range rules {
		results[i] = rules[i].Evaluate(in)
	}
	return results
}

// Evaluate runs the rule against in. A panic in Check is recovered and
// reported as a single unevaluable issue.
func (r *Rule) Evaluate(in *Input) (issues []model.SEOIssue) {
	defer func() {
		if recovered := recover(); recovered != nil {
			issues = []model.SEOIssue{r.unevaluable(recovered)}
		}
	}()

	descriptions := r.Check(in)
	if len(descriptions) == 0 {
		return nil
	}

	issues = make([]model.SEOIssue, len(descriptions))
	for i, description := range descriptions {
		id := r.ID
		if i > 0 {
			id = fmt.Sprintf("%s-%d", r.ID, i+1)
		}
		issues[i] = model.SEOIssue{
			ID:             id,
			Category:       r.Category,
			Title:          r.Title,
			Description:    description,
			Severity:       r.Severity,
			Recommendation: r.Recommendation,
			Impact:         r.Impact,
		}
	}
	return issues
}

func (r *Rule) unevaluable(cause any) model.SEOIssue {
	return model.SEOIssue{
		ID:             r.ID + UnevaluableSuffix,
		Category:       r.Category,
		Title:          "Check could not be evaluated: " + r.Title,
		Description:    fmt.Sprintf("The page could not be checked for this rule: %v", cause),
		Severity:       model.SeverityWarning,
		Recommendation: "Review the page markup for this area manually.",
		Impact:         model.ImpactLow,
	}
}
