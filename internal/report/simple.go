package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/shopaudit/internal/model"
)

const ruleWidth = 70

// SimpleWriter renders audit results as plain text for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints severity groups even when they have no issues.
	showEmpty bool

	// verbose adds descriptions and recommendations to every issue.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty prints sections that have no entries.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose includes descriptions and recommendations.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(result *model.AuditResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeSummary(&sb, result)
	w.writeIssues(&sb, result)
	w.writeActionPlan(&sb, result)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.AuditResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                         SEO AUDIT REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "URL:        %s\n", result.URL)
	fmt.Fprintf(sb, "Audit Date: %s\n", result.Timestamp.Format(dateFormat))
	fmt.Fprintf(sb, "Score:      %d/100 (%s)\n", result.Score, ScoreLabel(result.Score))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, result *model.AuditResult) {
	section(sb, "SUMMARY")

	fmt.Fprintf(sb, "  PASSED:        %d\n", result.Summary.Passed)
	fmt.Fprintf(sb, "  CRITICAL:      %d\n", result.Summary.Critical)
	fmt.Fprintf(sb, "  WARNINGS:      %d\n", result.Summary.Warnings)
	fmt.Fprintf(sb, "  OPTIMIZATIONS: %d\n", result.Summary.Optimizations)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeIssues(sb *strings.Builder, result *model.AuditResult) {
	if len(result.Issues) == 0 && !w.showEmpty {
		return
	}

	section(sb, "ISSUES")

	for _, severity := range severityOrder {
		issues := result.IssuesBySeverity(severity)
		if len(issues) == 0 && !w.showEmpty {
			continue
		}

		fmt.Fprintf(sb, "[%s] %s\n", indicator(severity), strings.ToUpper(severityHeading(severity)))
		if len(issues) == 0 {
			sb.WriteString("  None\n\n")
			continue
		}
		for _, issue := range issues {
			fmt.Fprintf(sb, "  * %s (%s)\n", issue.Title, issue.ID)
			if w.verbose {
				fmt.Fprintf(sb, "    Category:       %s\n", issue.Category)
				fmt.Fprintf(sb, "    Impact:         %s\n", issue.Impact)
				fmt.Fprintf(sb, "    Description:    %s\n", issue.Description)
				if issue.Recommendation != "" {
					fmt.Fprintf(sb, "    Recommendation: %s\n", issue.Recommendation)
				}
			}
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeActionPlan(sb *strings.Builder, result *model.AuditResult) {
	if len(result.ActionPlan) == 0 && !w.showEmpty {
		return
	}

	section(sb, "ACTION PLAN")

	if len(result.ActionPlan) == 0 {
		sb.WriteString("  Nothing to do\n\n")
		return
	}
	for _, priority := range priorityOrder {
		items := result.ActionPlanByPriority(priority)
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(sb, "%s\n", priorityHeading(priority))
		for i, item := range items {
			fmt.Fprintf(sb, "  %d. %s [%s, %s]\n", i+1, item.Title, item.Timeframe, item.Difficulty)
			if w.verbose {
				fmt.Fprintf(sb, "     %s\n", item.Description)
			}
		}
		sb.WriteString("\n")
	}
}

func indicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityWarning:
		return "!"
	default:
		return "+"
	}
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by shopaudit\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}
