package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/shopaudit/internal/model"
)

// MarkdownWriter renders audit results as GitHub flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the full report in Markdown.
func (w *MarkdownWriter) Write(result *model.AuditResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeSummary(md, result)
	w.writeIssues(md, result)
	w.writeActionPlan(md, result)
	w.writePageData(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.AuditResult) {
	md.H1("SEO Audit Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", "`" + tableCell(result.URL) + "`"},
			{"Audit Date", result.Timestamp.Format(dateFormat)},
			{"Score", fmt.Sprintf("**%d/%d** - %s", result.Score, 100, ScoreLabel(result.Score))},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *model.AuditResult) {
	s := result.Summary

	md.H2("Executive Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Result", "Count"},
		Rows: [][]string{
			{"Passed", strconv.Itoa(s.Passed)},
			{"Warnings", strconv.Itoa(s.Warnings)},
			{"Critical", strconv.Itoa(s.Critical)},
			{"Optimizations", strconv.Itoa(s.Optimizations)},
		},
	})
	md.PlainText("")

	if s.Total() > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Issue Severity Distribution"),
			piechart.WithShowData(true),
		)
		if s.Critical > 0 {
			chart.LabelAndIntValue("Critical", uint64(s.Critical))
		}
		if s.Warnings > 0 {
			chart.LabelAndIntValue("Warnings", uint64(s.Warnings))
		}
		if s.Optimizations > 0 {
			chart.LabelAndIntValue("Optimizations", uint64(s.Optimizations))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case s.Critical > 0:
		md.Cautionf("%d critical issue(s) block ranking or indexing and need immediate attention.", s.Critical)
	case s.Warnings > 0:
		md.Warningf("%d warning(s) should be addressed within the next weeks.", s.Warnings)
	case s.Optimizations > 0:
		md.Note("Only optimizations remain.")
	default:
		md.Tip("No SEO issues detected.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, result *model.AuditResult) {
	for _, severity := range severityOrder {
		issues := result.IssuesBySeverity(severity)
		if len(issues) == 0 {
			continue
		}

		md.H2(fmt.Sprintf("%s (%d)", severityHeading(severity), len(issues)))
		md.PlainText("")

		rows := make([][]string, len(issues))
		for i, issue := range issues {
			rows[i] = []string{"`" + tableCell(issue.ID) + "`", string(issue.Category), tableCell(issue.Title), label(issue.Impact.String())}
		}
		md.Table(markdown.TableSet{
			Header: []string{"ID", "Category", "Title", "Impact"},
			Rows:   rows,
		})
		md.PlainText("")

		for _, issue := range issues {
			body := issue.Description
			if issue.Recommendation != "" {
				body += "\n\n**Recommendation:** " + issue.Recommendation
			}
			md.Details(issue.Title, body)
			md.PlainText("")
		}
	}
}

func (w *MarkdownWriter) writeActionPlan(md *markdown.Markdown, result *model.AuditResult) {
	md.H2("Action Plan")
	md.PlainText("")

	if len(result.ActionPlan) == 0 {
		md.PlainText("Nothing to do.")
		md.PlainText("")
		return
	}

	for _, priority := range priorityOrder {
		items := result.ActionPlanByPriority(priority)
		if len(items) == 0 {
			continue
		}

		md.PlainText("### " + priorityHeading(priority))
		md.PlainText("")

		lines := make([]string, len(items))
		for i, item := range items {
			lines[i] = fmt.Sprintf("**%s**: %s (%s, %s)",
				item.Title, item.Description, item.Timeframe, label(item.Difficulty.String()))
		}
		md.BulletList(lines...)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writePageData(md *markdown.Markdown, result *model.AuditResult) {
	seo := result.SEO
	tr := result.Tracking

	md.H2("Page Data")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Title", tableCell(orDash(seo.Title))},
			{"Meta Description", tableCell(orDash(seo.MetaDescription))},
			{"H1 Headings", strconv.Itoa(seo.H1Count)},
			{"H2 Headings", strconv.Itoa(seo.H2Count)},
			{"Images", strconv.Itoa(seo.ImageCount)},
			{"Links", strconv.Itoa(seo.LinkCount)},
			{"Structured Data Blocks", strconv.Itoa(seo.StructuredDataBlockCount)},
			{"Google Analytics", yesNo(tr.GoogleAnalytics)},
			{"Google Tag Manager", yesNo(tr.GoogleTagManager)},
			{"Facebook Pixel", yesNo(tr.FacebookPixel)},
			{"Platform Analytics", yesNo(tr.PlatformAnalytics)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [shopaudit](https://github.com/nao1215/shopaudit)*")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// cellEscaper keeps page text inside a single GFM table cell.
var cellEscaper = strings.NewReplacer(
	"|", `\|`,
	"\r\n", "<br>",
	"\n", "<br>",
	"\r", "<br>",
)

func tableCell(s string) string {
	return cellEscaper.Replace(s)
}
