package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/shopaudit/internal/database"
	"github.com/nao1215/shopaudit/internal/fetcher"
	"github.com/nao1215/shopaudit/internal/model"
	"github.com/nao1215/shopaudit/internal/report"
)

// Score directions between two audits.
const (
	directionImproved  = "improved"
	directionWorsened  = "worsened"
	directionUnchanged = "unchanged"
)

// compareHistoryLimit bounds how many audits of a URL compare looks at.
const compareHistoryLimit = 2

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <url>",
		Short: "Compare the latest audit of a page with an earlier one",
		Long: `Compare shows what changed between two saved audits of the same page:
- the score change
- issues that appeared since the earlier audit
- issues that were resolved

By default the latest audit is compared with the one before it. Use
'shopaudit history -u <url>' to find audit IDs.

Examples:
  # Compare the latest two audits
  shopaudit compare example-shop.com

  # Compare the latest audit with audit 5
  shopaudit compare --with-id 5 example-shop.com

  # Output the comparison as JSON
  shopaudit compare --json example-shop.com`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare with a specific audit by ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format (mutually exclusive with --json)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
	addStoreFlags(cmd)

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Validate before opening the store so a bad URL never touches it.
	url, err := fetcher.Normalize(args[0])
	if err != nil {
		return err
	}
	withID, err := cmd.Flags().GetInt64("with-id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := newLogger(cmd)
	store, err := openStoreFromFlags(ctx, cmd, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	previous, current, err := selectAudits(ctx, store, url, withID)
	if err != nil {
		return err
	}
	comparison := compareAudits(previous, current)

	out := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(comparison)
		return err
	case markdownOutput:
		return outputComparisonMarkdown(out, comparison)
	default:
		outputComparisonText(out, comparison)
		return nil
	}
}

// selectAudits returns the earlier and the latest audit of url.
// When withID is set the earlier audit is that one, and it must belong to url.
func selectAudits(ctx context.Context, store database.Store, url string, withID int64) (previous, current *model.StoredAudit, err error) {
	audits, err := store.History(ctx, url, compareHistoryLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	if len(audits) == 0 {
		return nil, nil, fmt.Errorf("no audit history found for %s", url)
	}
	current = audits[0]

	if withID == 0 {
		if len(audits) < 2 {
			return nil, nil, fmt.Errorf("at least 2 audits are required for comparison (found %d)", len(audits))
		}
		return audits[1], current, nil
	}

	previous, err = store.GetByID(ctx, withID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil, fmt.Errorf("audit with ID %d not found", withID)
		}
		return nil, nil, fmt.Errorf("failed to get audit with ID %d: %w", withID, err)
	}
	if previous.URL != url {
		return nil, nil, fmt.Errorf("audit ID %d belongs to %s, not %s", withID, previous.URL, url)
	}
	if previous.ID == current.ID {
		return nil, nil, fmt.Errorf("audit ID %d is the latest audit of %s", withID, url)
	}
	return previous, current, nil
}

// ComparisonResult holds the result of comparing two audits of one page.
type ComparisonResult struct {
	// URL is the audited page.
	URL string `json:"url"`

	// Previous describes the earlier audit.
	Previous AuditMetadata `json:"previous"`

	// Current describes the later audit.
	Current AuditMetadata `json:"current"`

	// NewIssues are issues of the current audit whose ID the previous one lacks.
	NewIssues []model.SEOIssue `json:"newIssues"`

	// ResolvedIssues are issues of the previous audit whose ID the current one lacks.
	ResolvedIssues []model.SEOIssue `json:"resolvedIssues"`

	// UnchangedCount is the number of issue IDs present in both audits.
	UnchangedCount int `json:"unchangedCount"`

	// ScoreDelta is the current score minus the previous score.
	ScoreDelta int `json:"scoreDelta"`

	// Direction is "improved", "worsened" or "unchanged".
	Direction string `json:"direction"`
}

// AuditMetadata summarizes one side of a comparison.
type AuditMetadata struct {
	ID        int64              `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Score     int                `json:"score"`
	Summary   model.AuditSummary `json:"summary"`
}

func newAuditMetadata(a *model.StoredAudit) AuditMetadata {
	return AuditMetadata{
		ID:        a.ID,
		Timestamp: a.Timestamp,
		Score:     a.Score,
		Summary:   a.Summary,
	}
}

// compareAudits diffs two audits by issue ID. New and resolved issues
// keep the order in which their audit reported them.
func compareAudits(previous, current *model.StoredAudit) *ComparisonResult {
	result := &ComparisonResult{
		URL:            current.URL,
		Previous:       newAuditMetadata(previous),
		Current:        newAuditMetadata(current),
		NewIssues:      []model.SEOIssue{},
		ResolvedIssues: []model.SEOIssue{},
		ScoreDelta:     current.Score - previous.Score,
	}

	previousIDs := issueIDs(previous.Issues)
	currentIDs := issueIDs(current.Issues)

	for _, issue := range current.Issues {
		if _, ok := previousIDs[issue.ID]; !ok {
			result.NewIssues = append(result.NewIssues, issue)
		}
	}
	for _, issue := range previous.Issues {
		if _, ok := currentIDs[issue.ID]; ok {
			result.UnchangedCount++
		} else {
			result.ResolvedIssues = append(result.ResolvedIssues, issue)
		}
	}

	switch {
	case result.ScoreDelta > 0:
		result.Direction = directionImproved
	case result.ScoreDelta < 0:
		result.Direction = directionWorsened
	default:
		result.Direction = directionUnchanged
	}
	return result
}

func issueIDs(issues []model.SEOIssue) map[string]struct{} {
	ids := make(map[string]struct{}, len(issues))
	for _, issue := range issues {
		ids[issue.ID] = struct{}{}
	}
	return ids
}

// outputComparisonMarkdown writes the comparison in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)

	md.H1("Audit Comparison")
	md.PlainText("")
	md.PlainTextf("%s %s", markdown.Bold("URL:"), markdown.Code(result.URL))
	md.PlainText("")
	md.PlainTextf("%s %s", markdown.Bold("Status:"), formatDirection(result.Direction))
	md.PlainText("")

	p, c := result.Previous, result.Current
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Audit ID", strconv.FormatInt(p.ID, 10), strconv.FormatInt(c.ID, 10), "-"},
			{"Date", p.Timestamp.Format("2006-01-02 15:04"), c.Timestamp.Format("2006-01-02 15:04"), "-"},
			{markdown.Bold("Score"), markdown.Bold(strconv.Itoa(p.Score)), markdown.Bold(strconv.Itoa(c.Score)), markdown.Bold(formatDelta(result.ScoreDelta))},
			{"Critical", strconv.Itoa(p.Summary.Critical), strconv.Itoa(c.Summary.Critical), formatDelta(c.Summary.Critical - p.Summary.Critical)},
			{"Warnings", strconv.Itoa(p.Summary.Warnings), strconv.Itoa(c.Summary.Warnings), formatDelta(c.Summary.Warnings - p.Summary.Warnings)},
			{"Optimizations", strconv.Itoa(p.Summary.Optimizations), strconv.Itoa(c.Summary.Optimizations), formatDelta(c.Summary.Optimizations - p.Summary.Optimizations)},
		},
	})

	if len(result.NewIssues) > 0 {
		md.PlainText("")
		md.H2f("New Issues (%d)", len(result.NewIssues))
		md.PlainText("")
		items := make([]string, len(result.NewIssues))
		for i, issue := range result.NewIssues {
			items[i] = fmt.Sprintf("%s %s (%s)", markdown.Bold("["+issue.Severity.String()+"]"), issue.Title, markdown.Code(issue.ID))
		}
		md.BulletList(items...)
	}

	if len(result.ResolvedIssues) > 0 {
		md.PlainText("")
		md.H2f("Resolved Issues (%d)", len(result.ResolvedIssues))
		md.PlainText("")
		items := make([]string, len(result.ResolvedIssues))
		for i, issue := range result.ResolvedIssues {
			items[i] = markdown.Strikethrough(fmt.Sprintf("[%s] %s (%s)", issue.Severity, issue.Title, issue.ID))
		}
		md.BulletList(items...)
	}

	if result.UnchangedCount > 0 {
		md.PlainText("")
		md.HorizontalRule()
		md.PlainText("")
		md.PlainText(markdown.Italic(fmt.Sprintf("%d issues unchanged", result.UnchangedCount)))
	}

	return md.Build()
}

// outputComparisonText writes the comparison in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) {
	p, c := result.Previous, result.Current

	fmt.Fprintf(out, "Audit Comparison: %s\n", result.URL)
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "\nStatus: %s\n", formatDirection(result.Direction))
	fmt.Fprintf(out, "\nPrevious audit: #%d %s\n", p.ID, p.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Current audit:  #%d %s\n", c.ID, c.Timestamp.Format("2006-01-02 15:04:05"))

	fmt.Fprintln(out, "\nSummary:")
	fmt.Fprintf(out, "  %-14s  %-10s  %-10s  %-10s\n", "Metric", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 50))
	rows := []struct {
		name       string
		prev, curr int
	}{
		{"Score", p.Score, c.Score},
		{"Critical", p.Summary.Critical, c.Summary.Critical},
		{"Warnings", p.Summary.Warnings, c.Summary.Warnings},
		{"Optimizations", p.Summary.Optimizations, c.Summary.Optimizations},
	}
	for _, row := range rows {
		fmt.Fprintf(out, "  %-14s  %-10d  %-10d  %-10s\n", row.name, row.prev, row.curr, formatDelta(row.curr-row.prev))
	}

	if len(result.NewIssues) > 0 {
		fmt.Fprintf(out, "\nNew Issues (%d):\n", len(result.NewIssues))
		for _, issue := range result.NewIssues {
			fmt.Fprintf(out, "  [+] [%s] %s (%s)\n", issue.Severity, issue.Title, issue.ID)
		}
	}
	if len(result.ResolvedIssues) > 0 {
		fmt.Fprintf(out, "\nResolved Issues (%d):\n", len(result.ResolvedIssues))
		for _, issue := range result.ResolvedIssues {
			fmt.Fprintf(out, "  [-] [%s] %s (%s)\n", issue.Severity, issue.Title, issue.ID)
		}
	}
	if result.UnchangedCount > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d issues\n", result.UnchangedCount)
	}
}

// formatDirection formats the score direction for display.
func formatDirection(direction string) string {
	switch direction {
	case directionImproved:
		return "IMPROVED (score increased)"
	case directionWorsened:
		return "WORSENED (score decreased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
