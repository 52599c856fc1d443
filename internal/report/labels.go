package report

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/shopaudit/internal/model"
)

// Score label thresholds.
const (
	excellentScore = 80
	goodScore      = 70
	averageScore   = 60
	weakScore      = 40
)

// ScoreLabel returns the verbal rating of a score.
func ScoreLabel(score int) string {
	switch {
	case score >= excellentScore:
		return "Excellent"
	case score >= goodScore:
		return "Good"
	case score >= averageScore:
		return "Average"
	case score >= weakScore:
		return "Needs improvement"
	default:
		return "Critical"
	}
}

// FileName returns the export file name for an audit of url rendered in
// format on date: audit-seo-<url>-<YYYY-MM-DD>.<ext>, where every
// character of url that is not an ASCII letter or digit becomes '-'.
func FileName(url string, format Format, date time.Time) string {
	var sb strings.Builder
	for _, r := range url {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
			continue
		}
		sb.WriteByte('-')
	}
	return "audit-seo-" + sb.String() + "-" + date.Format(time.DateOnly) + "." + format.Extension()
}

var titleCaser = cases.Title(language.English)

// label turns a wire name such as "critical" into "Critical".
func label(name string) string {
	return titleCaser.String(name)
}

// severityHeading returns the section heading for a severity.
func severityHeading(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "Critical Issues"
	case model.SeverityWarning:
		return "Warnings"
	default:
		return "Optimizations"
	}
}

// priorityHeading returns the section heading for an action plan priority.
func priorityHeading(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "High Priority"
	case model.PriorityMedium:
		return "Medium Priority"
	default:
		return "Long-term Improvements"
	}
}

// severityOrder lists severities most severe first.
var severityOrder = []model.Severity{
	model.SeverityCritical,
	model.SeverityWarning,
	model.SeverityOptimization,
}

// priorityOrder lists priorities most urgent first.
var priorityOrder = []model.Priority{
	model.PriorityHigh,
	model.PriorityMedium,
	model.PriorityLow,
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// dateFormat is used for timestamps in human-readable reports.
const dateFormat = "2006-01-02 15:04:05 MST"
