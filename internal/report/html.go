package report

import (
	"bytes"
	_ "embed"
	"html/template"
	"io"

	"github.com/nao1215/shopaudit/internal/model"
)

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"scoreLabel": ScoreLabel,
	"label":      label,
	"yesNo":      yesNo,
}).Parse(htmlTemplateSource))

// HTMLWriter renders audit results as a standalone, print-ready HTML page.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
	}
}

type issueSection struct {
	Heading string
	Issues  []model.SEOIssue
}

type planSection struct {
	Heading string
	Items   []model.ActionPlanItem
}

// htmlView is the template data: the result plus its grouped sections.
type htmlView struct {
	*model.AuditResult
	Sections []issueSection
	Plan     []planSection
}

// Write renders the full report as HTML.
// The page is rendered into memory first so a template error writes nothing.
func (w *HTMLWriter) Write(result *model.AuditResult) (int, error) {
	view := htmlView{AuditResult: result}
	for _, severity := range severityOrder {
		if issues := result.IssuesBySeverity(severity); len(issues) > 0 {
			view.Sections = append(view.Sections, issueSection{Heading: severityHeading(severity), Issues: issues})
		}
	}
	for _, priority := range priorityOrder {
		if items := result.ActionPlanByPriority(priority); len(items) > 0 {
			view.Plan = append(view.Plan, planSection{Heading: priorityHeading(priority), Items: items})
		}
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, view); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
