package rules

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/shopaudit/internal/document"
)

// textLength counts characters the way a reader sees them: composed
// sequences such as "e" + combining accent count once.
func textLength(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

// PageTitle returns the trimmed text of the page's title elements.
func PageTitle(doc document.Document) string {
	var b strings.Builder
	for _, node := range doc.Find("title") {
		b.WriteString(node.Text())
	}
	return strings.TrimSpace(b.String())
}

// MetaDescription returns the content of the first meta description, untrimmed.
func MetaDescription(doc document.Document) string {
	return metaContent(doc, `meta[name="description"]`)
}

func metaContent(doc document.Document, selector string) string {
	node, ok := doc.First(selector)
	if !ok {
		return ""
	}
	content, _ := node.Attr("content")
	return content
}

// countWhere returns how many nodes matching selector satisfy pred.
func countWhere(doc document.Document, selector string, pred func(document.Node) bool) int {
	n := 0
	for _, node := range doc.Find(selector) {
		if pred(node) {
			n++
		}
	}
	return n
}

func isBlank(node document.Node) bool {
	return strings.TrimSpace(node.Text()) == ""
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}
