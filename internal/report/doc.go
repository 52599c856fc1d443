// Package report renders audit results.
//
// Four writers share the Writer interface:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: the AuditResult wire form
//   - MarkdownWriter: GitHub flavored Markdown with a severity pie chart
//   - HTMLWriter: a standalone print-ready page
//
// Writers only format what the result already holds. FileName and
// ScoreLabel are shared by the CLI export command and the HTTP export route.
package report
