// Package rules holds the SEO rule table and evaluates it against a page.
//
// Every rule is a descriptor: a stable id, a category, a fixed severity and
// impact, a title and recommendation, and a Check function that inspects the
// document and page metadata and returns one description per finding.
// Evaluate runs the whole table in order without short-circuiting and turns
// findings into issues. A Check that panics does not abort the audit; it is
// reported as an "<id>-unevaluable" issue instead.
//
// # Rule table
//
// Rules run in category order:
//   - Meta Tags: title and meta description presence and length, meta keywords
//   - Structure: h1 count, empty headings
//   - Images: alt attributes, modern image formats
//   - Links: anchors without text, external links
//   - Performance: load time, stylesheet count
//   - Platform: storefront analytics, product schema
//   - Structured Data: JSON-LD presence and validity
//   - Social: Open Graph title, description and image
//
// All numeric bounds come from config.Thresholds.
package rules
